package oem7

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Protocol frames ASCII commands onto a port and collects the first
// reply line for each. Replies are not tagged with command identity,
// so playback is strictly sequential; commands are never pipelined.
type Protocol struct {
	port   *Port
	reader *FrameReader
	log    *zap.SugaredLogger
	pause  time.Duration
}

// NewProtocol builds a protocol engine on an opened port. A nil
// logger disables logging.
func NewProtocol(port *Port, log *zap.SugaredLogger) *Protocol {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Protocol{
		port:   port,
		reader: NewFrameReader(port, port.config.PollInterval),
		log:    log,
		pause:  port.config.CommandPause,
	}
}

// Send writes one command terminated by CRLF. The payload is ASCII;
// non-ASCII bytes are dropped rather than escaped.
func (pr *Protocol) Send(cmd string) error {
	payload := asciiBytes(cmd + "\r\n")
	pr.log.Infof("-> %s", cmd)
	_, err := pr.port.Write(payload)
	return err
}

// SendCommand sends one command and waits, bounded by timeout, for
// the first reply line. An empty reply is a valid outcome: OEM7
// commands frequently produce no response at all.
func (pr *Protocol) SendCommand(cmd string, timeout time.Duration) (string, error) {
	if err := pr.Send(cmd); err != nil {
		return "", err
	}

	buf, err := pr.reader.CollectLine(timeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(decodeASCII(buf)), nil
}

// SendSequence plays an ordered command sequence, one reply wait per
// command, with a short fixed pause between commands to respect
// receiver processing latency. Write failures on individual commands
// are logged and absorbed; the rest of the sequence still runs.
func (pr *Protocol) SendSequence(cmds []string, timeout time.Duration) error {
	for i, cmd := range cmds {
		pr.log.Infof("[%02d] -> %s", i+1, cmd)

		if _, err := pr.port.Write(asciiBytes(cmd + "\r\n")); err != nil {
			if err == ErrPortClosed {
				return err
			}
			pr.log.Warnf("[%02d] write failed: %v", i+1, err)
			continue
		}

		buf, err := pr.reader.CollectLine(timeout)
		if err != nil {
			return err
		}
		if reply := strings.TrimSpace(decodeASCII(buf)); reply != "" {
			pr.log.Infof("[%02d] <- %s", i+1, reply)
		} else {
			pr.log.Infof("[%02d] <- (no response)", i+1)
		}

		time.Sleep(pr.pause)
	}
	return nil
}

// asciiBytes drops any non-ASCII bytes from the command text
func asciiBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < utf8.RuneSelf {
			out = append(out, s[i])
		}
	}
	return out
}

// decodeASCII decodes receiver bytes as ASCII with best-effort
// substitution: decoding is always lossy-tolerant, never an error.
func decodeASCII(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c < utf8.RuneSelf {
			sb.WriteByte(c)
		} else {
			sb.WriteRune(utf8.RuneError)
		}
	}
	return sb.String()
}
