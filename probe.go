package oem7

import (
	"bytes"
	"time"

	"go.uber.org/zap"
)

// probeState tracks a single probe attempt through its two sniff
// phases.
type probeState int

const (
	probeIdle probeState = iota
	probeListening
	probeInitializing
	probeListeningPost
	probeMatched
	probeUnmatched
)

// validProbeSteps guards the transitions. A device that already
// produced sentence traffic during the passive phase can never reach
// probeInitializing, so an already-talking receiver is never flooded
// with redundant commands.
var validProbeSteps = map[probeState][]probeState{
	probeIdle:          {probeListening},
	probeListening:     {probeMatched, probeInitializing},
	probeInitializing:  {probeListeningPost},
	probeListeningPost: {probeMatched, probeUnmatched},
}

// SentencePrefixes is the talker-ID prefix set that classifies a byte
// stream as receiver traffic. Comparison happens on raw bytes before
// any decoding, so binary noise cannot break classification.
var SentencePrefixes = [][]byte{
	[]byte("$GP"),
	[]byte("$GN"),
	[]byte("$PQ"),
	[]byte("$PM"),
	[]byte("$PN"),
}

// ProbeResult is the outcome of validating one (path, baud)
// combination. Port is non-nil and owned by the caller only when
// Matched is true; unmatched attempts close their link before
// returning.
type ProbeResult struct {
	Matched  bool
	Captured []byte
	Path     string
	Baud     int
	Port     *Port
}

// Prober decides whether a device path at a given baud rate hosts a
// responding receiver, without assuming receiver state.
type Prober struct {
	cfg Config
	log *zap.SugaredLogger
}

// NewProber builds a prober; a nil logger disables logging
func NewProber(cfg Config, log *zap.SugaredLogger) *Prober {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Prober{cfg: cfg, log: log}
}

// Probe opens path at baud and classifies it. Open or configure
// failures report "no match" rather than an error: unreachable or
// misconfigured candidates are expected noise during discovery.
func (pb *Prober) Probe(path string, baud int) ProbeResult {
	res := ProbeResult{Path: path, Baud: baud}

	cfg := pb.cfg
	cfg.BaudRate = baud
	port, err := openConfigured(path, cfg)
	if err != nil {
		pb.log.Debugf("skipping %s @ %d: %v", path, baud, err)
		return res
	}

	pb.log.Infof("probing %s at %d baud", path, baud)
	state := pb.step(probeIdle, probeListening)

	matched, captured := pb.sniff(port, cfg.PassiveWindow)
	if matched {
		pb.step(state, probeMatched)
	} else {
		state = pb.step(state, probeInitializing)
		pb.log.Infof("no traffic detected yet, attempting receiver initialization")
		proto := NewProtocol(port, pb.log)
		_ = proto.SendSequence(cfg.InitCommands, cfg.ResponseTimeout)

		state = pb.step(state, probeListeningPost)
		var more []byte
		matched, more = pb.sniff(port, cfg.ActiveWindow)
		captured = append(captured, more...)
		if matched {
			pb.step(state, probeMatched)
		} else {
			pb.step(state, probeUnmatched)
		}
	}

	res.Captured = captured
	if !matched {
		_ = port.Close()
		return res
	}

	res.Matched = true
	res.Port = port
	return res
}

// step enforces the transition table
func (pb *Prober) step(from, to probeState) probeState {
	for _, next := range validProbeSteps[from] {
		if next == to {
			return to
		}
	}
	pb.log.DPanicf("invalid probe transition %d -> %d", from, to)
	return to
}

// sniff listens silently for a bounded window and reports whether any
// accumulated line starts with a recognized prefix. Each growing
// buffer state is scanned line by line so a match is declared the
// instant it appears, not at window expiry.
func (pb *Prober) sniff(port *Port, window time.Duration) (bool, []byte) {
	end := time.Now().Add(window)
	var captured []byte

	for time.Now().Before(end) {
		ready, err := port.WaitReadable(pb.cfg.PollInterval)
		if err != nil {
			break
		}
		if !ready {
			continue
		}

		chunk, err := port.ReadChunk()
		if err != nil {
			pb.log.Debugf("read error during sniff: %v", err)
			break
		}
		if len(chunk) == 0 {
			continue
		}

		captured = append(captured, chunk...)
		for _, line := range splitLines(captured) {
			if hasSentencePrefix(line) {
				return true, captured
			}
		}
	}
	return false, captured
}

func hasSentencePrefix(line []byte) bool {
	for _, p := range SentencePrefixes {
		if bytes.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
