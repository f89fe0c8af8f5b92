package oem7

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Port owns one opened receiver link. Once configured the line
// discipline is always raw 8N1, local, receiver-enabled, with a
// bounded per-read timeout. A Port is owned by exactly one component
// at a time and is closed exactly once on every exit path.
type Port struct {
	mu     sync.RWMutex
	fd     int
	path   string
	config Config
	closed bool
}

// Open opens and configures a serial device. The open itself is
// non-blocking so an unplugged or ungranted device node cannot hang
// the caller; reads stay bounded through VTIME plus explicit polling.
// Any configuration failure closes the just-opened handle before the
// error propagates.
func Open(path string, opts ...Option) (*Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	return openConfigured(path, config)
}

// openConfigured opens path with a fully resolved Config. The prober
// reuses this to vary the baud rate per attempt without rebuilding
// the option list.
func openConfigured(path string, config Config) (*Port, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := configurePort(fd, config); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Port{fd: fd, path: path, config: config}, nil
}

// configurePort applies the raw-mode termios settings
func configurePort(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}

	// Raw mode, 8N1, local connection, receiver enabled.
	termios.Iflag = unix.IGNPAR
	termios.Oflag = 0
	termios.Lflag = 0
	termios.Cflag = unix.CS8 | unix.CREAD | unix.CLOCAL

	// Bounded reads: return whatever is available once VTIME expires.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = vtime(config.ReadTimeout)

	baudRate, err := getBaudRate(config.BaudRate)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("set termios: %w", err)
	}

	// Drop anything buffered from before the configuration took effect.
	_ = unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH)

	return nil
}

// getBaudRate converts a supported integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// vtime converts a duration to VTIME tenths of a second
func vtime(d time.Duration) uint8 {
	tenths := d / (100 * time.Millisecond)
	if tenths < 0 {
		return 0
	}
	if tenths > 255 {
		return 255
	}
	return uint8(tenths)
}

// Blocking restores blocking read semantics. Discovery probing favors
// the non-blocking open plus explicit polling; continuous streaming
// switches to blocking reads, still paced by WaitReadable.
func (p *Port) Blocking() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}
	return unix.SetNonblock(p.fd, false)
}

// Close closes the serial port. A second close reports ErrPortClosed.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}
	err := unix.Close(p.fd)
	p.closed = true
	return err
}

// Write writes raw bytes to the port
func (p *Port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	return unix.Write(p.fd, data)
}

// WaitReadable performs a single multiplexed readiness check, bounded
// by timeout. It never busy-spins; an interrupted poll reports "not
// readable" so the caller's outer deadline loop continues.
func (p *Port) WaitReadable(timeout time.Duration) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false, ErrPortClosed
	}

	pfd := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, fmt.Errorf("poll %s: %w", p.path, err)
	}
	return n > 0 && pfd[0].Revents&unix.POLLIN != 0, nil
}

// ReadChunk performs one bounded read of up to 4096 bytes. An empty
// result means "no data this tick"; serial devices do not signal EOF.
func (p *Port) ReadChunk() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPortClosed
	}

	buf := make([]byte, 4096)
	n, err := unix.Read(p.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}
	if n <= 0 {
		return nil, nil
	}
	return buf[:n], nil
}

// FlushInput discards any unread input data
func (p *Port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}
	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

// Path returns the device path the port was opened with
func (p *Port) Path() string { return p.path }

// Baud returns the configured baud rate
func (p *Port) Baud() int { return p.config.BaudRate }
