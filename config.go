package oem7

import "time"

// Config holds the tunables shared by the serial link, the probe and
// the discovery scan. Zero values are filled in by DefaultConfig; the
// cmd front ends override individual fields through functional options.
type Config struct {
	BaudRate int

	// ReadTimeout is the termios inter-byte/overall read timeout
	// (VTIME). It is rounded down to tenths of a second and capped
	// at 25.5s by the line discipline.
	ReadTimeout time.Duration

	// PollInterval is the inner readiness-poll slice used by every
	// bounded wait. All blocking points are a short poll nested in an
	// overall deadline; nothing ever issues an unbounded read.
	PollInterval time.Duration

	// ResponseTimeout bounds the wait for a single command reply.
	ResponseTimeout time.Duration

	// CommandPause is the fixed delay between sequential commands,
	// respecting receiver processing latency.
	CommandPause time.Duration

	// PassiveWindow and ActiveWindow bound the two probe sniff
	// phases: listen-only first, then listen again after sending the
	// initialization sequence.
	PassiveWindow time.Duration
	ActiveWindow  time.Duration

	// Patterns are the device path globs searched by discovery, in
	// declared order. Paths are sorted within each pattern.
	Patterns []string

	// BaudLadder is the ordered set of rates discovery tries per path.
	BaudLadder []int

	// InitCommands is the minimal sequence the probe plays to wake a
	// powered but silent receiver.
	InitCommands []string
}

// Option is a functional option for adjusting a Config
type Option func(*Config) error

// DefaultConfig returns a configuration with documented defaults
// matching OEM7 receiver behavior on USB serial links.
func DefaultConfig() Config {
	return Config{
		BaudRate:        115200,
		ReadTimeout:     2 * time.Second,
		PollInterval:    100 * time.Millisecond,
		ResponseTimeout: 1500 * time.Millisecond,
		CommandPause:    100 * time.Millisecond,
		PassiveWindow:   1500 * time.Millisecond,
		ActiveWindow:    4 * time.Second,
		Patterns:        []string{"/dev/ttyUSB*", "/dev/ttyACM*"},
		BaudLadder:      []int{115200, 57600, 38400, 19200, 9600, 4800},
		InitCommands:    DefaultInitCommands(),
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithReadTimeout sets the termios read timeout (VTIME granularity is
// 0.1s; values above 25.5s are rejected)
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 || d > 25500*time.Millisecond {
			return ErrInvalidConfig
		}
		c.ReadTimeout = d
		return nil
	}
}

// WithPollInterval sets the readiness-poll slice
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return ErrInvalidConfig
		}
		c.PollInterval = d
		return nil
	}
}

// WithResponseTimeout sets the per-command reply wait
func WithResponseTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 {
			return ErrInvalidConfig
		}
		c.ResponseTimeout = d
		return nil
	}
}

// WithCommandPause sets the delay between sequential commands
func WithCommandPause(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 {
			return ErrInvalidConfig
		}
		c.CommandPause = d
		return nil
	}
}

// WithSniffWindows sets the passive and active probe windows
func WithSniffWindows(passive, active time.Duration) Option {
	return func(c *Config) error {
		if passive <= 0 || active <= 0 {
			return ErrInvalidConfig
		}
		c.PassiveWindow = passive
		c.ActiveWindow = active
		return nil
	}
}

// WithPatterns sets the device path globs searched by discovery
func WithPatterns(patterns ...string) Option {
	return func(c *Config) error {
		if len(patterns) == 0 {
			return ErrInvalidConfig
		}
		c.Patterns = patterns
		return nil
	}
}

// WithBaudLadder sets the ordered baud rates tried per candidate path
func WithBaudLadder(rates ...int) Option {
	return func(c *Config) error {
		if len(rates) == 0 {
			return ErrInvalidConfig
		}
		for _, r := range rates {
			if _, err := getBaudRate(r); err != nil {
				return err
			}
		}
		c.BaudLadder = rates
		return nil
	}
}

// WithInitCommands sets the probe initialization sequence
func WithInitCommands(cmds ...string) Option {
	return func(c *Config) error {
		c.InitCommands = cmds
		return nil
	}
}
