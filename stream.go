package oem7

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sink receives decoded sentences in arrival order. Emission is
// best-effort; no backpressure is signalled.
type Sink func(line string)

// Session runs the unbounded read/decode/filter/emit loop over an
// established link. There is no internal termination condition: the
// source is a live sensor feed, and the loop ends only through
// context cancellation.
type Session struct {
	port     *Port
	sink     Sink
	log      *zap.SugaredLogger
	tick     time.Duration
	nmeaOnly bool
}

// NewSession takes ownership of port; Run closes it before returning
// no matter how the loop ends.
func NewSession(port *Port, sink Sink, nmeaOnly bool, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	tick := port.config.PollInterval
	if tick > time.Second {
		tick = time.Second
	}
	return &Session{port: port, sink: sink, log: log, tick: tick, nmeaOnly: nmeaOnly}
}

// Run streams sentences until ctx is cancelled. Cancellation is
// cooperative and checked between readiness ticks, so shutdown takes
// at most one poll slice. Transient read errors abandon the current
// tick and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		_ = s.port.Close()
		s.log.Infof("closed %s", s.port.Path())
	}()

	// Streaming favors blocking reads paced by readiness polling.
	_ = s.port.Blocking()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ready, err := s.port.WaitReadable(s.tick)
		if err != nil {
			return err
		}
		if !ready {
			continue
		}

		chunk, err := s.port.ReadChunk()
		if err != nil {
			s.log.Warnf("read error: %v", err)
			continue
		}
		if len(chunk) == 0 {
			continue
		}

		for _, raw := range splitLines(chunk) {
			text := decodeASCII(raw)
			if s.nmeaOnly && !strings.HasPrefix(text, "$") && !strings.HasPrefix(text, "<") {
				continue
			}
			s.sink(text)
		}
	}
}
