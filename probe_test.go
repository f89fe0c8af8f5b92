package oem7

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

func probeTestConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	for _, opt := range []Option{
		WithPollInterval(20 * time.Millisecond),
		WithSniffWindows(500*time.Millisecond, 2*time.Second),
		WithResponseTimeout(100 * time.Millisecond),
		WithCommandPause(10 * time.Millisecond),
		WithInitCommands("UNLOGALL THISPORT", "LOG GPRMC ONTIME 1"),
	} {
		require.NoError(t, opt(&cfg))
	}
	return cfg
}

// talker writes NMEA sentences to master until stopped.
func talker(master *os.File, sentence string, stop <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := master.WriteString(sentence); err != nil {
				return
			}
		}
	}
}

func TestProbePassiveMatch(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	stop := make(chan struct{})
	defer close(stop)
	go talker(master, "$GPGGA,123519,4807.038,N\r\n", stop)

	// Anything the probe writes would land on the master side.
	var mu sync.Mutex
	var toDevice []byte
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := master.Read(buf)
			if n > 0 {
				mu.Lock()
				toDevice = append(toDevice, buf[:n]...)
				mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()

	pb := NewProber(probeTestConfig(t), nil)
	res := pb.Probe(slave.Name(), 115200)

	require.True(t, res.Matched)
	require.NotNil(t, res.Port)
	require.Equal(t, slave.Name(), res.Path)
	require.Equal(t, 115200, res.Baud)
	require.Contains(t, string(res.Captured), "$GPGGA")
	require.NoError(t, res.Port.Close())

	// An already-talking device must never be re-initialized.
	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, toDevice, "passive match must not send any commands")
}

func TestProbeActiveMatch(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	// Silent until configured: start talking only after UNLOGALL
	// arrives, and record everything the probe sent.
	var mu sync.Mutex
	var toDevice strings.Builder
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		r := bufio.NewReader(master)
		started := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			mu.Lock()
			toDevice.WriteString(line)
			mu.Unlock()
			if !started && strings.HasPrefix(line, "UNLOGALL") {
				started = true
				go talker(master, "$GPRMC,123519,A,4807.038,N\r\n", stop)
			}
		}
	}()

	pb := NewProber(probeTestConfig(t), nil)
	res := pb.Probe(slave.Name(), 9600)

	require.True(t, res.Matched)
	require.NotNil(t, res.Port)
	require.Contains(t, string(res.Captured), "$GPRMC")
	require.NoError(t, res.Port.Close())

	// Exactly one initialization sequence, never repeated.
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, strings.Count(toDevice.String(), "UNLOGALL"))
}

func TestProbeOpenFailureIsSoft(t *testing.T) {
	before := countOpenFDs(t)
	pb := NewProber(probeTestConfig(t), nil)
	res := pb.Probe("/dev/tty-does-not-exist-0", 9600)
	require.False(t, res.Matched)
	require.Nil(t, res.Port)
	require.Equal(t, before, countOpenFDs(t))
}

func TestProbeUnmatchedClosesLink(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	// Drain the device side so command writes cannot back up.
	go func() {
		buf := make([]byte, 256)
		for {
			if _, err := master.Read(buf); err != nil {
				return
			}
		}
	}()

	cfg := probeTestConfig(t)
	require.NoError(t, WithSniffWindows(200*time.Millisecond, 300*time.Millisecond)(&cfg))

	before := countOpenFDs(t)
	pb := NewProber(cfg, nil)
	res := pb.Probe(slave.Name(), 115200)

	require.False(t, res.Matched)
	require.Nil(t, res.Port)
	require.Equal(t, before, countOpenFDs(t), "unmatched probe must close its link")
}

func TestProbeMatchesBinaryPrefixedTraffic(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	// Sentence prefix followed by binary garbage: classification is
	// byte-prefix based, decoding must not break the probe.
	stop := make(chan struct{})
	defer close(stop)
	go talker(master, "$GN\xAA\xBB\xCC\r\n", stop)

	pb := NewProber(probeTestConfig(t), nil)
	res := pb.Probe(slave.Name(), 115200)

	require.True(t, res.Matched)
	require.NoError(t, res.Port.Close())
}

func TestHasSentencePrefix(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"$GPGGA,1", true},
		{"$GNRMC,1", true},
		{"$PQTMVER,1", true},
		{"$PMTK001", true},
		{"$PNVGB", true},
		{"NOTICE: x", false},
		{"$GLGSV,1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasSentencePrefix([]byte(tt.line)); got != tt.want {
			t.Errorf("hasSentencePrefix(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
