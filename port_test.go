package oem7

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// countOpenFDs backs the handle-leak invariants: open count before a
// failed attempt must equal open count after.
func countOpenFDs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	return len(entries)
}

func openTestPair(t *testing.T, opts ...Option) (*os.File, *Port) {
	t.Helper()
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	port, err := Open(slave.Name(), opts...)
	require.NoError(t, err)
	return master, port
}

func TestOpenAllSupportedBauds(t *testing.T) {
	for _, baud := range []int{4800, 9600, 19200, 38400, 57600, 115200} {
		master, slave, err := pty.Open()
		require.NoError(t, err)

		port, err := Open(slave.Name(), WithBaudRate(baud))
		require.NoError(t, err, "baud %d", baud)
		require.Equal(t, baud, port.Baud())

		// Round trip: what the peer writes is what we read.
		_, err = master.Write([]byte("$GPGGA,test\r\n"))
		require.NoError(t, err)

		ready, err := port.WaitReadable(time.Second)
		require.NoError(t, err)
		require.True(t, ready, "baud %d", baud)

		chunk, err := port.ReadChunk()
		require.NoError(t, err)
		require.Equal(t, "$GPGGA,test\r\n", string(chunk))

		require.NoError(t, port.Close())
		master.Close()
		slave.Close()
	}
}

func TestWriteReachesPeer(t *testing.T) {
	master, port := openTestPair(t)
	t.Cleanup(func() { port.Close() })

	n, err := port.Write([]byte("LOG VERSION\r\n"))
	require.NoError(t, err)
	require.Equal(t, 13, n)

	buf := make([]byte, 64)
	require.NoError(t, master.SetReadDeadline(time.Now().Add(time.Second)))
	rn, err := master.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "LOG VERSION\r\n", string(buf[:rn]))
}

func TestOpenMissingDevice(t *testing.T) {
	before := countOpenFDs(t)
	_, err := Open("/dev/tty-does-not-exist-0")
	require.Error(t, err)
	require.Equal(t, before, countOpenFDs(t))
}

func TestOpenUnsupportedBaud(t *testing.T) {
	_, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { slave.Close() })

	_, err = Open(slave.Name(), WithBaudRate(2400))
	require.ErrorIs(t, err, ErrInvalidBaudRate)
}

func TestCloseTwice(t *testing.T) {
	_, port := openTestPair(t)
	require.NoError(t, port.Close())
	require.ErrorIs(t, port.Close(), ErrPortClosed)
}

func TestClosedPortOperationsFail(t *testing.T) {
	_, port := openTestPair(t)
	require.NoError(t, port.Close())

	_, err := port.Write([]byte("x"))
	require.ErrorIs(t, err, ErrPortClosed)
	_, err = port.ReadChunk()
	require.ErrorIs(t, err, ErrPortClosed)
	_, err = port.WaitReadable(time.Millisecond)
	require.ErrorIs(t, err, ErrPortClosed)
	require.ErrorIs(t, port.Blocking(), ErrPortClosed)
}

func TestWaitReadableTimesOut(t *testing.T) {
	_, port := openTestPair(t)
	t.Cleanup(func() { port.Close() })

	start := time.Now()
	ready, err := port.WaitReadable(100 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, ready)
	require.Less(t, time.Since(start), time.Second)
}

func TestReadChunkEmptyIsNotEOF(t *testing.T) {
	_, port := openTestPair(t)
	t.Cleanup(func() { port.Close() })

	// Nothing pending: an empty chunk means "no data this tick".
	chunk, err := port.ReadChunk()
	require.NoError(t, err)
	require.Empty(t, chunk)
}

func TestGetBaudRate(t *testing.T) {
	if _, err := getBaudRate(115200); err != nil {
		t.Errorf("115200 should be supported: %v", err)
	}
	if _, err := getBaudRate(1200); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("expected ErrInvalidBaudRate, got %v", err)
	}
}
