package oem7

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startSession(t *testing.T, nmeaOnly bool) (master interface{ WriteString(string) (int, error) }, lines chan string, cancel context.CancelFunc, done chan error, port *Port) {
	t.Helper()
	m, p := openTestPair(t, WithPollInterval(20*time.Millisecond))

	lines = make(chan string, 16)
	ctx, cancelFn := context.WithCancel(context.Background())
	done = make(chan error, 1)

	sess := NewSession(p, func(line string) { lines <- line }, nmeaOnly, nil)
	go func() { done <- sess.Run(ctx) }()

	return m, lines, cancelFn, done, p
}

func expectLine(t *testing.T, lines chan string, want string) {
	t.Helper()
	select {
	case got := <-lines:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %q", want)
	}
}

func TestStreamEmitsLinesInOrder(t *testing.T) {
	master, lines, cancel, done, _ := startSession(t, false)
	defer cancel()

	_, err := master.WriteString("$GPGGA,1\r\n$GPGSA,2\r\n")
	require.NoError(t, err)

	expectLine(t, lines, "$GPGGA,1")
	expectLine(t, lines, "$GPGSA,2")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after cancellation")
	}
}

func TestStreamFilterDropsNonSentences(t *testing.T) {
	master, lines, cancel, done, _ := startSession(t, true)
	defer cancel()

	_, err := master.WriteString("NOTICE: x\r\n")
	require.NoError(t, err)
	_, err = master.WriteString("$GPRMC,ok\r\n")
	require.NoError(t, err)

	// The non-matching line is filtered; the first emission is the
	// sentence that followed it.
	expectLine(t, lines, "$GPRMC,ok")

	cancel()
	<-done
}

func TestStreamFilterPassesBinaryMarker(t *testing.T) {
	master, lines, cancel, done, _ := startSession(t, true)
	defer cancel()

	_, err := master.WriteString("<BINARY LOG FOLLOWS\r\n")
	require.NoError(t, err)

	expectLine(t, lines, "<BINARY LOG FOLLOWS")

	cancel()
	<-done
}

func TestStreamClosesPortOnCancellation(t *testing.T) {
	_, _, cancel, done, port := startSession(t, false)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}

	// The session owns the port and must have released it.
	require.ErrorIs(t, port.Close(), ErrPortClosed)
}

func TestStreamSubstitutesBinaryBytes(t *testing.T) {
	master, lines, cancel, done, _ := startSession(t, false)
	defer cancel()

	_, err := master.WriteString("$GPGGA,\xAA1\r\n")
	require.NoError(t, err)

	expectLine(t, lines, "$GPGGA,�1")

	cancel()
	<-done
}
