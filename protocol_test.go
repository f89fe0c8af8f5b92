package oem7

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendFramesASCIIWithCRLF(t *testing.T) {
	master, port := openTestPair(t)
	t.Cleanup(func() { port.Close() })

	proto := NewProtocol(port, nil)

	// Non-ASCII bytes are dropped, not escaped.
	require.NoError(t, proto.Send("LOG GPGGA ONTIME 1 £"))

	buf := make([]byte, 64)
	require.NoError(t, master.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := master.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "LOG GPGGA ONTIME 1 \r\n", string(buf[:n]))
}

func TestSendCommandCollectsReply(t *testing.T) {
	master, port := openTestPair(t)
	t.Cleanup(func() { port.Close() })

	// Simulated receiver: acknowledge each command line.
	go func() {
		r := bufio.NewReader(master)
		if _, err := r.ReadString('\n'); err != nil {
			return
		}
		master.Write([]byte("<OK\r\n"))
	}()

	proto := NewProtocol(port, nil)
	reply, err := proto.SendCommand("UNLOGALL THISPORT", 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, "<OK", reply)
}

func TestSendCommandNoReplyIsNotAnError(t *testing.T) {
	_, port := openTestPair(t)
	t.Cleanup(func() { port.Close() })

	proto := NewProtocol(port, nil)
	reply, err := proto.SendCommand("UNLOGALL THISPORT", 300*time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, reply)
}

func TestSendSequenceIsStrictlyOrdered(t *testing.T) {
	master, port := openTestPair(t, WithCommandPause(10*time.Millisecond))
	t.Cleanup(func() { port.Close() })

	received := make(chan string, 16)
	go func() {
		r := bufio.NewReader(master)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			received <- strings.TrimSpace(line)
		}
	}()

	proto := NewProtocol(port, nil)
	cmds := []string{"UNLOGALL THISPORT", "LOG GPGGA ONTIME 1", "LOG GPRMC ONTIME 1"}
	require.NoError(t, proto.SendSequence(cmds, 50*time.Millisecond))

	for _, want := range cmds {
		select {
		case got := <-received:
			require.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %q", want)
		}
	}
}

func TestSendOnClosedPort(t *testing.T) {
	_, port := openTestPair(t)
	require.NoError(t, port.Close())

	proto := NewProtocol(port, nil)
	require.ErrorIs(t, proto.Send("UNLOGALL"), ErrPortClosed)
}

func TestDecodeASCII(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain ascii", []byte("$GPGGA,1"), "$GPGGA,1"},
		{"binary bytes substituted", []byte{'$', 0xAA, 0x55, 'X'}, "$��X"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeASCII(tt.in); got != tt.want {
				t.Errorf("decodeASCII(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
