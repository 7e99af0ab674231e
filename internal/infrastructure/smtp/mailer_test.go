package smtp

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaxwatch/vaxwatch/internal/config"
)

func newTestMailer(t *testing.T, addr string) *Mailer {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return NewMailer(&config.Config{
		SMTPHost:    host,
		SMTPPort:    port,
		SMTPFrom:    "updates@vaxwatch.example",
		SMTPSubject: "Daily vaccination update",
	})
}

// serveSMTP speaks just enough of the protocol for one delivery and captures
// the DATA payload.
func serveSMTP(t *testing.T, ln net.Listener, data chan<- string) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	write := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	write("220 test ESMTP")
	var body strings.Builder
	inData := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if inData {
			if line == "." {
				inData = false
				data <- body.String()
				write("250 ok")
				continue
			}
			body.WriteString(line + "\n")
			continue
		}
		switch {
		case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
			write("250 test")
		case strings.HasPrefix(line, "MAIL"), strings.HasPrefix(line, "RCPT"):
			write("250 ok")
		case strings.HasPrefix(line, "DATA"):
			inData = true
			write("354 go ahead")
		case strings.HasPrefix(line, "QUIT"):
			write("221 bye")
			return
		default:
			write("250 ok")
		}
	}
}

func TestSend_DeliversMessage(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	data := make(chan string, 1)
	go serveSMTP(t, ln, data)

	m := newTestMailer(t, ln.Addr().String())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, m.Send(ctx, "someone@example.com", "hello there"))

	got := <-data
	assert.Contains(t, got, "To: someone@example.com")
	assert.Contains(t, got, "Subject: Daily vaccination update")
	assert.Contains(t, got, "hello there")
}

func TestSend_HonoursContextDeadline(t *testing.T) {
	// A server that accepts the connection and never speaks: the deadline has
	// to cut the delivery loose so the fan-out can move on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	m := newTestMailer(t, ln.Addr().String())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Send(ctx, "someone@example.com", "hello") }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Send still blocked long after the context deadline")
	}
}

func TestSend_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close() // nothing listening anymore

	m := newTestMailer(t, addr)
	err = m.Send(context.Background(), "someone@example.com", "hello")
	assert.ErrorContains(t, err, "dial smtp")
}
