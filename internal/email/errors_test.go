package email

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsDisconnect(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"wrapped eof", fmt.Errorf("send failed: %w", io.EOF), true},
		{"closed connection", net.ErrClosed, true},
		{"broken pipe", syscall.EPIPE, true},
		{"connection reset", &net.OpError{Op: "write", Err: syscall.ECONNRESET}, true},
		{"op error", &net.OpError{Op: "read", Err: errors.New("connection refused")}, true},
		{"timeout", timeoutErr{}, true},
		{"server closing 421", errors.New("421 4.4.2 connection dropped"), true},
		{"mailbox unavailable", errors.New("550 5.1.1 mailbox unavailable"), false},
		{"auth failure", errors.New("535 5.7.8 authentication credentials invalid"), false},
		{"plain error", errors.New("mailbox unavailable"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDisconnect(tt.err))
		})
	}
}

// net.Error timeouts must classify as disconnects even when wrapped.
func TestIsDisconnect_WrappedTimeout(t *testing.T) {
	err := fmt.Errorf("dial: %w", &net.OpError{Op: "dial", Err: timeoutErr{}})
	assert.True(t, IsDisconnect(err))
}
