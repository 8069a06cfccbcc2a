package email

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// IsDisconnect reports whether err indicates that the mail transport
// connection died mid-session. Disconnects are transient: the caller is
// expected to reconnect and retry. Every other error (rejected address,
// malformed message, policy refusal) is terminal for the current recipient.
func IsDisconnect(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	if errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// Some servers drop the session with a 421 before closing the socket.
	msg := err.Error()
	if strings.Contains(msg, "use of closed network connection") ||
		strings.HasPrefix(msg, "421 ") {
		return true
	}

	return false
}
