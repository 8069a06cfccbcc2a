package email

import "context"

// Sender is the interface that all email providers must implement.
// This abstraction allows swapping email providers (SMTP, Gmail, etc.)
// without changing the send loop.
type Sender interface {
	// Send sends an email to the specified recipient.
	Send(ctx context.Context, msg Message) error
}

// Transport is a Sender with an explicit session lifecycle. The send loop
// owns exactly one Transport, probes it before processing any recipients,
// and replaces the underlying session wholesale when the connection drops.
type Transport interface {
	Sender

	// Ping opens a session, authenticates and closes it again. Used as the
	// pre-flight check before any recipients are processed.
	Ping(ctx context.Context) error
	// Connect establishes the long-lived session used by Send.
	Connect() error
	// Reconnect discards the current session and establishes a fresh one.
	Reconnect() error
	// Close releases the current session, if any.
	Close() error
}

// Message represents an email message to be sent.
type Message struct {
	To       string // recipient email address
	Subject  string // email subject
	HTMLBody string // HTML email body
	TextBody string // plain-text fallback body
}
