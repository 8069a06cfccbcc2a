package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mailbatch/mailbatch/internal/config"
)

// GmailSender implements Transport using the Gmail API. The API is
// stateless, so the session-lifecycle methods are no-ops: there is no
// connection to drop and nothing to reconnect.
type GmailSender struct {
	service       *gmail.Service
	senderAddress string
	senderName    string
}

// NewGmailSender creates a new GmailSender. A service account credentials
// JSON with domain-wide delegation is preferred; when absent, OAuth2 client
// credentials with a refresh token are used instead.
func NewGmailSender(ctx context.Context, cfg config.GmailConfig, emailCfg config.EmailConfig) (*GmailSender, error) {
	if emailCfg.From == "" {
		return nil, fmt.Errorf("gmail: sender address is required")
	}

	var svc *gmail.Service
	var err error

	if cfg.CredentialsJSON != "" {
		jwtConfig, jerr := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), gmail.GmailSendScope)
		if jerr != nil {
			return nil, fmt.Errorf("gmail: failed to parse credentials: %w", jerr)
		}
		// Impersonate the sender via domain-wide delegation
		jwtConfig.Subject = emailCfg.From
		svc, err = gmail.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	} else {
		client := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailSendScope},
		}
		token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
		svc, err = gmail.NewService(ctx, option.WithHTTPClient(client.Client(ctx, token)))
	}
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSender{
		service:       svc,
		senderAddress: emailCfg.From,
		senderName:    emailCfg.FromName,
	}, nil
}

// Ping is a no-op: credentials are exchanged lazily on the first API call.
func (g *GmailSender) Ping(ctx context.Context) error { return nil }

// Connect is a no-op for the stateless Gmail API.
func (g *GmailSender) Connect() error { return nil }

// Reconnect is a no-op for the stateless Gmail API.
func (g *GmailSender) Reconnect() error { return nil }

// Close is a no-op for the stateless Gmail API.
func (g *GmailSender) Close() error { return nil }

// Send sends an email via the Gmail API.
func (g *GmailSender) Send(ctx context.Context, msg Message) error {
	from := g.senderAddress
	if g.senderName != "" {
		from = fmt.Sprintf("%s <%s>", g.senderName, g.senderAddress)
	}

	// Build the MIME message
	var emailContent string
	if msg.HTMLBody != "" && msg.TextBody != "" {
		// Multipart alternative (HTML + text)
		boundary := "boundary_mailbatch_email"
		emailContent = strings.Join([]string{
			"From: " + from,
			"To: " + msg.To,
			"Subject: " + msg.Subject,
			"MIME-Version: 1.0",
			"Content-Type: multipart/alternative; boundary=" + boundary,
			"",
			"--" + boundary,
			"Content-Type: text/plain; charset=UTF-8",
			"Content-Transfer-Encoding: 7bit",
			"",
			msg.TextBody,
			"",
			"--" + boundary,
			"Content-Type: text/html; charset=UTF-8",
			"Content-Transfer-Encoding: 7bit",
			"",
			msg.HTMLBody,
			"",
			"--" + boundary + "--",
		}, "\r\n")
	} else {
		emailContent = strings.Join([]string{
			"From: " + from,
			"To: " + msg.To,
			"Subject: " + msg.Subject,
			"MIME-Version: 1.0",
			"Content-Type: text/html; charset=UTF-8",
			"",
			msg.HTMLBody,
		}, "\r\n")
	}

	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(emailContent)),
	}

	_, err := g.service.Users.Messages.Send("me", gmailMsg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail: failed to send email: %w", err)
	}

	return nil
}
