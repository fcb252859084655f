package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Notifier delivers a message to a recipient. Delivery is fire-and-forget:
// services commit state first and only then notify, so a delivery failure
// never loses committed state.
type Notifier interface {
	Send(ctx context.Context, recipientEmail, subject, body string) error
}

// LogNotifier is a basic provider that logs outbound messages. It is the
// default when no broker is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs a logging provider.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

// Send logs the message and returns nil to indicate success.
func (n *LogNotifier) Send(ctx context.Context, recipientEmail, subject, body string) error {
	n.logger.Info().Str("recipient", recipientEmail).Str("subject", subject).Msg("notification delivered")
	return nil
}

// NATSNotifier publishes outbound messages to a NATS subject, where a
// delivery worker picks them up.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

type notificationEvent struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// NewNATSNotifier constructs a broker-backed provider.
func NewNATSNotifier(conn *nats.Conn, subject string, logger zerolog.Logger) *NATSNotifier {
	return &NATSNotifier{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "notifier").Logger(),
	}
}

// Send publishes the message onto the configured subject.
func (n *NATSNotifier) Send(ctx context.Context, recipientEmail, subject, body string) error {
	event := notificationEvent{
		Recipient: recipientEmail,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Info().Str("recipient", recipientEmail).Str("subject", subject).Msg("notification published")
	return nil
}

// credentialsBody renders the message a freshly provisioned account
// receives.
func credentialsBody(name, email, password, role, loginURL string) string {
	return fmt.Sprintf(
		"Hello %s,\n\nYour account has been created.\n\nEmail: %s\nPassword: %s\nRole: %s\n\nLog in at %s\n",
		name, email, password, role, loginURL,
	)
}
