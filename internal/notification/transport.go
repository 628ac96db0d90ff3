package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is a rendered assignment notification ready for delivery.
type Message struct {
	To       string
	From     string
	FromName string
	ReplyTo  string
	Subject  string
	Text     string
	Priority string
}

// Transport attempts delivery of a message and returns a delivery
// identifier. The real transport lives outside this service; implementors
// adapt SMTP, webhooks, or whatever the deployment uses.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// logTransport records deliveries in the log instead of sending them. It is
// the default transport for deployments without a configured channel.
type logTransport struct {
	logger *zap.Logger
}

// NewLogTransport returns a transport that only logs deliveries.
func NewLogTransport(logger *zap.Logger) Transport {
	return &logTransport{logger: logger}
}

func (t *logTransport) Send(ctx context.Context, msg Message) (string, error) {
	messageID := uuid.NewString()
	t.logger.Info("notification delivered",
		zap.String("message_id", messageID),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("priority", msg.Priority))
	return messageID, nil
}
