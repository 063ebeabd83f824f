package mail

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers the email-verification link. The real transport (SMTP,
// provider API) is a host concern; this service only depends on the port.
type Sender interface {
	SendVerification(ctx context.Context, to, link string) error
}

// LogSender writes the verification link to the log instead of sending mail.
// Default for dev deployments without a mail provider.
type LogSender struct {
	logger *zap.SugaredLogger
}

func NewLogSender(logger *zap.SugaredLogger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendVerification(_ context.Context, to, link string) error {
	s.logger.Infow("verification mail", "to", to, "link", link)
	return nil
}
