package mail

import (
	"context"
	"fmt"

	"vastucraft/internal/config"

	"go.uber.org/zap"
)

// Message is one outbound email. Text is the plain-text alternative and may be
// empty.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message through some outbound transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleSender only logs what would have been sent. Used when mail is disabled.
type ConsoleSender struct {
	logger *zap.Logger
}

// NewConsoleSender creates a sender that logs instead of delivering.
func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger.Named("mail")}
}

// Send implements Sender.
func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("mail disabled, not sending",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}

// NewSender picks the transport named by cfg.Provider.
func NewSender(ctx context.Context, cfg *config.MailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case config.ProviderSMTP:
		return NewSMTPSender(cfg), nil
	case config.ProviderSES:
		return NewSESSender(ctx, cfg.AWSRegion, cfg.FromEmail)
	case config.ProviderConsole:
		return NewConsoleSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
