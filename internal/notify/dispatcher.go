// Package notify sends the two emails that follow a stored submission.
package notify

import (
	"context"
	"fmt"

	"vastucraft/internal/domain"
	"vastucraft/internal/mail"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Renderer builds the email for one audience of a submission.
type Renderer interface {
	Render(sub domain.Submission, audience mail.Audience) (mail.Rendered, error)
}

// Delivery is the outcome of one notification task. A failed delivery never
// affects the HTTP response.
type Delivery struct {
	Audience mail.Audience
	To       string
	Err      error
}

// Dispatcher fans a submission out to the submitter and the site operator.
type Dispatcher struct {
	sender   mail.Sender
	renderer Renderer
	operator string
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. operator receives every new-submission notice.
func NewDispatcher(sender mail.Sender, renderer Renderer, operator string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		renderer: renderer,
		operator: operator,
		logger:   logger.Named("notify"),
	}
}

// Notify sends both emails concurrently and returns once both have finished.
// Deliveries are returned submitter first, operator second.
func (d *Dispatcher) Notify(ctx context.Context, sub domain.Submission) []Delivery {
	deliveries := []Delivery{
		{Audience: mail.Submitter, To: sub.Recipient()},
		{Audience: mail.Operator, To: d.operator},
	}

	// Plain Group, not WithContext: one failure must not cancel the other send.
	var g errgroup.Group
	for i := range deliveries {
		dl := &deliveries[i]
		g.Go(func() error {
			dl.Err = d.deliver(ctx, sub, dl.Audience, dl.To)
			if dl.Err != nil {
				d.logger.Error("failed to send email",
					zap.String("kind", string(sub.Kind())),
					zap.String("audience", string(dl.Audience)),
					zap.String("to", dl.To),
					zap.Error(dl.Err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return deliveries
}

func (d *Dispatcher) deliver(ctx context.Context, sub domain.Submission, audience mail.Audience, to string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while sending %s email: %v", audience, r)
		}
	}()

	if to == "" {
		return fmt.Errorf("no recipient for %s email", audience)
	}
	rendered, err := d.renderer.Render(sub, audience)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, mail.Message{To: to, Subject: rendered.Subject, HTML: rendered.HTML, Text: rendered.Text})
}
