package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
	"time"

	"vastucraft/internal/config"

	"github.com/google/uuid"
)

// SendMailFunc matches smtp.SendMail; replaced in tests.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers through an authenticated relay (Gmail by default).
// smtp.SendMail upgrades to STARTTLS whenever the server offers it.
type SMTPSender struct {
	cfg      *config.MailConfig
	sendMail SendMailFunc
	now      func() time.Time
}

// NewSMTPSender creates an SMTP sender for cfg.
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail, now: time.Now}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}
	if s.cfg.SMTPHost == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	raw, err := s.build(msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := s.sendMail(addr, auth, s.cfg.FromEmail, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// build renders the RFC 5322 message as multipart/alternative. The text/plain
// part is left out when msg.Text is empty. Bodies are quoted-printable encoded.
func (s *SMTPSender) build(msg Message) ([]byte, error) {
	var b bytes.Buffer

	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.cfg.FromName), s.cfg.FromEmail)
	}

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), s.cfg.SMTPHost)
	b.WriteString("MIME-Version: 1.0\r\n")

	boundary := "----=_Part_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	type part struct{ contentType, body string }
	var parts []part
	if msg.Text != "" {
		parts = append(parts, part{"text/plain", msg.Text})
	}
	// The last alternative is the preferred one.
	parts = append(parts, part{"text/html", msg.HTML})

	for _, part := range parts {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=UTF-8\r\n", part.contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		if err := writeQP(&b, part.body); err != nil {
			return nil, err
		}
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}

func writeQP(b *bytes.Buffer, body string) error {
	w := quotedprintable.NewWriter(b)
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to encode body: %w", err)
	}
	return w.Close()
}
