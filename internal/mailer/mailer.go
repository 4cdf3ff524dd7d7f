// Package mailer sends transactional email for engagement notifications.
package mailer

import (
	"fmt"
	"html"

	"linkup/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends notification email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendCommentNotification(msg CommentNotification) error
}

// CommentNotification carries everything needed to render the comment email.
type CommentNotification struct {
	To            string
	ToName        string
	CommenterName string
	CommentText   string
	PostURL       string
}

// SMTPMailer delivers mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds an SMTPMailer from configuration.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) SendCommentNotification(msg CommentNotification) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetAddressHeader("To", msg.To, msg.ToName)
	mail.SetHeader("Subject", fmt.Sprintf("%s commented on your post", msg.CommenterName))
	mail.SetBody("text/html", renderCommentBody(msg))

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("send comment notification: %w", err)
	}
	return nil
}

// renderCommentBody escapes every user-controlled value so a comment cannot
// smuggle markup into the recipient's inbox.
func renderCommentBody(msg CommentNotification) string {
	return fmt.Sprintf(
		`<p>Hi %s,</p>
<p><strong>%s</strong> commented on your post:</p>
<blockquote>%s</blockquote>
<p><a href="%s">View the conversation</a></p>`,
		html.EscapeString(msg.ToName),
		html.EscapeString(msg.CommenterName),
		html.EscapeString(msg.CommentText),
		html.EscapeString(msg.PostURL),
	)
}
