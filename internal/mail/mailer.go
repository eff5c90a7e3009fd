// Package mail sends the password-reset verification code over SMTP.
package mail

import (
	"errors"
	"fmt"
	"net/smtp"
)

// Mailer delivers verification codes by email.  An unconfigured Mailer
// (empty host) reports an error from SendCode; the endpoint then answers
// with a failure envelope instead of retrying.
type Mailer struct {
	Host string
	Port string
	User string
	Pass string
}

// ErrDisabled is returned when SMTP settings are absent.
var ErrDisabled = errors.New("mail not configured")

func New(host, port, user, pass string) *Mailer {
	return &Mailer{Host: host, Port: port, User: user, Pass: pass}
}

// SendCode mails the 6-digit verification code to the recipient.  Delivery
// is a single attempt; failures surface to the caller.
func (m *Mailer) SendCode(to, code string) error {
	if m == nil || m.Host == "" {
		return ErrDisabled
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Password reset verification code\r\n\r\nYour verification code is: %s\r\n",
		m.User, to, code)
	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	return smtp.SendMail(addr, auth, m.User, []string{to}, []byte(msg))
}
