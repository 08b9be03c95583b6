package notify

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers rendered notifications over plain SMTP.
type SMTPMailer struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	m := &SMTPMailer{
		Addr: host + ":" + port,
		From: from,
	}
	if username != "" {
		m.Auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *SMTPMailer) Send(n *RenderedNotification) error {
	if n.To == "" {
		return errors.New("recipient has no email address")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", n.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", n.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(n.HTMLBody)

	return smtp.SendMail(m.Addr, m.Auth, m.From, []string{n.To}, []byte(b.String()))
}
