package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/gympoint/gympoint-api/pkg/config"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender delivers composed messages. The queue worker is the only caller.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail over SMTP with STARTTLS when the server offers it.
type SMTPSender struct {
	smtp config.SMTPConfig
	mail config.MailConfig
}

// NewSMTPSender constructs a Sender from transport and identity config.
func NewSMTPSender(smtpCfg config.SMTPConfig, mailCfg config.MailConfig) *SMTPSender {
	return &SMTPSender{smtp: smtpCfg, mail: mailCfg}
}

func (s *SMTPSender) Send(msg Message) error {
	var b bytes.Buffer
	write := func(format string, a ...interface{}) { fmt.Fprintf(&b, format, a...) }

	write("From: %s\r\n", s.fromHeader())
	write("To: %s\r\n", recipientHeader(msg.ToName, msg.To))
	write("Subject: %s\r\n", msg.Subject)
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("\r\n")
	write("%s\r\n", msg.Body)

	addr := fmt.Sprintf("%s:%d", s.smtp.Host, s.smtp.Port)

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.smtp.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsCfg := &tls.Config{ServerName: s.smtp.Host, MinVersion: tls.VersionTLS12}
		if err := client.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if s.smtp.Username != "" {
		auth := smtp.PlainAuth("", s.smtp.Username, s.smtp.Password, s.smtp.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.mail.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}

func (s *SMTPSender) fromHeader() string {
	return recipientHeader(s.mail.FromName, s.mail.From)
}

func recipientHeader(name, addr string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}
