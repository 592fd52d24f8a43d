// internal/mailer/smtp.go
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/wishsend/wishsend-backend/internal/model"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport delivers a message with the given credential bundle. Errors must
// carry a human-readable description; it is stored verbatim on the email log.
type Transport interface {
	Send(ctx context.Context, settings *model.SMTPSettings, msg Message) error
}

// SMTPTransport sends mail over a raw SMTP session. Port 465 gets an
// implicit TLS connection, every other port dials plain and upgrades with
// STARTTLS when the server offers it.
type SMTPTransport struct {
	DialTimeout time.Duration
}

func NewSMTPTransport() *SMTPTransport {
	return &SMTPTransport{DialTimeout: 15 * time.Second}
}

func (t *SMTPTransport) Send(ctx context.Context, settings *model.SMTPSettings, msg Message) error {
	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)

	var client *smtp.Client
	var err error
	if settings.Port == 465 {
		client, err = t.dialTLS(ctx, settings.Host, addr)
	} else {
		client, err = t.dialPlain(ctx, settings.Host, addr)
	}
	if err != nil {
		return fmt.Errorf("SMTP connect to %s: %w", addr, err)
	}
	defer client.Quit()

	if settings.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsConfig := &tls.Config{ServerName: settings.Host}
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("STARTTLS: %w", err)
			}
		}
	}

	if settings.Username != "" && settings.Password != "" {
		auth := smtp.PlainAuth("", settings.Username, settings.Password, settings.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth: %w", err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write([]byte(buildMessage(msg))); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return nil
}

func (t *SMTPTransport) dialPlain(ctx context.Context, host, addr string) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: t.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

func (t *SMTPTransport) dialTLS(ctx context.Context, host, addr string) (*smtp.Client, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: t.DialTimeout},
		Config:    &tls.Config{ServerName: host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

func buildMessage(msg Message) string {
	headers := []string{
		"From: " + msg.From,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=utf-8",
		"",
		msg.HTML,
	}
	return strings.Join(headers, "\r\n")
}

var _ Transport = (*SMTPTransport)(nil)
