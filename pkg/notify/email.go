package notify

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// EmailConfig holds SMTP configuration for digest delivery.
type EmailConfig struct {
	SMTPHost   string // e.g. "smtp.gmail.com"
	SMTPPort   string // "465" (implicit TLS) or "587" (STARTTLS)
	From       string // sender address, also the auth user
	Password   string // SMTP password or app-specific password
	To         string // comma-separated default recipients
	SenderName string // display name; defaults to "PaperBot"
}

// EmailNotifier delivers digests over SMTP.
type EmailNotifier struct {
	cfg EmailConfig
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.SenderName == "" {
		cfg.SenderName = "PaperBot"
	}
	return &EmailNotifier{cfg: cfg}
}

func (e *EmailNotifier) Channel() Channel { return ChannelEmail }

// Send delivers to the configured default recipients.
func (e *EmailNotifier) Send(ctx context.Context, msg Message) error {
	recipients := splitRecipients(e.cfg.To)
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}
	return e.SendTo(ctx, recipients, msg)
}

// SendTo delivers to an explicit recipient list, used for subscriber
// fan-out. Port 465 means implicit TLS, anything else STARTTLS; on connect
// failure the other scheme is tried once before giving up.
func (e *EmailNotifier) SendTo(_ context.Context, recipients []string, msg Message) error {
	body := e.buildBody(recipients, msg)

	var client *smtp.Client
	var err error
	addr := net.JoinHostPort(e.cfg.SMTPHost, e.cfg.SMTPPort)

	if e.cfg.SMTPPort == "465" {
		client, err = dialTLS(addr, e.cfg.SMTPHost)
	} else {
		client, err = dialSTARTTLS(addr, e.cfg.SMTPHost)
	}
	if err != nil {
		if e.cfg.SMTPPort == "465" {
			client, err = dialSTARTTLS(net.JoinHostPort(e.cfg.SMTPHost, "587"), e.cfg.SMTPHost)
		} else {
			client, err = dialTLS(net.JoinHostPort(e.cfg.SMTPHost, "465"), e.cfg.SMTPHost)
		}
		if err != nil {
			return fmt.Errorf("SMTP connect failed: %w", err)
		}
	}
	defer client.Close()

	auth := smtp.PlainAuth("", e.cfg.From, e.cfg.Password, e.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}
	if err := client.Mail(e.cfg.From); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}
	for _, to := range recipients {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("SMTP RCPT TO %s: %w", to, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("SMTP write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close data: %w", err)
	}
	return client.Quit()
}

func dialTLS(addr, host string) (*smtp.Client, error) {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, fmt.Errorf("TLS dial %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMTP client: %w", err)
	}
	return client, nil
}

func dialSTARTTLS(addr, host string) (*smtp.Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMTP client: %w", err)
	}
	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		client.Close()
		return nil, fmt.Errorf("STARTTLS: %w", err)
	}
	return client, nil
}

// encodeRFC2047 encodes a UTF-8 string for email headers.
func encodeRFC2047(s string) string {
	return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(s)) + "?="
}

func (e *EmailNotifier) buildBody(to []string, msg Message) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("From: %s <%s>\r\n", encodeRFC2047(e.cfg.SenderName), e.cfg.From))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", encodeRFC2047(msg.Title)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: base64\r\n")
	sb.WriteString("\r\n")

	htmlContent := msg.HTMLBody
	if htmlContent == "" {
		htmlContent = "<pre>" + msg.Body + "</pre>"
	}
	sb.WriteString(base64.StdEncoding.EncodeToString([]byte(htmlContent)))

	return sb.String()
}

func splitRecipients(to string) []string {
	var out []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
