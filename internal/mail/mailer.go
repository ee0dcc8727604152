package mail

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"time"

	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/config"
)

// Purpose selects the wording of an OTP email.
type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeReset    Purpose = "reset"
)

type SMTPMailer struct {
	cfg  config.MailConfig
	auth smtp.Auth
	log  zerolog.Logger
}

func NewSMTPMailer(cfg config.MailConfig, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPServer),
		log:  log,
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, recipient string, code string, purpose Purpose) error {
	subject, body := renderOTP(code, purpose)
	return m.Send(ctx, recipient, subject, body)
}

func (m *SMTPMailer) Send(ctx context.Context, recipient, subject, body string) error {
	if _, err := mail.ParseAddress(recipient); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	msg, err := m.buildMessage(recipient, subject, body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout())
	defer cancel()

	address := fmt.Sprintf("%s:%d", m.cfg.SMTPServer, m.cfg.SMTPPort)
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		m.log.Error().Err(err).Str("address", address).Msg("smtp dial failed")
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// Port 465 = implicit TLS, otherwise STARTTLS
	tlsConfig := &tls.Config{ServerName: m.cfg.SMTPServer}
	if m.cfg.SMTPPort == 465 {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, m.cfg.SMTPServer)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if m.cfg.SMTPPort != 465 {
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if err := client.Auth(m.auth); err != nil {
		m.log.Error().Err(err).Msg("smtp authentication failed")
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(m.cfg.Username); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

func (m *SMTPMailer) timeout() time.Duration {
	if m.cfg.Timeout <= 0 {
		return 10 * time.Second
	}
	return m.cfg.Timeout
}

func (m *SMTPMailer) buildMessage(recipient, subject, body string) ([]byte, error) {
	var nonce [8]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}
	msgID := fmt.Sprintf("<%d.%s@resep.app>", time.Now().UnixNano(), hex.EncodeToString(nonce[:]))

	return fmt.Appendf(nil,
		"Message-ID: %s\r\n"+
			"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		msgID,
		time.Now().Format(time.RFC1123Z),
		recipient,
		mime.QEncoding.Encode("utf-8", m.cfg.SenderName),
		m.cfg.Username,
		mime.QEncoding.Encode("utf-8", subject),
		body,
	), nil
}

func renderOTP(code string, purpose Purpose) (subject, body string) {
	switch purpose {
	case PurposeReset:
		return "Your password reset code", fmt.Sprintf(
			"Your password reset code is: %s\r\n\r\nThe code expires shortly. If you did not request a reset, ignore this email.\r\n", code)
	default:
		return "Your OTP Code", fmt.Sprintf("Your OTP code is: %s\r\n", code)
	}
}
