package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulTenZ/Food-Recipe-App/internal/config"
)

func TestRenderOTP(t *testing.T) {
	subject, body := renderOTP("A1B2C3", PurposeRegister)
	assert.Equal(t, "Your OTP Code", subject)
	assert.Contains(t, body, "A1B2C3")

	subject, body = renderOTP("DEADBEEF", PurposeReset)
	assert.Contains(t, subject, "reset")
	assert.Contains(t, body, "DEADBEEF")
}

func TestBuildMessageHeaders(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Username: "noreply@resep.app", SenderName: "Resep App"}, zerolog.Nop())

	msg, err := m.buildMessage("a@x.com", "Your OTP Code", "body")
	require.NoError(t, err)

	text := string(msg)
	assert.Contains(t, text, "To: a@x.com\r\n")
	assert.Contains(t, text, "<noreply@resep.app>")
	assert.True(t, strings.HasSuffix(text, "\r\n\r\nbody"))
}

func TestSendRejectsBadRecipient(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{SMTPServer: "127.0.0.1", SMTPPort: 1}, zerolog.Nop())
	err := m.Send(context.Background(), "not an address", "s", "b")
	assert.Error(t, err)
}
