package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/logging"
)

func TestVerificationEmailEscapesName(t *testing.T) {
	m, err := VerificationEmail("a@example.com", "<b>Ann</b>", "https://api.example.com/auth/verify/abc")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", m.To)
	assert.Contains(t, m.HTML, `href="https://api.example.com/auth/verify/abc"`)
	assert.Contains(t, m.HTML, "&lt;b&gt;Ann&lt;/b&gt;")
}

func TestComposeHeaders(t *testing.T) {
	raw := string(compose("no-reply@example.com", Message{To: "b@example.com", Subject: "Hi", HTML: "<p>x</p>\n"}))
	assert.True(t, strings.HasPrefix(raw, "From: no-reply@example.com\r\nTo: b@example.com\r\n"))
	assert.Contains(t, raw, "Content-Type: text/html; charset=\"utf-8\"\r\n\r\n<p>x</p>\r\n")
}

func TestNewWithoutHostLogsOnly(t *testing.T) {
	m := New(config.SMTPConfig{}, logging.Discard())
	require.IsType(t, LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), Message{To: "c@example.com"}))
}
