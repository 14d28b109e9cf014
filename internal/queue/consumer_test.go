package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/logging"
	"github.com/iliyamo/event-registration/internal/mailer"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func newConsumer(t *testing.T) (*Consumer, *recordingMailer) {
	m := &recordingMailer{}
	return &Consumer{
		Mailer:      m,
		BaseURL:     "https://api.example.com",
		FrontendURL: "https://app.example.com",
		LogDir:      t.TempDir(),
		Log:         logging.Discard(),
	}, m
}

func mustJSON(t *testing.T, v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleUserRegisteredSendsVerificationLink(t *testing.T) {
	c, m := newConsumer(t)
	body := mustJSON(t, UserRegisteredEvent{UserID: 1, Email: "new@example.com", Name: "Nia", VerificationToken: "tok-123"})

	require.NoError(t, c.Handle(context.Background(), UserRegisteredQueue, body))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "new@example.com", m.sent[0].To)
	assert.Contains(t, m.sent[0].HTML, "https://api.example.com/auth/verify/tok-123")
}

func TestHandlePasswordResetSendsFrontendLink(t *testing.T) {
	c, m := newConsumer(t)
	body := mustJSON(t, PasswordResetRequestedEvent{UserID: 1, Email: "r@example.com", ResetToken: "reset-9"})

	require.NoError(t, c.Handle(context.Background(), PasswordResetQueue, body))
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].HTML, "https://app.example.com/reset-password?token=reset-9")
}

func TestHandleParticipantRegisteredAppendsLog(t *testing.T) {
	c, _ := newConsumer(t)
	for i := 0; i < 2; i++ {
		body := mustJSON(t, ParticipantRegisteredEvent{ParticipantID: uint64(i + 1), UserID: 3, EventName: "City Marathon", CategoryName: "42k", Status: "pending", AmountDue: 50, Currency: "EUR"})
		require.NoError(t, c.Handle(context.Background(), ParticipantRegisteredQueue, body))
	}

	raw, err := os.ReadFile(filepath.Join(c.LogDir, "registrations.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "participant_id=1")
	assert.Contains(t, lines[1], `event="City Marathon"`)
	assert.Contains(t, lines[1], "amount=50.00 EUR")
}

func TestHandleRejectsBadInput(t *testing.T) {
	c, m := newConsumer(t)
	ctx := context.Background()

	assert.Error(t, c.Handle(ctx, UserRegisteredQueue, []byte("{")))
	assert.Error(t, c.Handle(ctx, UserRegisteredQueue, mustJSON(t, UserRegisteredEvent{Email: "x@example.com"})))
	assert.Error(t, c.Handle(ctx, "unknown", []byte("{}")))
	assert.Empty(t, m.sent)
}
