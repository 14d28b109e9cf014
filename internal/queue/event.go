// Package queue defines message payloads exchanged over the message broker
// and the consumer that acts on them.
package queue

const (
	UserRegisteredQueue        = "user.registered"
	PasswordResetQueue         = "password.reset_requested"
	ParticipantRegisteredQueue = "participant.registered"
)

// Queues lists every queue the consumer subscribes to.
var Queues = []string{UserRegisteredQueue, PasswordResetQueue, ParticipantRegisteredQueue}

// UserRegisteredEvent is published after a local account is created. The
// consumer e-mails the verification link built from VerificationToken.
type UserRegisteredEvent struct {
	UserID            uint64 `json:"user_id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	VerificationToken string `json:"verification_token"`
	RegisteredAt      string `json:"registered_at"`
}

// PasswordResetRequestedEvent is published when a user asks for a reset link.
type PasswordResetRequestedEvent struct {
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
	ExpiresAt  string `json:"expires_at"`
}

// ParticipantRegisteredEvent is published when a user registers for an event
// category. It carries enough detail to log the registration without
// querying the primary database.
type ParticipantRegisteredEvent struct {
	ParticipantID uint64  `json:"participant_id"`
	UserID        uint64  `json:"user_id"`
	Email         string  `json:"email"`
	EventID       uint64  `json:"event_id"`
	EventName     string  `json:"event_name"`
	CategoryID    uint64  `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	AmountDue     float64 `json:"amount_due"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	RegisteredAt  string  `json:"registered_at"`
}
