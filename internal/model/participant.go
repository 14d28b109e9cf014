package model

import "time"

// Participant statuses.
const (
	ParticipantPending   = "pending"
	ParticipantConfirmed = "confirmed"
	ParticipantCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Participant is a user's registration for one category of one event. The
// composite unique index rejects a second registration for the same triple.
type Participant struct {
	ID                  uint64     `gorm:"primaryKey" json:"id"`
	UserID              uint64     `gorm:"not null;uniqueIndex:idx_participants_registration" json:"userId"`
	EventID             uint64     `gorm:"not null;uniqueIndex:idx_participants_registration;index" json:"eventId"`
	CategoryID          uint64     `gorm:"not null;uniqueIndex:idx_participants_registration;index" json:"categoryId"`
	Status              string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentStatus       string     `gorm:"size:20;not null;default:'unpaid'" json:"paymentStatus"`
	AmountPaid          float64    `gorm:"not null;default:0" json:"amountPaid"`
	TransactionID       string     `gorm:"size:100" json:"transactionId"`
	PaymentDate         *time.Time `json:"paymentDate"`
	BibNumber           string     `gorm:"size:20" json:"bibNumber"`
	ShirtSize           string     `gorm:"size:5" json:"shirtSize"`
	EstimatedFinishTime string     `gorm:"size:8" json:"estimatedFinishTime"`
	Notes               string     `gorm:"size:500" json:"notes"`
	RegistrationDate    time.Time  `gorm:"not null;index" json:"registrationDate"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`

	User     *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event    *Event         `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Category *EventCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
