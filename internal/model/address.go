package model

import "time"

// Address is a postal address owned by a user. At most one address per user
// has IsPrimary set.
type Address struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	UserID     uint64    `gorm:"not null;index" json:"userId"`
	Type       string    `gorm:"size:50" json:"type"`
	Street     string    `gorm:"size:255" json:"street"`
	City       string    `gorm:"size:100" json:"city"`
	State      string    `gorm:"size:100" json:"state"`
	PostalCode string    `gorm:"size:20" json:"postalCode"`
	Country    string    `gorm:"size:100" json:"country"`
	IsPrimary  bool      `gorm:"not null;default:false" json:"isPrimary"`
	Label      string    `gorm:"size:100" json:"label"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Profile{},
		&Token{},
		&Event{},
		&EventCategory{},
		&Participant{},
		&Address{},
	}
}
