package model

import "time"

// Event statuses.
const (
	EventUpcoming  = "upcoming"
	EventActive    = "active"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// Event is a race or meeting that users register for. Events and their
// categories are managed by administrators.
type Event struct {
	ID                    uint64     `gorm:"primaryKey" json:"id"`
	Name                  string     `gorm:"size:100;not null;index" json:"name"`
	Description           string     `gorm:"size:2000" json:"description"`
	EventType             string     `gorm:"size:50;not null" json:"eventType"`
	Status                string     `gorm:"size:20;not null;default:'upcoming'" json:"status"`
	EventDate             time.Time  `gorm:"not null;index" json:"eventDate"`
	RegistrationStartDate time.Time  `gorm:"not null" json:"registrationStartDate"`
	RegistrationEndDate   time.Time  `gorm:"not null" json:"registrationEndDate"`
	ResultsEntryDeadline  *time.Time `json:"resultsEntryDeadline"`
	Location              string     `gorm:"size:100" json:"location"`
	Address               string     `gorm:"size:255" json:"address"`
	City                  string     `gorm:"size:100" json:"city"`
	State                 string     `gorm:"size:100" json:"state"`
	Country               string     `gorm:"size:100" json:"country"`
	PostalCode            string     `gorm:"size:20" json:"postalCode"`
	FeaturedImage         string     `gorm:"size:500" json:"featuredImage"`
	BannerImage           string     `gorm:"size:500" json:"bannerImage"`
	BasePrice             float64    `gorm:"not null;default:0" json:"basePrice"`
	Currency              string     `gorm:"size:3;not null;default:'USD'" json:"currency"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Category gender restrictions; an empty value means unrestricted.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderAny    = "any"
)

// EventCategory is one competition class of an event, such as a 10k run.
type EventCategory struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	EventID     uint64    `gorm:"not null;index" json:"eventId"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Distance    float64   `gorm:"not null" json:"distance"`
	Gender      string    `gorm:"size:10" json:"gender"`
	MinAge      *int      `json:"minAge"`
	MaxAge      *int      `json:"maxAge"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
