package model

import "time"

// Roles a user can hold. Route groups list the roles they accept explicitly.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Sign-in providers recorded on the user.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents an account in the `users` table. Secrets carry json:"-" so
// a User can be written to a response as is.
type User struct {
	ID                     uint64     `gorm:"primaryKey" json:"id"`
	Email                  string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash           string     `gorm:"size:255;not null" json:"-"`
	EmailVerified          bool       `gorm:"not null;default:false" json:"emailVerified"`
	EmailVerificationToken *string    `gorm:"size:64;index" json:"-"`
	PasswordResetToken     *string    `gorm:"size:64;index" json:"-"`
	PasswordResetExpires   *time.Time `json:"-"`
	GoogleID               *string    `gorm:"size:64;uniqueIndex" json:"-"`
	Provider               string     `gorm:"size:20;not null;default:'local'" json:"provider"`
	Role                   string     `gorm:"size:20;not null;default:'user'" json:"role"`
	LastLogin              *time.Time `json:"lastLogin,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// Profile holds the optional display fields of a user, one row per user.
type Profile struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	UserID      uint64     `gorm:"uniqueIndex;not null" json:"userId"`
	Name        string     `gorm:"size:100" json:"name"`
	FirstName   string     `gorm:"size:100" json:"firstName"`
	LastName    string     `gorm:"size:100" json:"lastName"`
	DisplayName string     `gorm:"size:100" json:"displayName"`
	Gender      string     `gorm:"size:100" json:"gender"`
	Birthdate   *time.Time `json:"birthdate"`
	Location    string     `gorm:"size:100" json:"location"`
	Website     string     `gorm:"size:500" json:"website"`
	Bio         string     `gorm:"size:500" json:"bio"`
	Picture     string     `gorm:"size:500" json:"picture"`
	CoverPhoto  string     `gorm:"size:500" json:"coverPhoto"`
	PhoneNumber string     `gorm:"size:20" json:"phoneNumber"`
	Language    string     `gorm:"size:100" json:"language"`
	Timezone    string     `gorm:"size:100" json:"timezone"`
	Twitter     string     `gorm:"size:100" json:"twitter"`
	Instagram   string     `gorm:"size:100" json:"instagram"`
	Linkedin    string     `gorm:"size:100" json:"linkedin"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Token kinds.
const (
	TokenKindAccess = "access"
	TokenKindOAuth  = "oauth"
)

// Token is the server-side record behind a session or a third-party grant.
// The unique index keeps one access row per user and one oauth row per
// (user, provider); access rows use an empty provider.
type Token struct {
	ID           uint64 `gorm:"primaryKey"`
	UserID       uint64 `gorm:"not null;uniqueIndex:idx_tokens_user_kind_provider"`
	Kind         string `gorm:"size:20;not null;uniqueIndex:idx_tokens_user_kind_provider"`
	Provider     string `gorm:"size:20;not null;default:'';uniqueIndex:idx_tokens_user_kind_provider"`
	Token        string `gorm:"type:text;not null"`
	RefreshToken string `gorm:"type:text"`
	TokenType    string `gorm:"size:20"`
	Scope        string `gorm:"size:255"`
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
