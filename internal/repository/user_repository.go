package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/model"
)

// UserRepo persists accounts and their profile rows.
type UserRepo struct{ DB *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the user together with its profile in one transaction.
// A taken e-mail yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.Profile == nil {
		u.Profile = &model.Profile{}
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(u).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailExists
	}
	return err
}

// EmailExists reports whether an account uses the given address.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByGoogleIDOrEmail prefers the account linked to googleID and falls back
// to the account registered with email.
func (r *UserRepo) GetByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*model.User, error) {
	u, err := r.first(ctx, "google_id = ?", googleID)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return u, err
	}
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.first(ctx, "email_verification_token = ?", token)
}

func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	return r.first(ctx, "password_reset_token = ?", token)
}

func (r *UserRepo) first(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User
	err := r.DB.WithContext(ctx).Preload("Profile").Where(query, args...).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// MarkVerified sets emailVerified and clears the single-use token.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	return r.update(ctx, id, map[string]any{
		"email_verified":           true,
		"email_verification_token": nil,
	})
}

// SetResetToken stores a password reset token valid until exp.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, token string, exp time.Time) error {
	return r.update(ctx, id, map[string]any{
		"password_reset_token":   token,
		"password_reset_expires": exp,
	})
}

// UpdatePassword replaces the hash and clears any pending reset token.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.update(ctx, id, map[string]any{
		"password_hash":          hash,
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	})
}

// LinkGoogle attaches a Google account to an existing user and marks the
// e-mail verified. The original provider is kept when one is recorded.
func (r *UserRepo) LinkGoogle(ctx context.Context, u *model.User, googleID string, at time.Time) error {
	provider := u.Provider
	if provider == "" {
		provider = model.ProviderGoogle
	}
	if err := r.update(ctx, u.ID, map[string]any{
		"google_id":      googleID,
		"provider":       provider,
		"email_verified": true,
		"last_login":     at,
	}); err != nil {
		return err
	}
	u.GoogleID = &googleID
	u.Provider = provider
	u.EmailVerified = true
	u.LastLogin = &at
	return nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	return r.update(ctx, id, map[string]any{"last_login": at})
}

func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	return r.update(ctx, id, map[string]any{"role": role})
}

func (r *UserRepo) update(ctx context.Context, id uint64, values map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero rows when nothing changed.
		var n int64
		if err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}
