package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/event-registration/internal/model"
)

// TokenRepo persists the server-side token records used for revocation and
// the grants received from OAuth providers.
type TokenRepo struct{ DB *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{DB: db} }

var tokenConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}, {Name: "provider"}},
	DoUpdates: clause.AssignmentColumns([]string{"token", "refresh_token", "token_type", "scope", "expires_at", "updated_at"}),
}

// Upsert creates the row for (user, kind, provider) or overwrites it.
func (r *TokenRepo) Upsert(ctx context.Context, t *model.Token) error {
	return r.DB.WithContext(ctx).Clauses(tokenConflict).Create(t).Error
}

// StoreAccess overwrites the single access record of the user.
func (r *TokenRepo) StoreAccess(ctx context.Context, userID uint64, token string, exp time.Time) error {
	return r.Upsert(ctx, &model.Token{
		UserID:    userID,
		Kind:      model.TokenKindAccess,
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: &exp,
	})
}

// ActiveAccess reports whether the user's stored access token equals token
// and has not expired at now.
func (r *TokenRepo) ActiveAccess(ctx context.Context, userID uint64, token string, now time.Time) (bool, error) {
	var t model.Token
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND provider = ''", userID, model.TokenKindAccess).
		First(&t).Error
	if err != nil {
		if err = translate(err); err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if t.Token != token {
		return false, nil
	}
	return t.ExpiresAt == nil || t.ExpiresAt.After(now), nil
}

// DeleteAccess removes every access record of the user.
func (r *TokenRepo) DeleteAccess(ctx context.Context, userID uint64) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, model.TokenKindAccess).
		Delete(&model.Token{}).Error
}

// Get returns the record for (user, kind, provider).
func (r *TokenRepo) Get(ctx context.Context, userID uint64, kind, provider string) (*model.Token, error) {
	var t model.Token
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND provider = ?", userID, kind, provider).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}
