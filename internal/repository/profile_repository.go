package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/model"
)

// ProfileRepo persists the per-user profile row. Rows are created lazily.
type ProfileRepo struct{ DB *gorm.DB }

func NewProfileRepo(db *gorm.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// GetOrCreate returns the user's profile, inserting an empty one if absent.
func (r *ProfileRepo) GetOrCreate(ctx context.Context, userID uint64) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.WithContext(ctx).Where(model.Profile{UserID: userID}).FirstOrCreate(&p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent insert
		err = r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	}
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Update applies values to the user's profile, creating it first if needed.
func (r *ProfileRepo) Update(ctx context.Context, userID uint64, values map[string]any) (*model.Profile, error) {
	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return p, nil
	}
	if err := r.DB.WithContext(ctx).Model(p).Updates(values).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetOrCreate(ctx, userID)
}

// FillEmpty copies each non-empty value in src onto the profile fields that
// are still empty. Existing values are never overwritten.
func (r *ProfileRepo) FillEmpty(ctx context.Context, userID uint64, src model.Profile) (*model.Profile, error) {
	p, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	fill := func(col, cur, next string) {
		if cur == "" && next != "" {
			values[col] = next
		}
	}
	fill("name", p.Name, src.Name)
	fill("first_name", p.FirstName, src.FirstName)
	fill("last_name", p.LastName, src.LastName)
	fill("display_name", p.DisplayName, src.DisplayName)
	fill("picture", p.Picture, src.Picture)
	fill("language", p.Language, src.Language)
	return r.Update(ctx, userID, values)
}
