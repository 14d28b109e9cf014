package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/model"
)

// AddressRepo persists user addresses. Every method is scoped to the owning
// user; an address of another user is reported as ErrNotFound.
type AddressRepo struct{ DB *gorm.DB }

func NewAddressRepo(db *gorm.DB) *AddressRepo { return &AddressRepo{DB: db} }

// List returns one page of the user's addresses, primary first.
func (r *AddressRepo) List(ctx context.Context, userID uint64, p Page) ([]model.Address, int64, error) {
	var total int64
	q := r.DB.WithContext(ctx).Model(&model.Address{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []model.Address{}
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_primary DESC").Order("updated_at DESC").Order("id DESC").
		Scopes(p.scope).
		Find(&out).Error
	return out, total, err
}

func (r *AddressRepo) Get(ctx context.Context, userID, id uint64) (*model.Address, error) {
	return getAddress(r.DB.WithContext(ctx), userID, id)
}

func getAddress(db *gorm.DB, userID, id uint64) (*model.Address, error) {
	var a model.Address
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// clearPrimary unsets the primary flag on every other address of the user.
func clearPrimary(tx *gorm.DB, userID, keepID uint64) error {
	return tx.Model(&model.Address{}).
		Where("user_id = ? AND id <> ? AND is_primary = ?", userID, keepID, true).
		Update("is_primary", false).Error
}

// Create inserts the address. When it is primary, the previous primary is
// cleared in the same transaction.
func (r *AddressRepo) Create(ctx context.Context, a *model.Address) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsPrimary {
			if err := clearPrimary(tx, a.UserID, 0); err != nil {
				return err
			}
		}
		return tx.Create(a).Error
	})
}

// Update applies values to the user's address. Setting is_primary to true
// clears the flag on the user's other addresses in the same transaction.
func (r *AddressRepo) Update(ctx context.Context, userID, id uint64, values map[string]any) (*model.Address, error) {
	var out *model.Address
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := getAddress(tx, userID, id)
		if err != nil {
			return err
		}
		if primary, ok := values["is_primary"].(bool); ok && primary {
			if err := clearPrimary(tx, userID, id); err != nil {
				return err
			}
		}
		if len(values) > 0 {
			if err := tx.Model(a).Updates(values).Error; err != nil {
				return err
			}
		}
		out, err = getAddress(tx, userID, id)
		return err
	})
	return out, err
}

// SetPrimary makes the address the user's only primary address. changed is
// false when the address was already primary.
func (r *AddressRepo) SetPrimary(ctx context.Context, userID, id uint64) (a *model.Address, changed bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := getAddress(tx, userID, id)
		if err != nil {
			return err
		}
		a = cur
		if cur.IsPrimary {
			return nil
		}
		if err := clearPrimary(tx, userID, id); err != nil {
			return err
		}
		if err := tx.Model(cur).Update("is_primary", true).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	return a, changed, err
}

func (r *AddressRepo) Delete(ctx context.Context, userID, id uint64) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPrimary returns how many addresses of the user are flagged primary.
func (r *AddressRepo) CountPrimary(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Address{}).
		Where("user_id = ? AND is_primary = ?", userID, true).Count(&n).Error
	return n, err
}
