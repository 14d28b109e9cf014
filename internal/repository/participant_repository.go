package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/model"
)

// ParticipantFilter narrows participant listings. Zero values are ignored.
// Search matches the user's e-mail, profile names and the bib number.
type ParticipantFilter struct {
	UserID        uint64
	EventID       uint64
	CategoryID    uint64
	Status        string
	PaymentStatus string
	Search        string
}

// ParticipantRepo persists event registrations.
type ParticipantRepo struct{ DB *gorm.DB }

func NewParticipantRepo(db *gorm.DB) *ParticipantRepo { return &ParticipantRepo{DB: db} }

func (f ParticipantFilter) apply(db *gorm.DB) *gorm.DB {
	if f.UserID != 0 {
		db = db.Where("participants.user_id = ?", f.UserID)
	}
	if f.EventID != 0 {
		db = db.Where("participants.event_id = ?", f.EventID)
	}
	if f.CategoryID != 0 {
		db = db.Where("participants.category_id = ?", f.CategoryID)
	}
	if f.Status != "" {
		db = db.Where("participants.status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		db = db.Where("participants.payment_status = ?", f.PaymentStatus)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		db = db.Where(`(
			participants.user_id IN (SELECT id FROM users WHERE LOWER(email) LIKE ?)
			OR participants.user_id IN (SELECT user_id FROM profiles WHERE LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(display_name) LIKE ?)
			OR participants.bib_number LIKE ?
		)`, p, p, p, p, "%"+s+"%")
	}
	return db
}

// List returns one page of registrations, newest first, with the user, event
// and category attached.
func (r *ParticipantRepo) List(ctx context.Context, f ParticipantFilter, p Page) ([]model.Participant, int64, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&model.Participant{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []model.Participant{}
	err := f.apply(r.DB.WithContext(ctx)).
		Preload("User.Profile").
		Preload("Event").Preload("Category").
		Order("participants.registration_date DESC").Order("participants.id DESC").
		Scopes(p.scope).
		Find(&out).Error
	return out, total, err
}

// GetByID loads a registration with its relations.
func (r *ParticipantRepo) GetByID(ctx context.Context, id uint64) (*model.Participant, error) {
	return r.first(ctx, "participants.id = ?", id)
}

// GetForUser loads a registration only when it belongs to userID.
func (r *ParticipantRepo) GetForUser(ctx context.Context, id, userID uint64) (*model.Participant, error) {
	return r.first(ctx, "participants.id = ? AND participants.user_id = ?", id, userID)
}

func (r *ParticipantRepo) first(ctx context.Context, query string, args ...any) (*model.Participant, error) {
	var p model.Participant
	err := r.DB.WithContext(ctx).
		Preload("User.Profile").
		Preload("Event").Preload("Category").
		Where(query, args...).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Exists reports whether the user already registered for the event category.
func (r *ParticipantRepo) Exists(ctx context.Context, userID, eventID, categoryID uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Participant{}).
		Where("user_id = ? AND event_id = ? AND category_id = ?", userID, eventID, categoryID).
		Count(&n).Error
	return n > 0, err
}

// Create inserts the registration. A concurrent duplicate that slips past
// Exists is rejected by the unique index and surfaces as ErrDuplicate.
func (r *ParticipantRepo) Create(ctx context.Context, p *model.Participant) error {
	if err := r.DB.WithContext(ctx).Omit("User", "Event", "Category").Create(p).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update applies values to the registration and reloads it.
func (r *ParticipantRepo) Update(ctx context.Context, id uint64, values map[string]any) (*model.Participant, error) {
	if len(values) > 0 {
		res := r.DB.WithContext(ctx).Model(&model.Participant{ID: id}).Updates(values)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *ParticipantRepo) Delete(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Delete(&model.Participant{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
