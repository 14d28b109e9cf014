package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/model"
)

// EventFilter narrows the public event listing. Zero values are ignored.
type EventFilter struct {
	Search    string // name or description, case-insensitive
	EventType string
	Status    string
	Country   string // substring, case-insensitive
	City      string // substring, case-insensitive
	StartDate *time.Time
	EndDate   *time.Time
}

// EventRepo persists events and their categories.
type EventRepo struct{ DB *gorm.DB }

func NewEventRepo(db *gorm.DB) *EventRepo { return &EventRepo{DB: db} }

func likePattern(s string) string { return "%" + strings.ToLower(strings.TrimSpace(s)) + "%" }

func (f EventFilter) apply(db *gorm.DB) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		db = db.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", p, p)
	}
	if f.EventType != "" {
		db = db.Where("event_type = ?", f.EventType)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Country != "" {
		db = db.Where("LOWER(country) LIKE ?", likePattern(f.Country))
	}
	if f.City != "" {
		db = db.Where("LOWER(city) LIKE ?", likePattern(f.City))
	}
	if f.StartDate != nil {
		db = db.Where("event_date >= ?", f.StartDate.UTC())
	}
	if f.EndDate != nil {
		db = db.Where("event_date <= ?", f.EndDate.UTC())
	}
	return db
}

// List returns one page of events ordered by date then name, plus the total
// number of matches.
func (r *EventRepo) List(ctx context.Context, f EventFilter, p Page) ([]model.Event, int64, error) {
	base := f.apply(r.DB.WithContext(ctx).Model(&model.Event{}))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	events := []model.Event{}
	err := f.apply(r.DB.WithContext(ctx)).
		Order("event_date ASC").Order("name ASC").
		Scopes(p.scope).
		Find(&events).Error
	return events, total, err
}

func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var e model.Event
	if err := r.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	return translate(r.DB.WithContext(ctx).Create(e).Error)
}

// Update applies the given column values and returns the stored event.
func (r *EventRepo) Update(ctx context.Context, id uint64, values map[string]any) (*model.Event, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := r.DB.WithContext(ctx).Model(&model.Event{ID: id}).Updates(values).Error; err != nil {
			return nil, translate(err)
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the event with its categories and registrations.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Event{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if err := tx.Where("event_id = ?", id).Delete(&model.Participant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&model.EventCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Event{}, id).Error
	})
}

// ListCategories returns the categories of an event in creation order.
func (r *EventRepo) ListCategories(ctx context.Context, eventID uint64) ([]model.EventCategory, error) {
	cats := []model.EventCategory{}
	err := r.DB.WithContext(ctx).Where("event_id = ?", eventID).Order("id ASC").Find(&cats).Error
	return cats, err
}

func (r *EventRepo) GetCategory(ctx context.Context, id uint64) (*model.EventCategory, error) {
	var c model.EventCategory
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetCategoryOfEvent returns the category only when it belongs to eventID.
func (r *EventRepo) GetCategoryOfEvent(ctx context.Context, eventID, categoryID uint64) (*model.EventCategory, error) {
	var c model.EventCategory
	err := r.DB.WithContext(ctx).Where("id = ? AND event_id = ?", categoryID, eventID).First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *EventRepo) CreateCategory(ctx context.Context, c *model.EventCategory) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *EventRepo) UpdateCategory(ctx context.Context, id uint64, values map[string]any) (*model.EventCategory, error) {
	if _, err := r.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := r.DB.WithContext(ctx).Model(&model.EventCategory{ID: id}).Updates(values).Error; err != nil {
			return nil, translate(err)
		}
	}
	return r.GetCategory(ctx, id)
}

// DeleteCategory removes the category and the registrations made for it.
func (r *EventRepo) DeleteCategory(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.EventCategory{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if err := tx.Where("category_id = ?", id).Delete(&model.Participant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.EventCategory{}, id).Error
	})
}
