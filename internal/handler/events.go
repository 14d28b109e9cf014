package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
)

var eventStatuses = []string{model.EventUpcoming, model.EventActive, model.EventCompleted, model.EventCancelled}

// EventHandler serves the public event catalogue and its admin management.
type EventHandler struct {
	Events *repository.EventRepo
}

type createEventReq struct {
	Name                  string     `json:"name" validate:"required,max=100"`
	Description           *string    `json:"description" validate:"omitempty,max=2000"`
	EventType             string     `json:"eventType" validate:"required,max=50"`
	Status                *string    `json:"status" validate:"omitempty,oneof=upcoming active completed cancelled"`
	EventDate             *time.Time `json:"eventDate" validate:"required"`
	RegistrationStartDate *time.Time `json:"registrationStartDate" validate:"required"`
	RegistrationEndDate   *time.Time `json:"registrationEndDate" validate:"required"`
	ResultsEntryDeadline  *time.Time `json:"resultsEntryDeadline"`
	Location              *string    `json:"location" validate:"omitempty,max=100"`
	Address               *string    `json:"address" validate:"omitempty,max=255"`
	City                  *string    `json:"city" validate:"omitempty,max=100"`
	State                 *string    `json:"state" validate:"omitempty,max=100"`
	Country               *string    `json:"country" validate:"omitempty,max=100"`
	PostalCode            *string    `json:"postalCode" validate:"omitempty,max=20"`
	FeaturedImage         *string    `json:"featuredImage" validate:"omitempty,url,max=500"`
	BannerImage           *string    `json:"bannerImage" validate:"omitempty,url,max=500"`
	BasePrice             *float64   `json:"basePrice" validate:"required,gte=0"`
	Currency              *string    `json:"currency" validate:"omitempty,max=3"`
}

// updateEventReq accepts any subset of the event fields. The registration
// window ordering is only checked when an event is created.
type updateEventReq struct {
	Name                  *string    `json:"name" validate:"omitnil,min=1,max=100"`
	Description           *string    `json:"description" validate:"omitempty,max=2000"`
	EventType             *string    `json:"eventType" validate:"omitnil,min=1,max=50"`
	Status                *string    `json:"status" validate:"omitnil,oneof=upcoming active completed cancelled"`
	EventDate             *time.Time `json:"eventDate"`
	RegistrationStartDate *time.Time `json:"registrationStartDate"`
	RegistrationEndDate   *time.Time `json:"registrationEndDate"`
	ResultsEntryDeadline  *time.Time `json:"resultsEntryDeadline"`
	Location              *string    `json:"location" validate:"omitempty,max=100"`
	Address               *string    `json:"address" validate:"omitempty,max=255"`
	City                  *string    `json:"city" validate:"omitempty,max=100"`
	State                 *string    `json:"state" validate:"omitempty,max=100"`
	Country               *string    `json:"country" validate:"omitempty,max=100"`
	PostalCode            *string    `json:"postalCode" validate:"omitempty,max=20"`
	FeaturedImage         *string    `json:"featuredImage" validate:"omitempty,url,max=500"`
	BannerImage           *string    `json:"bannerImage" validate:"omitempty,url,max=500"`
	BasePrice             *float64   `json:"basePrice" validate:"omitnil,gte=0"`
	Currency              *string    `json:"currency" validate:"omitnil,min=1,max=3"`
}

type categoryReq struct {
	Name        *string  `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Distance    *float64 `json:"distance" validate:"omitnil,gt=0"`
	Gender      *string  `json:"gender" validate:"omitempty,oneof=male female any"`
	MinAge      *int     `json:"minAge" validate:"omitnil,gte=0"`
	MaxAge      *int     `json:"maxAge" validate:"omitnil,gt=0"`
}

type eventListResp struct {
	Events     []model.Event         `json:"events"`
	Pagination repository.Pagination `json:"pagination"`
}

type eventResp struct {
	Event *model.Event `json:"event"`
}

type categoriesResp struct {
	Categories []model.EventCategory `json:"categories"`
}

type categoryResp struct {
	Category *model.EventCategory `json:"category"`
}

// List returns a filtered page of events ordered by date.
func (h *EventHandler) List(c echo.Context) error {
	page, err := pageQuery(c)
	if err != nil {
		return err
	}
	f := repository.EventFilter{
		Search:    c.QueryParam("search"),
		EventType: c.QueryParam("eventType"),
		Country:   c.QueryParam("country"),
		City:      c.QueryParam("city"),
	}
	if f.Status, err = enumQuery(c, "status", eventStatuses...); err != nil {
		return err
	}
	if f.StartDate, err = dateQuery(c, "startDate"); err != nil {
		return err
	}
	if f.EndDate, err = dateQuery(c, "endDate"); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	events, total, err := h.Events.List(ctx, f, page)
	if err != nil {
		return err
	}
	return response.OK(c, eventListResp{Events: events, Pagination: repository.NewPagination(total, page)})
}

func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id", "Event ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	e, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return err
	}
	return response.OK(c, eventResp{Event: e})
}

// Create adds an event. The registration window must open before it closes
// and close no later than the event itself.
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if !req.RegistrationStartDate.Before(*req.RegistrationEndDate) {
		return invalid("Registration start date must be before registration end date")
	}
	if req.RegistrationEndDate.After(*req.EventDate) {
		return invalid("Registration end date must be on or before event date")
	}

	e := &model.Event{
		Name:                  strings.TrimSpace(req.Name),
		Description:           deref(req.Description),
		EventType:             strings.TrimSpace(req.EventType),
		Status:                model.EventUpcoming,
		EventDate:             req.EventDate.UTC(),
		RegistrationStartDate: req.RegistrationStartDate.UTC(),
		RegistrationEndDate:   req.RegistrationEndDate.UTC(),
		Location:              deref(req.Location),
		Address:               deref(req.Address),
		City:                  deref(req.City),
		State:                 deref(req.State),
		Country:               deref(req.Country),
		PostalCode:            deref(req.PostalCode),
		FeaturedImage:         deref(req.FeaturedImage),
		BannerImage:           deref(req.BannerImage),
		BasePrice:             *req.BasePrice,
		Currency:              "USD",
	}
	if req.Status != nil && *req.Status != "" {
		e.Status = *req.Status
	}
	if req.Currency != nil && *req.Currency != "" {
		e.Currency = strings.ToUpper(*req.Currency)
	}
	if req.ResultsEntryDeadline != nil {
		t := req.ResultsEntryDeadline.UTC()
		e.ResultsEntryDeadline = &t
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Events.Create(ctx, e); err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, eventResp{Event: e}, "Event created successfully")
}

func (h *EventHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id", "Event ID")
	if err != nil {
		return err
	}
	var req updateEventReq
	if err := bind(c, &req); err != nil {
		return err
	}

	m := setters{}
	setStr(m, "name", req.Name)
	setStr(m, "description", req.Description)
	setStr(m, "event_type", req.EventType)
	setStr(m, "status", req.Status)
	setTime(m, "event_date", req.EventDate)
	setTime(m, "registration_start_date", req.RegistrationStartDate)
	setTime(m, "registration_end_date", req.RegistrationEndDate)
	setTime(m, "results_entry_deadline", req.ResultsEntryDeadline)
	setStr(m, "location", req.Location)
	setStr(m, "address", req.Address)
	setStr(m, "city", req.City)
	setStr(m, "state", req.State)
	setStr(m, "country", req.Country)
	setStr(m, "postal_code", req.PostalCode)
	setStr(m, "featured_image", req.FeaturedImage)
	setStr(m, "banner_image", req.BannerImage)
	setFloat(m, "base_price", req.BasePrice)
	if req.Currency != nil {
		m["currency"] = strings.ToUpper(*req.Currency)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	e, err := h.Events.Update(ctx, id, m)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, eventResp{Event: e}, "Event updated successfully")
}

// Delete removes the event together with its categories and participants.
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id", "Event ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	err = h.Events.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, nil, "Event deleted successfully")
}

// ---- categories ----

func (h *EventHandler) ListCategories(c echo.Context) error {
	id, err := pathID(c, "id", "Event ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "Event not found")
		}
		return err
	}
	cats, err := h.Events.ListCategories(ctx, id)
	if err != nil {
		return err
	}
	return response.OK(c, categoriesResp{Categories: cats})
}

func checkAges(minAge, maxAge *int) error {
	if minAge != nil && maxAge != nil && *minAge > *maxAge {
		return invalid("Minimum age must be less than or equal to maximum age")
	}
	return nil
}

func (h *EventHandler) CreateCategory(c echo.Context) error {
	eventID, err := pathID(c, "id", "Event ID")
	if err != nil {
		return err
	}
	var req categoryReq
	if err := bind(c, &req); err != nil {
		return err
	}
	var missing []string
	if req.Name == nil {
		missing = append(missing, "name is required")
	}
	if req.Distance == nil {
		missing = append(missing, "distance is required")
	}
	if len(missing) > 0 {
		return invalid(missing...)
	}
	if err := checkAges(req.MinAge, req.MaxAge); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "Event not found")
		}
		return err
	}
	cat := &model.EventCategory{
		EventID:     eventID,
		Name:        strings.TrimSpace(*req.Name),
		Description: deref(req.Description),
		Distance:    *req.Distance,
		Gender:      deref(req.Gender),
		MinAge:      req.MinAge,
		MaxAge:      req.MaxAge,
	}
	if err := h.Events.CreateCategory(ctx, cat); err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, categoryResp{Category: cat}, "Category created successfully")
}

func (h *EventHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c, "id", "Category ID")
	if err != nil {
		return err
	}
	var req categoryReq
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	cur, err := h.Events.GetCategory(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return err
	}
	minAge, maxAge := cur.MinAge, cur.MaxAge
	if req.MinAge != nil {
		minAge = req.MinAge
	}
	if req.MaxAge != nil {
		maxAge = req.MaxAge
	}
	if err := checkAges(minAge, maxAge); err != nil {
		return err
	}

	m := setters{}
	setStr(m, "name", req.Name)
	setStr(m, "description", req.Description)
	setFloat(m, "distance", req.Distance)
	setStr(m, "gender", req.Gender)
	setInt(m, "min_age", req.MinAge)
	setInt(m, "max_age", req.MaxAge)

	cat, err := h.Events.UpdateCategory(ctx, id, m)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, categoryResp{Category: cat}, "Category updated successfully")
}

func (h *EventHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "id", "Category ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	err = h.Events.DeleteCategory(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, nil, "Category deleted successfully")
}
