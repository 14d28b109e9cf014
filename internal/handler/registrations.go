package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/metrics"
	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
)

type registerForEventReq struct {
	CategoryID          uint64  `json:"categoryId" validate:"required"`
	ShirtSize           *string `json:"shirtSize" validate:"omitempty,oneof=XS S M L XL XXL"`
	EstimatedFinishTime *string `json:"estimatedFinishTime" validate:"omitempty,hms"`
	Notes               *string `json:"notes" validate:"omitempty,max=500"`
}

// updateRegistrationReq is the subset of a registration its owner may edit.
type updateRegistrationReq struct {
	ShirtSize           *string `json:"shirtSize" validate:"omitempty,oneof=XS S M L XL XXL"`
	EstimatedFinishTime *string `json:"estimatedFinishTime" validate:"omitempty,hms"`
	Notes               *string `json:"notes" validate:"omitempty,max=500"`
}

type registrationResp struct {
	Registration *model.Participant `json:"registration"`
}

type registrationListResp struct {
	Registrations []model.Participant   `json:"registrations"`
	Pagination    repository.Pagination `json:"pagination"`
}

// Register signs the caller up for a category of the event while its
// registration window is open. The registration starts pending and unpaid
// with the event's base price due.
func (h *ParticipantHandler) Register(c echo.Context, id *middleware.Identity) error {
	eventID, err := pathID(c, "id", "Event ID")
	if err != nil {
		return err
	}
	var req registerForEventReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Event not found")
	}
	if err != nil {
		return err
	}
	cat, err := h.Events.GetCategoryOfEvent(ctx, eventID, req.CategoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Category not found or doesn't belong to this event")
	}
	if err != nil {
		return err
	}

	now := h.now()
	if now.Before(ev.RegistrationStartDate) {
		metrics.ParticipantRegistrationsTotal.WithLabelValues("self", "closed").Inc()
		return response.Fail(c, http.StatusBadRequest, "Registration is not open yet")
	}
	if now.After(ev.RegistrationEndDate) {
		metrics.ParticipantRegistrationsTotal.WithLabelValues("self", "closed").Inc()
		return response.Fail(c, http.StatusBadRequest, "Registration has closed")
	}

	const dupMsg = "You are already registered for this category"
	exists, err := h.Participants.Exists(ctx, id.User.ID, eventID, cat.ID)
	if err != nil {
		return err
	}
	if exists {
		metrics.ParticipantRegistrationsTotal.WithLabelValues("self", "conflict").Inc()
		return response.Fail(c, http.StatusConflict, dupMsg)
	}

	p := &model.Participant{
		UserID:              id.User.ID,
		EventID:             eventID,
		CategoryID:          cat.ID,
		Status:              model.ParticipantPending,
		PaymentStatus:       model.PaymentUnpaid,
		AmountPaid:          ev.BasePrice,
		ShirtSize:           deref(req.ShirtSize),
		EstimatedFinishTime: deref(req.EstimatedFinishTime),
		Notes:               deref(req.Notes),
		RegistrationDate:    now,
	}
	if err := h.Participants.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.ParticipantRegistrationsTotal.WithLabelValues("self", "conflict").Inc()
			return response.Fail(c, http.StatusConflict, dupMsg)
		}
		return err
	}
	metrics.ParticipantRegistrationsTotal.WithLabelValues("self", "ok").Inc()

	h.publish(ctx, queue.ParticipantRegisteredQueue, queue.ParticipantRegisteredEvent{
		ParticipantID: p.ID,
		UserID:        id.User.ID,
		Email:         id.User.Email,
		EventID:       ev.ID,
		EventName:     ev.Name,
		CategoryID:    cat.ID,
		CategoryName:  cat.Name,
		AmountDue:     ev.BasePrice,
		Currency:      ev.Currency,
		Status:        p.Status,
		RegisteredAt:  now.Format(time.RFC3339),
	})

	full, err := h.Participants.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, registrationResp{Registration: full}, "Registration submitted successfully")
}

// Mine lists the caller's registrations, newest first.
func (h *ParticipantHandler) Mine(c echo.Context, id *middleware.Identity) error {
	page, err := pageQuery(c)
	if err != nil {
		return err
	}
	f := repository.ParticipantFilter{UserID: id.User.ID}
	if f.EventID, err = uintQuery(c, "eventId"); err != nil {
		return err
	}
	if f.Status, err = enumQuery(c, "status", participantStatuses...); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, total, err := h.Participants.List(ctx, f, page)
	if err != nil {
		return err
	}
	return response.OK(c, registrationListResp{Registrations: items, Pagination: repository.NewPagination(total, page)})
}

// UpdateMine edits the caller's registration until the registration window
// closes. Cancelled registrations are frozen.
func (h *ParticipantHandler) UpdateMine(c echo.Context, id *middleware.Identity) error {
	pid, err := pathID(c, "id", "Participant ID")
	if err != nil {
		return err
	}
	var req updateRegistrationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cur, err := h.Participants.GetForUser(ctx, pid, id.User.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Registration not found")
	}
	if err != nil {
		return err
	}
	if cur.Event != nil && h.now().After(cur.Event.RegistrationEndDate) {
		return response.Fail(c, http.StatusBadRequest, "Registration period has ended")
	}
	if cur.Status == model.ParticipantCancelled {
		return response.Fail(c, http.StatusBadRequest, "Cannot update a cancelled registration")
	}

	m := setters{}
	setStr(m, "shirt_size", req.ShirtSize)
	setStr(m, "estimated_finish_time", req.EstimatedFinishTime)
	setStr(m, "notes", req.Notes)
	p, err := h.Participants.Update(ctx, pid, m)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, registrationResp{Registration: p}, "Registration updated successfully")
}

// CancelMine moves the caller's registration to cancelled. It is allowed
// up to the event date; the row is kept.
func (h *ParticipantHandler) CancelMine(c echo.Context, id *middleware.Identity) error {
	pid, err := pathID(c, "id", "Participant ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cur, err := h.Participants.GetForUser(ctx, pid, id.User.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Registration not found")
	}
	if err != nil {
		return err
	}
	if cur.Status == model.ParticipantCancelled {
		return response.Fail(c, http.StatusBadRequest, "Registration is already cancelled")
	}
	if cur.Event != nil && h.now().After(cur.Event.EventDate) {
		return response.Fail(c, http.StatusBadRequest, "Cannot cancel registration after event date")
	}

	p, err := h.Participants.Update(ctx, pid, map[string]any{"status": model.ParticipantCancelled})
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, registrationResp{Registration: p}, "Registration cancelled successfully")
}
