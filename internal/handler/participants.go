package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/metrics"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
	"github.com/iliyamo/event-registration/internal/service"
)

var (
	participantStatuses = []string{model.ParticipantPending, model.ParticipantConfirmed, model.ParticipantCancelled}
	paymentStatuses     = []string{model.PaymentUnpaid, model.PaymentPaid, model.PaymentRefunded}
)

// ParticipantHandler serves admin participant management and the
// self-service registration endpoints.
type ParticipantHandler struct {
	Participants *repository.ParticipantRepo
	Events       *repository.EventRepo
	Users        *repository.UserRepo
	Publisher    service.Publisher
	Log          *slog.Logger
	Now          func() time.Time
}

func (h *ParticipantHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

type createParticipantReq struct {
	UserID              uint64   `json:"userId" validate:"required"`
	EventID             uint64   `json:"eventId" validate:"required"`
	CategoryID          uint64   `json:"categoryId" validate:"required"`
	Status              *string  `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	PaymentStatus       *string  `json:"paymentStatus" validate:"omitempty,oneof=unpaid paid refunded"`
	AmountPaid          *float64 `json:"amountPaid" validate:"omitnil,gte=0"`
	BibNumber           *string  `json:"bibNumber" validate:"omitempty,max=20"`
	ShirtSize           *string  `json:"shirtSize" validate:"omitempty,oneof=XS S M L XL XXL"`
	EstimatedFinishTime *string  `json:"estimatedFinishTime" validate:"omitempty,hms"`
	Notes               *string  `json:"notes" validate:"omitempty,max=500"`
}

type updateParticipantReq struct {
	Status              *string    `json:"status" validate:"omitnil,oneof=pending confirmed cancelled"`
	PaymentStatus       *string    `json:"paymentStatus" validate:"omitnil,oneof=unpaid paid refunded"`
	AmountPaid          *float64   `json:"amountPaid" validate:"omitnil,gte=0"`
	TransactionID       *string    `json:"transactionId" validate:"omitempty,max=100"`
	PaymentDate         *time.Time `json:"paymentDate"`
	BibNumber           *string    `json:"bibNumber" validate:"omitempty,max=20"`
	ShirtSize           *string    `json:"shirtSize" validate:"omitempty,oneof=XS S M L XL XXL"`
	EstimatedFinishTime *string    `json:"estimatedFinishTime" validate:"omitempty,hms"`
	Notes               *string    `json:"notes" validate:"omitempty,max=500"`
}

type participantListResp struct {
	Participants []model.Participant   `json:"participants"`
	Pagination   repository.Pagination `json:"pagination"`
}

type participantResp struct {
	Participant *model.Participant `json:"participant"`
}

func participantFilter(c echo.Context) (repository.ParticipantFilter, error) {
	var (
		f   repository.ParticipantFilter
		err error
	)
	if f.EventID, err = uintQuery(c, "eventId"); err != nil {
		return f, err
	}
	if f.CategoryID, err = uintQuery(c, "categoryId"); err != nil {
		return f, err
	}
	if f.Status, err = enumQuery(c, "status", participantStatuses...); err != nil {
		return f, err
	}
	if f.PaymentStatus, err = enumQuery(c, "paymentStatus", paymentStatuses...); err != nil {
		return f, err
	}
	f.Search = c.QueryParam("search")
	return f, nil
}

func (h *ParticipantHandler) List(c echo.Context) error {
	page, err := pageQuery(c)
	if err != nil {
		return err
	}
	f, err := participantFilter(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, total, err := h.Participants.List(ctx, f, page)
	if err != nil {
		return err
	}
	return response.OK(c, participantListResp{Participants: items, Pagination: repository.NewPagination(total, page)})
}

func (h *ParticipantHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id", "Participant ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Participants.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Participant not found")
	}
	if err != nil {
		return err
	}
	return response.OK(c, participantResp{Participant: p})
}

// Create registers a user on their behalf. Unlike self-service registration
// the registration window is not enforced.
func (h *ParticipantHandler) Create(c echo.Context) error {
	var req createParticipantReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, req.EventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "Event not found")
		}
		return err
	}
	if _, err := h.Events.GetCategoryOfEvent(ctx, req.EventID, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "Category not found or doesn't belong to this event")
		}
		return err
	}
	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "User not found")
		}
		return err
	}
	const dupMsg = "User is already registered for this event category"
	exists, err := h.Participants.Exists(ctx, req.UserID, req.EventID, req.CategoryID)
	if err != nil {
		return err
	}
	if exists {
		metrics.ParticipantRegistrationsTotal.WithLabelValues("admin", "conflict").Inc()
		return response.Fail(c, http.StatusConflict, dupMsg)
	}

	p := &model.Participant{
		UserID:              req.UserID,
		EventID:             req.EventID,
		CategoryID:          req.CategoryID,
		Status:              model.ParticipantPending,
		PaymentStatus:       model.PaymentUnpaid,
		BibNumber:           deref(req.BibNumber),
		ShirtSize:           deref(req.ShirtSize),
		EstimatedFinishTime: deref(req.EstimatedFinishTime),
		Notes:               deref(req.Notes),
		RegistrationDate:    h.now(),
	}
	if req.Status != nil && *req.Status != "" {
		p.Status = *req.Status
	}
	if req.PaymentStatus != nil && *req.PaymentStatus != "" {
		p.PaymentStatus = *req.PaymentStatus
	}
	if req.AmountPaid != nil {
		p.AmountPaid = *req.AmountPaid
	}
	if err := h.Participants.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.ParticipantRegistrationsTotal.WithLabelValues("admin", "conflict").Inc()
			return response.Fail(c, http.StatusConflict, dupMsg)
		}
		return err
	}
	metrics.ParticipantRegistrationsTotal.WithLabelValues("admin", "ok").Inc()

	full, err := h.Participants.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, participantResp{Participant: full}, "Participant registered successfully")
}

func (h *ParticipantHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id", "Participant ID")
	if err != nil {
		return err
	}
	var req updateParticipantReq
	if err := bind(c, &req); err != nil {
		return err
	}
	m := setters{}
	setStr(m, "status", req.Status)
	setStr(m, "payment_status", req.PaymentStatus)
	setFloat(m, "amount_paid", req.AmountPaid)
	setStr(m, "transaction_id", req.TransactionID)
	setTime(m, "payment_date", req.PaymentDate)
	setStr(m, "bib_number", req.BibNumber)
	setStr(m, "shirt_size", req.ShirtSize)
	setStr(m, "estimated_finish_time", req.EstimatedFinishTime)
	setStr(m, "notes", req.Notes)

	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Participants.Update(ctx, id, m)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Participant not found")
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, participantResp{Participant: p}, "Participant updated successfully")
}

func (h *ParticipantHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id", "Participant ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	err = h.Participants.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Participant not found")
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, nil, "Participant deleted successfully")
}

func (h *ParticipantHandler) publish(ctx context.Context, queueName string, ev any) {
	if h.Publisher == nil {
		return
	}
	if err := h.Publisher.Publish(context.WithoutCancel(ctx), queueName, ev); err != nil {
		h.Log.Warn("publish failed", "queue", queueName, "error", err)
	}
}
