package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
)

const msgAddressNotFound = "Address not found"

type addressReq struct {
	Type       *string `json:"type" validate:"omitempty,max=50"`
	Street     *string `json:"street" validate:"omitempty,max=255"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	State      *string `json:"state" validate:"omitempty,max=100"`
	PostalCode *string `json:"postalCode" validate:"omitempty,max=20"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
	IsPrimary  *bool   `json:"isPrimary"`
	Label      *string `json:"label" validate:"omitempty,max=100"`
}

func (r addressReq) values() setters {
	m := setters{}
	setStr(m, "type", r.Type)
	setStr(m, "street", r.Street)
	setStr(m, "city", r.City)
	setStr(m, "state", r.State)
	setStr(m, "postal_code", r.PostalCode)
	setStr(m, "country", r.Country)
	setBool(m, "is_primary", r.IsPrimary)
	setStr(m, "label", r.Label)
	return m
}

type addressResp struct {
	Address *model.Address `json:"address"`
}

type addressListResp struct {
	Addresses  []model.Address       `json:"addresses"`
	Pagination repository.Pagination `json:"pagination"`
}

func (h *UserHandler) ListAddresses(c echo.Context, id *middleware.Identity) error {
	page, err := pageQuery(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, total, err := h.Addresses.List(ctx, id.User.ID, page)
	if err != nil {
		return err
	}
	return response.OK(c, addressListResp{Addresses: items, Pagination: repository.NewPagination(total, page)})
}

func (h *UserHandler) GetAddress(c echo.Context, id *middleware.Identity) error {
	aid, err := pathID(c, "id", "Address ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Addresses.Get(ctx, id.User.ID, aid)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, msgAddressNotFound)
	}
	if err != nil {
		return err
	}
	return response.OK(c, addressResp{Address: a})
}

// CreateAddress stores a new address. A primary address replaces the
// caller's previous primary.
func (h *UserHandler) CreateAddress(c echo.Context, id *middleware.Identity) error {
	var req addressReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.values()) == 0 {
		return invalid(msgAtLeastOne)
	}
	a := &model.Address{
		UserID:     id.User.ID,
		Type:       deref(req.Type),
		Street:     deref(req.Street),
		City:       deref(req.City),
		State:      deref(req.State),
		PostalCode: deref(req.PostalCode),
		Country:    deref(req.Country),
		IsPrimary:  req.IsPrimary != nil && *req.IsPrimary,
		Label:      deref(req.Label),
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Addresses.Create(ctx, a); err != nil {
		return err
	}
	return response.Success(c, http.StatusCreated, addressResp{Address: a}, "Address created successfully")
}

func (h *UserHandler) UpdateAddress(c echo.Context, id *middleware.Identity) error {
	aid, err := pathID(c, "id", "Address ID")
	if err != nil {
		return err
	}
	var req addressReq
	if err := bind(c, &req); err != nil {
		return err
	}
	m := req.values()
	if len(m) == 0 {
		return invalid(msgAtLeastOne)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Addresses.Update(ctx, id.User.ID, aid, m)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, msgAddressNotFound)
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, addressResp{Address: a}, "Address updated successfully")
}

func (h *UserHandler) DeleteAddress(c echo.Context, id *middleware.Identity) error {
	aid, err := pathID(c, "id", "Address ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	err = h.Addresses.Delete(ctx, id.User.ID, aid)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, msgAddressNotFound)
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, nil, "Address deleted successfully")
}

// SetPrimaryAddress makes the address the caller's only primary one.
func (h *UserHandler) SetPrimaryAddress(c echo.Context, id *middleware.Identity) error {
	aid, err := pathID(c, "id", "Address ID")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, changed, err := h.Addresses.SetPrimary(ctx, id.User.ID, aid)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, msgAddressNotFound)
	}
	if err != nil {
		return err
	}
	if !changed {
		return response.Success(c, http.StatusOK, addressResp{Address: a}, "Address is already set as primary")
	}
	a.IsPrimary = true
	return response.Success(c, http.StatusOK, addressResp{Address: a}, "Address set as primary successfully")
}
