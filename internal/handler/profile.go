package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
)

const msgAtLeastOne = "At least one field must be provided"

// UserHandler serves the caller's own profile and addresses, plus role
// administration.
type UserHandler struct {
	Users     *repository.UserRepo
	Profiles  *repository.ProfileRepo
	Addresses *repository.AddressRepo
}

type profileReq struct {
	Name        *string    `json:"name" validate:"omitempty,max=100"`
	FirstName   *string    `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string    `json:"lastName" validate:"omitempty,max=100"`
	DisplayName *string    `json:"displayName" validate:"omitempty,max=100"`
	Gender      *string    `json:"gender" validate:"omitempty,max=100"`
	Birthdate   *time.Time `json:"birthdate"`
	Location    *string    `json:"location" validate:"omitempty,max=100"`
	Website     *string    `json:"website" validate:"omitempty,url,max=500"`
	Bio         *string    `json:"bio" validate:"omitempty,max=500"`
	Picture     *string    `json:"picture" validate:"omitempty,url,max=500"`
	CoverPhoto  *string    `json:"coverPhoto" validate:"omitempty,url,max=500"`
	PhoneNumber *string    `json:"phoneNumber" validate:"omitempty,max=20"`
	Language    *string    `json:"language" validate:"omitempty,max=100"`
	Timezone    *string    `json:"timezone" validate:"omitempty,max=100"`
	Twitter     *string    `json:"twitter" validate:"omitempty,max=100"`
	Instagram   *string    `json:"instagram" validate:"omitempty,max=100"`
	Linkedin    *string    `json:"linkedin" validate:"omitempty,max=100"`
}

type pictureReq struct {
	Picture string `json:"picture" validate:"required,url,max=500"`
}

type coverReq struct {
	CoverPhoto string `json:"coverPhoto" validate:"required,url,max=500"`
}

type profileResp struct {
	Profile *model.Profile `json:"profile"`
}

// GetProfile returns the caller's profile, creating an empty one on first
// access.
func (h *UserHandler) GetProfile(c echo.Context, id *middleware.Identity) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Profiles.GetOrCreate(ctx, id.User.ID)
	if err != nil {
		return err
	}
	return response.OK(c, profileResp{Profile: p})
}

func (h *UserHandler) UpdateProfile(c echo.Context, id *middleware.Identity) error {
	var req profileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	m := setters{}
	setStr(m, "name", req.Name)
	setStr(m, "first_name", req.FirstName)
	setStr(m, "last_name", req.LastName)
	setStr(m, "display_name", req.DisplayName)
	setStr(m, "gender", req.Gender)
	setTime(m, "birthdate", req.Birthdate)
	setStr(m, "location", req.Location)
	setStr(m, "website", req.Website)
	setStr(m, "bio", req.Bio)
	setStr(m, "picture", req.Picture)
	setStr(m, "cover_photo", req.CoverPhoto)
	setStr(m, "phone_number", req.PhoneNumber)
	setStr(m, "language", req.Language)
	setStr(m, "timezone", req.Timezone)
	setStr(m, "twitter", req.Twitter)
	setStr(m, "instagram", req.Instagram)
	setStr(m, "linkedin", req.Linkedin)
	if len(m) == 0 {
		return invalid(msgAtLeastOne)
	}
	return h.saveProfile(c, id, m, "Profile updated successfully")
}

func (h *UserHandler) UpdatePicture(c echo.Context, id *middleware.Identity) error {
	var req pictureReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.saveProfile(c, id, map[string]any{"picture": req.Picture}, "Profile picture updated successfully")
}

func (h *UserHandler) UpdateCover(c echo.Context, id *middleware.Identity) error {
	var req coverReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.saveProfile(c, id, map[string]any{"cover_photo": req.CoverPhoto}, "Cover photo updated successfully")
}

func (h *UserHandler) saveProfile(c echo.Context, id *middleware.Identity, values map[string]any, msg string) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Profiles.Update(ctx, id.User.ID, values)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, profileResp{Profile: p}, msg)
}
