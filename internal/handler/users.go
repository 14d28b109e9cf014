package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
)

type roleReq struct {
	Role string `json:"role" validate:"required,oneof=user admin superadmin"`
}

// UpdateRole changes another user's role. Callers cannot change their own
// role so the last superadmin cannot lock themselves out.
func (h *UserHandler) UpdateRole(c echo.Context, id *middleware.Identity) error {
	uid, err := pathID(c, "id", "User ID")
	if err != nil {
		return err
	}
	var req roleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if uid == id.User.ID {
		return response.Fail(c, http.StatusBadRequest, "You cannot change your own role")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.UpdateRole(ctx, uid, req.Role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, "User not found")
		}
		return err
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, userResp{User: u}, "Role updated successfully")
}
