package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/metrics"
	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
	"github.com/iliyamo/event-registration/internal/service"
	"github.com/iliyamo/event-registration/internal/utils"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = time.Hour

const msgBadCredentials = "Email or password is incorrect"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     *repository.UserRepo
	Profiles  *repository.ProfileRepo
	Tokens    *repository.TokenRepo
	Sessions  *service.TokenService
	Publisher service.Publisher
	Google    service.GoogleProvider // nil when Google login is not configured
	States    service.StateStore
	Log       *slog.Logger
	Now       func() time.Time
}

func (h *AuthHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *AuthHandler) bcryptCost() int {
	if h.Cfg.BcryptCost > 0 {
		return h.Cfg.BcryptCost
	}
	return 10
}

// publish hands an event to the broker. The request has already succeeded,
// so a failure is only logged.
func (h *AuthHandler) publish(ctx context.Context, queueName string, ev any) {
	if h.Publisher == nil {
		return
	}
	if err := h.Publisher.Publish(context.WithoutCancel(ctx), queueName, ev); err != nil {
		h.Log.Warn("publish failed", "queue", queueName, "error", err)
	}
}

// ----- DTOs -----

type registerReq struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=100"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotReq struct {
	Email string `json:"email" validate:"required,email"`
}

type resetReq struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type userResp struct {
	User *model.User `json:"user"`
}

type sessionResp struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register creates an unverified local account with an empty profile and
// queues the verification e-mail.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Email = normalizeEmail(req.Email)

	ctx, cancel := reqCtx(c)
	defer cancel()

	exists, err := h.Users.EmailExists(ctx, req.Email)
	if err != nil {
		return err
	}
	if exists {
		metrics.AuthRegistrationsTotal.WithLabelValues("conflict").Inc()
		return response.Fail(c, http.StatusConflict, "Email already in use")
	}

	hash, err := utils.HashPassword(req.Password, h.bcryptCost())
	if err != nil {
		return err
	}
	token := uuid.NewString()
	u := &model.User{
		Email:                  req.Email,
		PasswordHash:           hash,
		EmailVerificationToken: &token,
		Provider:               model.ProviderLocal,
		Role:                   model.RoleUser,
		Profile:                &model.Profile{Name: deref(req.Name)},
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			metrics.AuthRegistrationsTotal.WithLabelValues("conflict").Inc()
			return response.Fail(c, http.StatusConflict, "Email already in use")
		}
		return err
	}
	metrics.AuthRegistrationsTotal.WithLabelValues("ok").Inc()

	h.publish(ctx, queue.UserRegisteredQueue, queue.UserRegisteredEvent{
		UserID:            u.ID,
		Email:             u.Email,
		Name:              u.Profile.Name,
		VerificationToken: token,
		RegisteredAt:      u.CreatedAt.UTC().Format(time.RFC3339),
	})

	return response.Success(c, http.StatusCreated, userResp{User: u},
		"Registration successful. Please check your email to verify your account.")
}

// Verify consumes the single-use e-mail verification token.
func (h *AuthHandler) Verify(c echo.Context) error {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		return invalid("Verification token is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByVerificationToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusNotFound, "Verification token not found or already used")
	}
	if err != nil {
		return err
	}
	if err := h.Users.MarkVerified(ctx, u.ID); err != nil {
		return err
	}
	u.EmailVerified = true
	u.EmailVerificationToken = nil

	return response.Success(c, http.StatusOK, echo.Map{"verified": true, "user": u},
		"Email verification successful. You can now login.")
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same bcrypt work as a real comparison so an
// unknown e-mail is not distinguishable by response time.
func burnPasswordCheck(cost int, password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword(uuid.NewString(), cost)
	})
	utils.VerifyPassword(dummyHash, password)
}

// Login checks the credentials and issues a session token. The previous
// session of the user stops being accepted.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Email = normalizeEmail(req.Email)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		burnPasswordCheck(h.bcryptCost(), req.Password)
		metrics.AuthLoginsTotal.WithLabelValues("password", "fail").Inc()
		return response.Fail(c, http.StatusUnauthorized, msgBadCredentials)
	}
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		metrics.AuthLoginsTotal.WithLabelValues("password", "fail").Inc()
		return response.Fail(c, http.StatusUnauthorized, msgBadCredentials)
	}

	token, err := h.Sessions.Issue(ctx, u)
	if err != nil {
		return err
	}
	now := h.now()
	if err := h.Users.TouchLastLogin(ctx, u.ID, now); err != nil {
		h.Log.Warn("failed to record last login", "user_id", u.ID, "error", err)
	} else {
		u.LastLogin = &now
	}
	metrics.AuthLoginsTotal.WithLabelValues("password", "ok").Inc()

	return response.Success(c, http.StatusOK, sessionResp{Token: token, User: u}, "Login successful")
}

// Logout revokes every session of the caller.
func (h *AuthHandler) Logout(c echo.Context, id *middleware.Identity) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Sessions.DeleteAllAccessTokens(ctx, id.User.ID); err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

const msgResetSent = "If an account with that email exists, a password reset link has been sent"

// ForgotPassword stores a one-hour reset token and queues the reset e-mail.
// The response is the same whether or not the address is registered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return response.Success(c, http.StatusOK, nil, msgResetSent)
	}
	if err != nil {
		return err
	}

	raw, err := utils.RandomToken(32)
	if err != nil {
		return err
	}
	exp := h.now().Add(ResetTokenTTL)
	if err := h.Users.SetResetToken(ctx, u.ID, utils.HashToken(raw), exp); err != nil {
		return err
	}
	h.publish(ctx, queue.PasswordResetQueue, queue.PasswordResetRequestedEvent{
		UserID:     u.ID,
		Email:      u.Email,
		ResetToken: raw,
		ExpiresAt:  exp.Format(time.RFC3339),
	})
	return response.Success(c, http.StatusOK, nil, msgResetSent)
}

// ResetPassword replaces the password using a reset token and signs the
// user out everywhere.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByResetToken(ctx, utils.HashToken(strings.TrimSpace(req.Token)))
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusBadRequest, "Invalid or expired reset token")
	}
	if err != nil {
		return err
	}
	if u.PasswordResetExpires == nil || !h.now().Before(*u.PasswordResetExpires) {
		return response.Fail(c, http.StatusBadRequest, "Invalid or expired reset token")
	}

	hash, err := utils.HashPassword(req.Password, h.bcryptCost())
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := h.Sessions.DeleteAllAccessTokens(ctx, u.ID); err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, nil, "Password has been reset successfully")
}
