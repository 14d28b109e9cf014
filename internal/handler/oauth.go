package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/iliyamo/event-registration/internal/metrics"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
	"github.com/iliyamo/event-registration/internal/service"
	"github.com/iliyamo/event-registration/internal/utils"
)

const (
	oauthStateTTL    = 10 * time.Minute
	oauthExchangeTTL = 60 * time.Second
)

type exchangeReq struct {
	Code string `json:"code" validate:"required"`
}

// pendingLogin is what a one-time exchange code stands for.
type pendingLogin struct {
	Token  string `json:"token"`
	UserID uint64 `json:"userId"`
}

// GoogleStart redirects the browser to Google's consent page.
func (h *AuthHandler) GoogleStart(c echo.Context) error {
	if h.Google == nil {
		return response.Fail(c, http.StatusServiceUnavailable, "Google login is not configured")
	}
	state, err := utils.RandomToken(16)
	if err != nil {
		return err
	}
	if err := h.States.Put(c.Request().Context(), "state:"+state, "1", oauthStateTTL); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

func (h *AuthHandler) oauthFailed(c echo.Context, reason string, err error) error {
	h.Log.Warn("google login failed", "reason", reason, "error", err)
	metrics.AuthLoginsTotal.WithLabelValues("google", "fail").Inc()
	return c.Redirect(http.StatusFound, h.Cfg.FrontendURL+"/login?error=oauth_failed")
}

// GoogleCallback completes the authorization-code flow, signs the user in
// and sends the browser to the web client with a one-time code. The session
// token itself never appears in a URL.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if h.Google == nil {
		return response.Fail(c, http.StatusServiceUnavailable, "Google login is not configured")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if e := c.QueryParam("error"); e != "" {
		return h.oauthFailed(c, "denied", errors.New(e))
	}
	state := c.QueryParam("state")
	if state == "" {
		return h.oauthFailed(c, "missing state", nil)
	}
	if _, ok, err := h.States.Take(ctx, "state:"+state); err != nil || !ok {
		return h.oauthFailed(c, "unknown state", err)
	}
	code := c.QueryParam("code")
	if code == "" {
		return h.oauthFailed(c, "missing code", nil)
	}

	profile, tok, err := h.Google.Exchange(ctx, code)
	if err != nil {
		return h.oauthFailed(c, "exchange", err)
	}
	u, err := h.signInWithGoogle(ctx, profile, tok)
	if err != nil {
		return h.oauthFailed(c, "sign in", err)
	}
	session, err := h.Sessions.Issue(ctx, u)
	if err != nil {
		return h.oauthFailed(c, "issue token", err)
	}

	oneTime, err := utils.RandomToken(32)
	if err != nil {
		return h.oauthFailed(c, "code", err)
	}
	payload, err := json.Marshal(pendingLogin{Token: session, UserID: u.ID})
	if err != nil {
		return h.oauthFailed(c, "store code", err)
	}
	if err := h.States.Put(ctx, "code:"+oneTime, string(payload), oauthExchangeTTL); err != nil {
		return h.oauthFailed(c, "store code", err)
	}
	metrics.AuthLoginsTotal.WithLabelValues("google", "ok").Inc()
	return c.Redirect(http.StatusFound, h.Cfg.FrontendURL+"/auth/callback?code="+url.QueryEscape(oneTime))
}

// GoogleExchange trades the one-time code from the callback redirect for the
// session token. Each code works once and expires after a minute.
func (h *AuthHandler) GoogleExchange(c echo.Context) error {
	var req exchangeReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	raw, ok, err := h.States.Take(ctx, "code:"+strings.TrimSpace(req.Code))
	if err != nil {
		return err
	}
	if !ok {
		return response.Fail(c, http.StatusBadRequest, "Invalid or expired code")
	}
	var p pendingLogin
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return err
	}
	u, err := h.Users.GetByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return response.Fail(c, http.StatusUnauthorized, "User not found")
	}
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, sessionResp{Token: p.Token, User: u}, "Login successful")
}

// signInWithGoogle finds the account by Google id, then by e-mail, linking
// the Google id when the account has none, or creates a new verified account
// with an unusable random password. The Google grant is stored as the
// user's oauth token and empty profile fields are filled from Google.
func (h *AuthHandler) signInWithGoogle(ctx context.Context, gp *service.GoogleProfile, tok *oauth2.Token) (*model.User, error) {
	now := h.now()
	email := normalizeEmail(gp.Email)

	u, err := h.Users.GetByGoogleIDOrEmail(ctx, gp.ID, email)
	switch {
	case err == nil:
		if u.GoogleID == nil || *u.GoogleID == "" {
			if err := h.Users.LinkGoogle(ctx, u, gp.ID, now); err != nil {
				return nil, err
			}
		} else if err := h.Users.TouchLastLogin(ctx, u.ID, now); err != nil {
			return nil, err
		} else {
			u.LastLogin = &now
		}
	case errors.Is(err, repository.ErrNotFound):
		u, err = h.createGoogleUser(ctx, gp, email, now)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if tok != nil {
		grant := &model.Token{
			UserID:       u.ID,
			Kind:         model.TokenKindOAuth,
			Provider:     model.ProviderGoogle,
			Token:        tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			TokenType:    tok.Type(),
		}
		if scope, ok := tok.Extra("scope").(string); ok {
			grant.Scope = scope
		}
		if !tok.Expiry.IsZero() {
			exp := tok.Expiry.UTC()
			grant.ExpiresAt = &exp
		}
		if err := h.Tokens.Upsert(ctx, grant); err != nil {
			return nil, err
		}
	}

	profile, err := h.Profiles.FillEmpty(ctx, u.ID, googleProfile(gp))
	if err != nil {
		return nil, err
	}
	u.Profile = profile
	return u, nil
}

func (h *AuthHandler) createGoogleUser(ctx context.Context, gp *service.GoogleProfile, email string, now time.Time) (*model.User, error) {
	hash, err := utils.HashPassword(uuid.NewString(), h.bcryptCost())
	if err != nil {
		return nil, err
	}
	googleID := gp.ID
	p := googleProfile(gp)
	u := &model.User{
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: true,
		GoogleID:      &googleID,
		Provider:      model.ProviderGoogle,
		Role:          model.RoleUser,
		LastLogin:     &now,
		Profile:       &p,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// a concurrent callback created it first
			return h.Users.GetByGoogleIDOrEmail(ctx, gp.ID, email)
		}
		return nil, err
	}
	metrics.AuthRegistrationsTotal.WithLabelValues("google").Inc()
	return u, nil
}

func googleProfile(gp *service.GoogleProfile) model.Profile {
	return model.Profile{
		Name:        gp.DisplayName,
		FirstName:   gp.FirstName,
		LastName:    gp.LastName,
		DisplayName: gp.DisplayName,
		Picture:     gp.Picture,
		Language:    gp.Locale,
	}
}
