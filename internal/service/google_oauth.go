package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/iliyamo/event-registration/internal/config"
)

// GoogleProfile is the subset of the Google account used to sign a user in.
type GoogleProfile struct {
	ID          string
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
	Picture     string
	Locale      string
}

// GoogleProvider runs the authorization-code flow against Google.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleProfile, *oauth2.Token, error)
}

// ErrNoEmail is returned when the Google account exposes no e-mail address.
var ErrNoEmail = errors.New("no email found in Google profile")

// GoogleOAuth is the GoogleProvider backed by golang.org/x/oauth2 and the
// Google userinfo endpoint.
type GoogleOAuth struct {
	conf *oauth2.Config
}

// NewGoogleOAuth returns nil when no client credentials are configured.
func NewGoogleOAuth(cfg config.GoogleConfig, baseURL string) *GoogleOAuth {
	if !cfg.Enabled() {
		return nil
	}
	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = baseURL + "/auth/google/callback"
	}
	return &GoogleOAuth{conf: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes: []string{
			"openid",
			googleoauth2.UserinfoEmailScope,
			googleoauth2.UserinfoProfileScope,
		},
	}}
}

func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for a token and loads the profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*GoogleProfile, *oauth2.Token, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	svc, err := googleoauth2.NewService(ctx, option.WithTokenSource(g.conf.TokenSource(ctx, tok)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, nil, ErrNoEmail
	}
	return &GoogleProfile{
		ID:          info.Id,
		Email:       info.Email,
		DisplayName: info.Name,
		FirstName:   info.GivenName,
		LastName:    info.FamilyName,
		Picture:     info.Picture,
		Locale:      info.Locale,
	}, tok, nil
}

var _ GoogleProvider = (*GoogleOAuth)(nil)
