package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/event-registration/internal/model"
)

// Claims is the payload of a session token.
type Claims struct {
	UserID uint64 `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AccessStore is the persistence behind token revocation.
type AccessStore interface {
	StoreAccess(ctx context.Context, userID uint64, token string, exp time.Time) error
	ActiveAccess(ctx context.Context, userID uint64, token string, now time.Time) (bool, error)
	DeleteAccess(ctx context.Context, userID uint64) error
}

// TokenService issues HS256 session tokens and tracks the one access record
// each user may hold. A token is only honoured while it matches that record.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	store  AccessStore
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, store AccessStore) *TokenService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, store: store, now: func() time.Time { return time.Now().UTC() }}
}

// TTL is the lifetime given to new tokens and their access records.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// CreateToken signs {id, email} with the configured lifetime. A random jti
// makes two tokens issued in the same second distinct.
func (s *TokenService) CreateToken(u *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyToken checks signature and expiry. It returns nil for any malformed,
// expired or foreign token and never an error.
func (s *TokenService) VerifyToken(raw string) *Claims {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid || claims.UserID == 0 {
		return nil
	}
	return claims
}

// SaveToken makes token the user's only access record, expiring after TTL.
// Any token issued earlier stops being accepted.
func (s *TokenService) SaveToken(ctx context.Context, token string, userID uint64) error {
	return s.store.StoreAccess(ctx, userID, token, s.now().Add(s.ttl))
}

// Issue creates and saves a token in one step.
func (s *TokenService) Issue(ctx context.Context, u *model.User) (string, error) {
	token, err := s.CreateToken(u)
	if err != nil {
		return "", err
	}
	if err := s.SaveToken(ctx, token, u.ID); err != nil {
		return "", err
	}
	return token, nil
}

// IsActive reports whether token is the user's current, unexpired record.
func (s *TokenService) IsActive(ctx context.Context, userID uint64, token string) (bool, error) {
	return s.store.ActiveAccess(ctx, userID, token, s.now())
}

// DeleteAllAccessTokens revokes every session of the user.
func (s *TokenService) DeleteAllAccessTokens(ctx context.Context, userID uint64) error {
	return s.store.DeleteAccess(ctx, userID)
}
