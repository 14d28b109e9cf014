package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/handler"
	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/service"
)

// Deps is everything the HTTP layer needs. Optional fields fall back to
// in-process implementations when left nil.
type Deps struct {
	Cfg       config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	DB        *gorm.DB
	Redis     *redis.Client // nil disables the response cache
	Log       *slog.Logger
	Publisher service.Publisher
	Google    service.GoogleProvider // nil disables Google login
	States    service.StateStore
	Limiter   middleware.Limiter
	Now       func() time.Time
}

// handlers groups the constructed handlers and shared middleware that the
// route files register.
type handlers struct {
	auth         *handler.AuthHandler
	events       *handler.EventHandler
	participants *handler.ParticipantHandler
	users        *handler.UserHandler
	cache        *middleware.ResponseCache

	authn      echo.MiddlewareFunc
	anyRole    []echo.MiddlewareFunc
	adminOnly  []echo.MiddlewareFunc
	loginLimit echo.MiddlewareFunc
}

// New builds the echo instance with the global middleware and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Metrics())
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("1M"))
	if len(d.Cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: d.Cfg.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	h := build(d)

	e.GET("/healthz", handler.Health(d.DB))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	registerAuth(e, h)
	registerEvents(e, h)
	registerParticipants(e, h)
	registerUsers(e, h)
	return e
}

func build(d Deps) *handlers {
	users := repository.NewUserRepo(d.DB)
	tokens := repository.NewTokenRepo(d.DB)
	profiles := repository.NewProfileRepo(d.DB)
	events := repository.NewEventRepo(d.DB)
	participants := repository.NewParticipantRepo(d.DB)
	addresses := repository.NewAddressRepo(d.DB)

	sessions := service.NewTokenService(d.Cfg.JWTSecret, d.Cfg.TokenTTL, tokens)

	states := d.States
	if states == nil {
		states = service.NewStateStore(d.Redis, "oauth")
	}
	limiter := d.Limiter
	if limiter == nil {
		if d.Redis != nil {
			limiter = middleware.RedisLimiter{RDB: d.Redis}
		} else {
			limiter = middleware.NewMemoryLimiter()
		}
	}

	authn := middleware.Authenticate(sessions, users)
	return &handlers{
		auth: &handler.AuthHandler{
			Cfg:       d.Cfg,
			Users:     users,
			Profiles:  profiles,
			Tokens:    tokens,
			Sessions:  sessions,
			Publisher: d.Publisher,
			Google:    d.Google,
			States:    states,
			Log:       d.Log,
			Now:       d.Now,
		},
		events: &handler.EventHandler{Events: events},
		participants: &handler.ParticipantHandler{
			Participants: participants,
			Events:       events,
			Users:        users,
			Publisher:    d.Publisher,
			Log:          d.Log,
			Now:          d.Now,
		},
		users: &handler.UserHandler{Users: users, Profiles: profiles, Addresses: addresses},
		cache: &middleware.ResponseCache{Cfg: d.Cache, RDB: d.Redis, Log: d.Log},

		authn:      authn,
		anyRole:    []echo.MiddlewareFunc{authn, middleware.RequireRole(model.RoleUser, model.RoleAdmin, model.RoleSuperAdmin)},
		adminOnly:  []echo.MiddlewareFunc{authn, middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin)},
		loginLimit: middleware.RateLimit(d.RateLimit, limiter, d.Log),
	}
}

// with appends extra middleware to a shared chain without aliasing it.
func with(base []echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(base)+len(extra))
	return append(append(out, base...), extra...)
}
