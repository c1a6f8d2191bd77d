package api

import (
	"database/sql"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"birthday-inbox/internal/auth"
	"birthday-inbox/internal/database"
	"birthday-inbox/internal/logging"
	"birthday-inbox/internal/messaging"
	"birthday-inbox/internal/metrics"
)

// Deps holds everything the HTTP layer needs
type Deps struct {
	DB        *sql.DB
	Auth      *auth.Service
	Messaging *messaging.Service
	Limiter   *auth.RateLimiter
	Logger    *zap.Logger
	// Inspector enables GET /db when non-nil. Never set it in production.
	Inspector    *database.Inspector
	CookieSecure bool
	// TrustedProxy reads the client IP from X-Forwarded-For. Otherwise the
	// TCP peer address is used and forwarding headers are ignored.
	TrustedProxy bool
}

// Handlers implements the HTTP endpoints
type Handlers struct {
	db           *sql.DB
	auth         *auth.Service
	messaging    *messaging.Service
	limiter      *auth.RateLimiter
	inspector    *database.Inspector
	logger       *zap.Logger
	cookieSecure bool
}

// NewServer builds the echo instance with middleware and all routes
func NewServer(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newRenderer()
	e.Validator = newValidator()
	if deps.TrustedProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.RequestLogger(deps.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   deps.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/healthz"
		},
		ErrorHandler: csrfErrorHandler,
	}))

	limiter := deps.Limiter
	if limiter == nil {
		limiter = auth.DefaultRateLimiter()
	}

	h := &Handlers{
		db:           deps.DB,
		auth:         deps.Auth,
		messaging:    deps.Messaging,
		limiter:      limiter,
		inspector:    deps.Inspector,
		logger:       deps.Logger,
		cookieSecure: deps.CookieSecure,
	}
	RegisterRoutes(e, h)

	return e
}

// RegisterRoutes sets up all routes
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	e.GET("/", h.home)

	// Public pages
	e.GET("/register", h.registerPage)
	e.POST("/register", h.registerSubmit)
	e.GET("/login", h.loginPage)
	e.POST("/login", h.loginSubmit, h.limiter.Middleware(h.loginBlocked))
	e.GET("/forgot", h.forgotPage)
	e.POST("/forgot", h.forgotSubmit)
	e.GET("/logout", h.logout, auth.OptionalAuth(h.auth))

	// Session-gated pages
	requireAuth := auth.RequireAuth(h.auth)
	e.GET("/birthday", h.birthdayPage, requireAuth)
	e.POST("/birthday", h.birthdaySubmit, requireAuth)
	e.GET("/inbox", h.inbox, requireAuth)

	// Debug dump of every table, only when explicitly enabled
	if h.inspector != nil {
		e.GET("/db", h.dbInspector)
	}

	// Operational endpoints
	e.GET("/healthz", h.healthCheck)
	e.GET("/metrics", metrics.Handler())
}
