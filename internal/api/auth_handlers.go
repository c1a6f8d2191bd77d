package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"birthday-inbox/internal/auth"
	"birthday-inbox/internal/database"
	"birthday-inbox/internal/models"
)

// registerPage handles GET /register
func (h *Handlers) registerPage(c echo.Context) error {
	return h.render(c, "register", pageData{Title: "Register"})
}

// registerSubmit handles POST /register
func (h *Handlers) registerSubmit(c echo.Context) error {
	const (
		form     = "/register"
		required = "Username and password are required!"
	)

	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return redirectWithFlash(c, form, required)
	}
	if err := c.Validate(&req); err != nil {
		return redirectWithFlash(c, form, required)
	}

	_, err := h.auth.Register(c.Request().Context(), req.Username, req.Password, c.RealIP())
	switch {
	case err == nil:
		return redirectWithFlash(c, "/login", "Registered successfully! You can log in now.")
	case errors.Is(err, auth.ErrMissingCredentials):
		return redirectWithFlash(c, form, required)
	case errors.Is(err, database.ErrUserAlreadyExists):
		return redirectWithFlash(c, form, "Username already taken!")
	default:
		h.logger.Error("registration error", zap.String("username", req.Username), zap.Error(err))
		return redirectWithFlash(c, form, "Unexpected error, please try again.")
	}
}

// loginPage handles GET /login
func (h *Handlers) loginPage(c echo.Context) error {
	return h.render(c, "login", pageData{Title: "Login"})
}

// loginSubmit handles POST /login
func (h *Handlers) loginSubmit(c echo.Context) error {
	const (
		form     = "/login"
		required = "Username and password are required!"
	)

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return redirectWithFlash(c, form, required)
	}
	if err := c.Validate(&req); err != nil {
		return redirectWithFlash(c, form, required)
	}

	resp, err := h.auth.Login(c.Request().Context(), req, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			return redirectWithFlash(c, form, required)
		case errors.Is(err, auth.ErrInvalidCredentials):
			return redirectWithFlash(c, form, "Invalid username or password")
		default:
			h.logger.Error("login error", zap.String("username", req.Username), zap.Error(err))
			return redirectWithFlash(c, form, "Login failed, please try again.")
		}
	}

	h.limiter.RecordSuccess(c.RealIP())
	auth.SetSessionCookie(c, resp.Token, resp.ExpiresAt, h.cookieSecure)

	return c.Redirect(http.StatusSeeOther, "/birthday")
}

// loginBlocked answers a login attempt rejected by the rate limiter
func (h *Handlers) loginBlocked(c echo.Context, retryAfter time.Duration) error {
	h.logger.Warn("login rate limited", zap.String("ip", c.RealIP()), zap.Duration("retry_after", retryAfter))
	return redirectWithFlash(c, "/login", "Too many login attempts, try again later.")
}

// forgotPage handles GET /forgot
func (h *Handlers) forgotPage(c echo.Context) error {
	return h.render(c, "forgot", pageData{Title: "Reset password"})
}

// forgotSubmit handles POST /forgot
func (h *Handlers) forgotSubmit(c echo.Context) error {
	const (
		form     = "/forgot"
		required = "Username and new password are required!"
	)

	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return redirectWithFlash(c, form, required)
	}
	if err := c.Validate(&req); err != nil {
		return redirectWithFlash(c, form, required)
	}

	_, err := h.auth.ResetPassword(c.Request().Context(), req.Username, req.NewPassword, c.RealIP())
	switch {
	case err == nil:
		return redirectWithFlash(c, "/login", "Password updated! Please log in.")
	case errors.Is(err, auth.ErrMissingCredentials):
		return redirectWithFlash(c, form, required)
	case errors.Is(err, database.ErrUserNotFound):
		return redirectWithFlash(c, form, "Username not found.")
	default:
		h.logger.Error("password reset error", zap.String("username", req.Username), zap.Error(err))
		return redirectWithFlash(c, form, "Unexpected error, please try again.")
	}
}

// logout handles GET /logout
func (h *Handlers) logout(c echo.Context) error {
	username := "unknown"
	if user := auth.GetUserFromContext(c); user != nil {
		username = user.Username
	}

	if token := auth.GetTokenFromRequest(c); token != "" {
		err := h.auth.Logout(c.Request().Context(), token, username, c.RealIP())
		if err != nil && !errors.Is(err, database.ErrSessionNotFound) {
			h.logger.Error("logout error", zap.Error(err))
		}
	}

	auth.ClearSessionCookie(c)
	return redirectWithFlash(c, "/login", "You have been logged out.")
}
