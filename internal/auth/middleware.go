package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"birthday-inbox/internal/models"
)

// ContextKeyUser stores the authenticated user in the echo context
const ContextKeyUser = "user"

// SessionCookieName is the cookie carrying the plain session token
const SessionCookieName = "session_token"

// LoginPath is where anonymous clients are sent
const LoginPath = "/login"

// RequireAuth middleware checks for a valid session and redirects to the
// login page otherwise
func RequireAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := GetTokenFromRequest(c)
			if token == "" {
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}

			user, _, err := authSvc.ValidateToken(c.Request().Context(), token)
			if err != nil {
				ClearSessionCookie(c)
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// OptionalAuth middleware attempts to authenticate but doesn't require it
func OptionalAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := GetTokenFromRequest(c); token != "" {
				if user, _, err := authSvc.ValidateToken(c.Request().Context(), token); err == nil {
					c.Set(ContextKeyUser, user)
				}
			}
			return next(c)
		}
	}
}

// GetTokenFromRequest extracts the session token from the request cookie
func GetTokenFromRequest(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie stores the session token in an HttpOnly cookie
func SetSessionCookie(c echo.Context, token string, expiresAt time.Time, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure || c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}
