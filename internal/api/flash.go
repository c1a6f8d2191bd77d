package api

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"
)

const flashCookieName = "flash"

// setFlash stores a one-shot notice shown on the next rendered page
func setFlash(c echo.Context, message string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash returns and clears the pending notice, if any
func popFlash(c echo.Context) []string {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	return []string{string(raw)}
}

// redirectWithFlash sets a notice and sends the client to path
func redirectWithFlash(c echo.Context, path, message string) error {
	setFlash(c, message)
	return c.Redirect(http.StatusSeeOther, path)
}
