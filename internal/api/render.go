package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"birthday-inbox/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// csrfField is the hidden form field carrying the CSRF token
const csrfField = "_csrf"

var pages = []string{"register", "login", "forgot", "birthday", "inbox"}

// renderer renders the embedded page templates inside the shared layout
type renderer struct {
	templates map[string]*template.Template
}

func newRenderer() *renderer {
	funcs := template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04")
		},
	}

	r := &renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		r.templates[page] = template.Must(template.New(page).Funcs(funcs).ParseFS(
			templateFS, "templates/layout.html", "templates/"+page+".html"))
	}
	return r
}

// Render implements echo.Renderer
func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// pageData is the view model shared by every page
type pageData struct {
	Title     string
	CSRFToken string
	CSRFField string
	Flashes   []string
	Username  string
	Messages  []*models.Message
}

// render writes a page, filling in the CSRF token and pending notices
func (h *Handlers) render(c echo.Context, page string, data pageData) error {
	if token, ok := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string); ok {
		data.CSRFToken = token
	}
	data.CSRFField = csrfField
	data.Flashes = popFlash(c)
	return c.Render(http.StatusOK, page, data)
}

// csrfErrorHandler sends a rejected form back where it came from
func csrfErrorHandler(err error, c echo.Context) error {
	return redirectWithFlash(c, c.Request().URL.Path, "Your form expired, please try again.")
}
