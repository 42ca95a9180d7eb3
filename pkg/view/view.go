package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	apperrors "petcare/pkg/errors"
	"petcare/pkg/logger"
	"petcare/pkg/session"
)

//go:embed templates
var templateFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsGlob = "templates/partials/*.html"
	ErrorPage    = "error"
)

// Data is the page specific payload a handler hands to Render.
type Data map[string]any

// Page is what every template executes against.
type Page struct {
	Title           string
	CurrentUser     *session.User
	IsAuthenticated bool
	Success         []string
	Error           []string
	Info            []string
	Path            string
	Data            Data
}

type Renderer struct {
	pages map[string]*template.Template
	log   *logger.Logger
}

// New parses the layout and partials once per page found under templates/.
// Page names are paths without the extension, e.g. "owners/index".
func New(currencySymbol string, log *logger.Logger) (*Renderer, error) {
	funcs := Funcs(currencySymbol)

	names, err := pageNames()
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, layoutFile, partialsGlob, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, log: log}, nil
}

func pageNames() ([]string, error) {
	var names []string
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		if path == layoutFile || strings.HasPrefix(path, "templates/partials/") {
			return nil
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html"))
		return nil
	})
	return names, err
}

func (v *Renderer) Has(page string) bool {
	_, ok := v.pages[page]
	return ok
}

// Render executes page into a buffer first so a template error still yields a clean 500.
// Pending flash messages are consumed.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data Data) {
	tmpl, ok := v.pages[page]
	if !ok {
		v.log.Error("Unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = Data{}
	}

	user := session.CurrentUser(r)
	flashes := session.Flashes(r)
	p := Page{
		Title:           title,
		CurrentUser:     user,
		IsAuthenticated: user != nil,
		Success:         flashes[session.FlashSuccess],
		Error:           flashes[session.FlashError],
		Info:            flashes[session.FlashInfo],
		Path:            r.URL.Path,
		Data:            data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		v.log.WithRequestID(r.Context()).Error("Failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		v.log.Error("failed to write page", "page", page, "error", err)
	}
}

func (v *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	title := "Error"
	if status == http.StatusNotFound {
		title = "Page Not Found"
	}
	v.Render(w, r, status, ErrorPage, title, Data{
		"Status":  status,
		"Message": message,
	})
}

// AppError renders err on the error page with its status. Internal causes are not shown.
func (v *Renderer) AppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsAppError(err)
	status := appErr.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	v.Error(w, r, status, apperrors.UserMessage(appErr))
}
