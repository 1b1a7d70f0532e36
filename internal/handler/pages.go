package handler

import (
	"html/template"
	"log/slog"
	"math/rand"
	"net/http"
	"path/filepath"

	"github.com/sakif/goal-tracker/internal/auth"
	"github.com/sakif/goal-tracker/internal/model"
	"github.com/sakif/goal-tracker/internal/service"
)

// quotes rotate on the goal list page.
var quotes = []string{
	"Believe in yourself 💪",
	"Dream it. Do it 🌟",
	"Start where you are. Use what you have. Do what you can 💼",
	"Progress over perfection 🚀",
}

// PageHandler serves the server-rendered pages: entry (login), signup,
// dashboard, and the filtered goal list. Each page shares base.html and
// defines its own "content" block; pages are parsed separately because they
// all define the same block name.
//
// The pages render the scaffolding and greeting; the goal data itself is
// loaded by web/static/js/app.js through the JSON API, so list updates don't
// need a full page reload.
type PageHandler struct {
	pages   map[string]*template.Template
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewPageHandler parses the page templates under templateDir.
func NewPageHandler(templateDir string, authSvc *service.AuthService, logger *slog.Logger) (*PageHandler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"login", "signup", "dashboard", "goals"} {
		tmpl, err := template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, name+".html"),
		)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}

	return &PageHandler{
		pages:   pages,
		authSvc: authSvc,
		logger:  logger,
	}, nil
}

// pageData is the payload every template receives.
type pageData struct {
	Title      string // browser tab title
	NavTitle   string // navbar heading, empty on entry/signup pages
	User       *model.User
	Quote      string
	AuthDenied bool
}

// HandleLogin serves the entry page.
//
// HTTP: GET / (behind RedirectAuthenticated)
func (h *PageHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login", pageData{
		Title:      "Login — Goal Tracker",
		AuthDenied: r.URL.Query().Get("auth") == "denied",
	})
}

// HandleSignup serves the signup page.
//
// HTTP: GET /signup (behind RedirectAuthenticated)
func (h *PageHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	h.render(w, "signup", pageData{Title: "Signup — Goal Tracker"})
}

// HandleDashboard serves the dashboard with the personalised greeting.
//
// HTTP: GET /dashboard (behind RequirePage)
func (h *PageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	// A failed profile lookup still renders the page — the greeting falls
	// back and the list script reports store trouble separately.
	user, err := h.authSvc.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Warn("dashboard: profile lookup failed",
			slog.String("userID", sess.UserID),
			slog.String("error", err.Error()),
		)
		user = &model.User{Name: "Boss", Email: sess.Email}
	}

	h.render(w, "dashboard", pageData{
		Title:    "Dashboard — Goal Tracker",
		NavTitle: "Conquer Your Day 💪 – Let's Set Some Powerful Goals!",
		User:     user,
	})
}

// HandleGoals serves the filtered goal list page.
//
// HTTP: GET /mygoals (behind RequirePage)
func (h *PageHandler) HandleGoals(w http.ResponseWriter, r *http.Request) {
	h.render(w, "goals", pageData{
		Title:    "My Goals — Goal Tracker",
		NavTitle: "Review Your Wins 📈",
		Quote:    quotes[rand.Intn(len(quotes))],
	})
}

// HandleNotFound is the catch-all: unknown paths redirect by session state —
// authenticated visitors to the dashboard, everyone else to the entry page.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.pages[name].ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
