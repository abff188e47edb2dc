// Package webapp is the browser-facing HR client. It renders every page on
// the server and talks to the HR REST backend on the user's behalf with the
// bearer token held in the session cookie.
package webapp

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/config"
	"github.com/phillip-england/hrpulse/internal/metrics"
	"github.com/phillip-england/hrpulse/internal/middleware"
	"github.com/phillip-england/hrpulse/internal/roster"
	"github.com/phillip-england/hrpulse/internal/session"
)

type Config struct {
	Addr          string
	APIBaseURL    string
	APITimeout    time.Duration
	CookieSecure  bool
	SessionMaxAge time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

func ConfigFrom(c *config.Config) Config {
	return Config{
		Addr:          c.ClientAddr,
		APIBaseURL:    c.APIBaseURL,
		APITimeout:    c.APITimeout,
		CookieSecure:  c.CookieSecure,
		SessionMaxAge: c.SessionMaxAge,
		ReadTimeout:   c.ReadTimeout,
		WriteTimeout:  c.WriteTimeout,
	}
}

//go:embed templates/*.html assets/app.css
var templatesFS embed.FS

type server struct {
	api      *apiclient.Client
	sessions session.Store
	roster   *roster.Book
	logger   *slog.Logger

	loginTmpl        *template.Template
	dashboardTmpl    *template.Template
	employeesTmpl    *template.Template
	employeeFormTmpl *template.Template
	deleteTmpl       *template.Template
	importTmpl       *template.Template
}

func newServer(cfg Config, logger *slog.Logger) *server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "webapp")

	api := apiclient.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, apiclient.WithLogger(logger))
	s := &server{
		api:      api,
		sessions: session.NewCookieStore(cfg.CookieSecure, cfg.SessionMaxAge),
		logger:   logger,

		loginTmpl:        parsePage("login.html"),
		dashboardTmpl:    parsePage("dashboard.html"),
		employeesTmpl:    parsePage("employees.html"),
		employeeFormTmpl: parsePage("employee_form.html"),
		deleteTmpl:       parsePage("employee_delete.html"),
		importTmpl:       parsePage("import.html"),
	}
	s.roster = roster.NewBook(func(token string) roster.API { return s.api.WithToken(token) }, logger)
	return s
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
}

// Handler builds the full web client handler.
func Handler(cfg Config, logger *slog.Logger) http.Handler {
	return newServer(cfg, logger).routes()
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", s.loginPage)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("POST /logout", s.logout)
	mux.HandleFunc("GET /dashboard", s.dashboardPage)
	mux.HandleFunc("GET /employees", s.employeesPage)
	mux.HandleFunc("GET /employees/new", s.newEmployeePage)
	mux.HandleFunc("POST /employees/new", s.createEmployeeProxy)
	mux.HandleFunc("GET /employees/{id}/edit", s.editEmployeePage)
	mux.HandleFunc("POST /employees/{id}/edit", s.updateEmployeeProxy)
	mux.HandleFunc("GET /employees/{id}/delete", s.deleteEmployeePage)
	mux.HandleFunc("POST /employees/{id}/delete", s.deleteEmployeeProxy)
	mux.HandleFunc("GET /employees/import", s.importPage)
	mux.HandleFunc("POST /employees/import", s.importEmployeesProxy)
	mux.HandleFunc("GET /employees/export", s.exportProxy)
	mux.HandleFunc("GET /assets/app.css", s.appCSSFile)
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("/", s.fallback)

	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"script-src 'self' 'unsafe-inline'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	return middleware.Chain(
		mux,
		middleware.Recover(s.logger),
		middleware.RequestID,
		middleware.RequestLog(s.logger),
		middleware.Metrics,
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}),
		s.gate,
	)
}

func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           Handler(cfg, logger),
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("client listening", "addr", cfg.Addr, "api", cfg.APIBaseURL)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *server) appCSSFile(w http.ResponseWriter, r *http.Request) {
	css, err := templatesFS.ReadFile("assets/app.css")
	if err != nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(css)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// token returns the session's bearer token. Handlers behind the gate can rely
// on it being present.
func (s *server) token(r *http.Request) string {
	token, _ := s.sessions.Token(r)
	return token
}
