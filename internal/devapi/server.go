// Package devapi is a reference HR backend for local runs and tests. It serves
// the REST surface the web client talks to, over a SQLite file.
package devapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/config"
	"github.com/phillip-england/hrpulse/internal/metrics"
	"github.com/phillip-england/hrpulse/internal/middleware"
	"github.com/phillip-england/hrpulse/internal/security"
)

const defaultTokenTTL = 12 * time.Hour

type Config struct {
	Addr          string
	DBPath        string
	AdminUsername string
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration
	SeedPath      string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

func ConfigFrom(c *config.Config) Config {
	return Config{
		Addr:          c.APIAddr,
		DBPath:        c.DBPath,
		AdminUsername: strings.TrimSpace(c.AdminUsername),
		AdminPassword: c.AdminPassword,
		JWTSecret:     c.JWTSecret,
		TokenTTL:      defaultTokenTTL,
		SeedPath:      c.SeedPath,
		ReadTimeout:   c.ReadTimeout,
		WriteTimeout:  c.WriteTimeout,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type server struct {
	store  *sqliteStore
	tokens *tokenIssuer
	logger *slog.Logger
}

func newServer(ctx context.Context, cfg Config, logger *slog.Logger) (*server, error) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, errors.New("admin_username and admin_password are required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "devapi")

	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := security.NewSecret(32)
		if err != nil {
			return nil, err
		}
		secret = generated
		logger.Warn("jwt_secret is not set; issued tokens will not survive a restart")
	}

	store, err := openStore(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	if err := store.ensureAdminUser(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure admin user: %w", err)
	}
	seeded, err := store.seedIfEmpty(ctx, cfg.SeedPath)
	if err != nil {
		store.Close()
		return nil, err
	}
	if seeded > 0 {
		logger.Info("seeded employees", "count", seeded, "path", cfg.SeedPath)
	}

	return &server{
		store:  store,
		tokens: newTokenIssuer(secret, cfg.TokenTTL),
		logger: logger,
	}, nil
}

func (s *server) Close() error {
	return s.store.Close()
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	bearer := func(h http.HandlerFunc) http.Handler { return s.requireBearer(h) }

	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.Handle("GET /api/employees", bearer(s.listEmployees))
	mux.Handle("POST /api/employees", bearer(s.createEmployee))
	mux.Handle("GET /api/employees/stats", bearer(s.stats))
	mux.Handle("GET /api/employees/top-risk", bearer(s.topRisk))
	mux.Handle("GET /api/employees/department-risks", bearer(s.departmentRisks))
	mux.Handle("GET /api/employees/{id}", bearer(s.getEmployee))
	mux.Handle("PUT /api/employees/{id}", bearer(s.updateEmployee))
	mux.Handle("DELETE /api/employees/{id}", bearer(s.deleteEmployee))
	mux.Handle("GET /export", bearer(s.export(false)))
	mux.Handle("GET /export-with-recommendations", bearer(s.export(true)))
	mux.Handle("GET /metrics", metrics.Handler())

	return middleware.Chain(
		mux,
		middleware.Recover(s.logger),
		middleware.RequestID,
		middleware.RequestLog(s.logger),
		middleware.Metrics,
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'"}),
	)
}

// NewHandler opens the backend without serving it. The returned func closes
// the store.
func NewHandler(ctx context.Context, cfg Config, logger *slog.Logger) (http.Handler, func() error, error) {
	s, err := newServer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return s.routes(), s.Close, nil
}

func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", cfg.Addr, "db", cfg.DBPath)
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

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := s.store.passwordHash(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, errNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}
	if !security.VerifyPassword(req.Password, hash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Generate(req.Username)
	if err != nil {
		s.logger.Error("sign token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *server) listEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.listEmployees(r.Context())
	if err != nil {
		s.storeError(w, "list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) getEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.getEmployee(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, "get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) createEmployee(w http.ResponseWriter, r *http.Request) {
	e, ok := decodeEmployee(w, r)
	if !ok {
		return
	}
	created, err := s.store.createEmployee(r.Context(), e)
	if err != nil {
		s.storeError(w, "create employee", err)
		return
	}
	s.logger.Info("employee created", "id", created.ID, "by", subjectFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	e, ok := decodeEmployee(w, r)
	if !ok {
		return
	}
	e.ID = r.PathValue("id")
	updated, err := s.store.updateEmployee(r.Context(), e)
	if err != nil {
		s.storeError(w, "update employee", err)
		return
	}
	s.logger.Info("employee updated", "id", updated.ID, "by", subjectFromContext(r.Context()))
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.deleteEmployee(r.Context(), id); err != nil {
		s.storeError(w, "delete employee", err)
		return
	}
	s.logger.Info("employee deleted", "id", id, "by", subjectFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.listEmployees(r.Context())
	if err != nil {
		s.storeError(w, "stats", err)
		return
	}
	stats := computeStats(list)

	prev, err := s.store.recordSnapshot(r.Context(), riskSnapshot{
		Month:       monthKey(s.store.now()),
		HighCount:   stats.HighRiskCount,
		AverageRisk: stats.AverageRisk,
	})
	if err != nil {
		s.logger.Warn("record risk snapshot failed", "error", err)
	}
	trends := &apiclient.RiskTrends{}
	if prev != nil {
		trends.High = trendPercent(float64(prev.HighCount), float64(stats.HighRiskCount))
		trends.Average = trendPercent(prev.AverageRisk, stats.AverageRisk)
	}
	stats.RiskTrends = trends
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) topRisk(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.listEmployees(r.Context())
	if err != nil {
		s.storeError(w, "top risk", err)
		return
	}
	writeJSON(w, http.StatusOK, topRisk(list))
}

func (s *server) departmentRisks(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.listEmployees(r.Context())
	if err != nil {
		s.storeError(w, "department risks", err)
		return
	}
	writeJSON(w, http.StatusOK, departmentRisks(list))
}

func (s *server) export(withRecommendations bool) http.HandlerFunc {
	base := "employees"
	if withRecommendations {
		base = "employee_recommendations"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if !apiclient.ValidFormat(format) {
			writeError(w, http.StatusBadRequest, "format must be pdf or excel")
			return
		}
		list, err := s.store.listEmployees(r.Context())
		if err != nil {
			s.storeError(w, "export", err)
			return
		}

		var buf bytes.Buffer
		contentType := pdfContentType
		if format == apiclient.FormatExcel {
			contentType = excelContentType
			err = writeExcel(&buf, list, withRecommendations)
		} else {
			err = writePDF(&buf, list, withRecommendations)
		}
		if err != nil {
			s.logger.Error("export failed", "format", format, "error", err)
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}

		filename := apiclient.ExportFilename(base, format)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	s.logger.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

func decodeEmployee(w http.ResponseWriter, r *http.Request) (apiclient.Employee, bool) {
	var e apiclient.Employee
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return e, false
	}
	e = normalizeEmployee(e)
	if e.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return e, false
	}
	if e.TurnoverProbability < 0 || e.TurnoverProbability > 1 {
		writeError(w, http.StatusBadRequest, "turnover_probability must be between 0 and 1")
		return e, false
	}
	return e, true
}

// normalizeEmployee trims text fields, fills Name from the name parts and
// grades an unlabelled employee by turnover probability.
func normalizeEmployee(e apiclient.Employee) apiclient.Employee {
	e.Name = strings.TrimSpace(e.Name)
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Department = strings.TrimSpace(e.Department)
	e.Position = strings.TrimSpace(e.Position)
	e.Email = strings.TrimSpace(e.Email)
	e.RiskLevel = strings.TrimSpace(e.RiskLevel)
	if e.Name == "" {
		e.Name = strings.TrimSpace(e.FirstName + " " + e.LastName)
	}
	if e.RiskLevel == "" {
		e.RiskLevel = levelFromProbability(e.TurnoverProbability).BackendLabel()
	}
	if e.Projects == nil {
		e.Projects = []string{}
	}
	if e.Skills == nil {
		e.Skills = []string{}
	}
	return e
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
