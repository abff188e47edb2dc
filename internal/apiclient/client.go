// Package apiclient talks to the HR analytics REST backend.
//
// There is one method per backend endpoint. Any non-2xx answer is reported as
// ErrRequestFailed; the status and body are not interpreted further, so an
// expired token looks the same as any other server failure.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phillip-england/hrpulse/internal/metrics"
)

var (
	ErrRequestFailed     = errors.New("request failed")
	ErrLoginFailed       = errors.New("login failed")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for baseURL. A nil httpClient gets one with no timeout.
func New(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     slog.Default().With("component", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that sends the bearer token on every call.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var payload loginResponse
	err := c.doJSON(ctx, "login", http.MethodPost, "/api/auth/login", loginRequest{Username: username, Password: password}, &payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", fmt.Errorf("%w: missing access token", ErrLoginFailed)
	}
	return payload.AccessToken, nil
}

func (c *Client) ListEmployees(ctx context.Context) ([]Employee, error) {
	var payload []Employee
	if err := c.doJSON(ctx, "list_employees", http.MethodGet, "/api/employees", nil, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []Employee{}
	}
	return payload, nil
}

func (c *Client) CreateEmployee(ctx context.Context, employee Employee) (*Employee, error) {
	employee.ID = ""
	var created Employee
	if err := c.doJSON(ctx, "create_employee", http.MethodPost, "/api/employees", employee, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, employee Employee) (*Employee, error) {
	if strings.TrimSpace(employee.ID) == "" {
		return nil, fmt.Errorf("update_employee: %w: missing id", ErrRequestFailed)
	}
	var updated Employee
	path := "/api/employees/" + url.PathEscape(employee.ID)
	if err := c.doJSON(ctx, "update_employee", http.MethodPut, path, employee, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete_employee", http.MethodDelete, "/api/employees/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.doJSON(ctx, "stats", http.MethodGet, "/api/employees/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) TopRisk(ctx context.Context) ([]Employee, error) {
	var payload []Employee
	if err := c.doJSON(ctx, "top_risk", http.MethodGet, "/api/employees/top-risk", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) DepartmentRisks(ctx context.Context) ([]DepartmentRisk, error) {
	var payload []DepartmentRisk
	if err := c.doJSON(ctx, "department_risks", http.MethodGet, "/api/employees/department-risks", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Export downloads the roster in the given format.
func (c *Client) Export(ctx context.Context, format string) (*Download, error) {
	return c.download(ctx, "export", "/export", "employees", format)
}

// ExportWithRecommendations downloads the roster with retention
// recommendations attached.
func (c *Client) ExportWithRecommendations(ctx context.Context, format string) (*Download, error) {
	return c.download(ctx, "export_recommendations", "/export-with-recommendations", "employee_recommendations", format)
}

// ValidFormat reports whether format is an export format the backend accepts.
func ValidFormat(format string) bool {
	return format == FormatPDF || format == FormatExcel
}

// ExportFilename is the name the browser saves an export under.
func ExportFilename(base, format string) string {
	if format == FormatExcel {
		return base + ".xlsx"
	}
	return base + "." + format
}

func (c *Client) download(ctx context.Context, op, path, baseName, format string) (*Download, error) {
	if !ValidFormat(format) {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedFormat, format)
	}
	resp, err := c.send(ctx, op, http.MethodGet, path+"?format="+url.QueryEscape(format), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read body: %w", op, ErrRequestFailed, err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType(format)
	}
	return &Download{
		Filename:    ExportFilename(baseName, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func defaultContentType(format string) string {
	if format == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	resp, err := c.send(ctx, op, method, path, reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: decode body: %w", op, ErrRequestFailed, err)
	}
	return nil
}

// send performs the request and returns the response only when it is 2xx.
// The caller owns the body.
func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader) (*http.Response, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRequestFailed, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(op, "error", time.Since(start))
		c.logger.Warn("backend call failed", "op", op, "error", err)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		metrics.ObserveUpstream(op, "error", time.Since(start))
		c.logger.Warn("backend call rejected", "op", op, "status", resp.StatusCode)
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrRequestFailed, resp.StatusCode)
	}
	metrics.ObserveUpstream(op, "ok", time.Since(start))
	return resp, nil
}
