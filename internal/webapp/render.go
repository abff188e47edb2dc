package webapp

import (
	"bytes"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/phillip-england/hrpulse/internal/dashboard"
)

type pageData struct {
	Title         string
	Nav           string
	Authenticated bool
	Error         string
	Message       string
	Year          int

	Username string

	Dashboard *dashboard.View

	Table    *tableView
	Form     *employeeForm
	Employee *employeeSummary
	ReturnTo string

	ImportColumns []string
}

var printer = message.NewPrinter(language.English)

var templateFuncs = template.FuncMap{
	"money": formatMoney,
	"join":  func(items []string) string { return strings.Join(items, ", ") },
	"add":   func(a, b float64) float64 { return a + b },
}

// formatMoney renders a salary as "$120,000" or "$120,000.50".
func formatMoney(v float64) string {
	if v == math.Trunc(v) {
		return printer.Sprintf("$%d", int64(v))
	}
	return printer.Sprintf("$%.2f", v)
}

func (s *server) newPage(r *http.Request, title, nav string) pageData {
	q := r.URL.Query()
	return pageData{
		Title:         title,
		Nav:           nav,
		Authenticated: s.token(r) != "",
		Error:         q.Get("error"),
		Message:       q.Get("message"),
		Year:          time.Now().Year(),
	}
}

func renderHTMLTemplate(w http.ResponseWriter, tmpl *template.Template, data pageData) error {
	return renderHTMLTemplateStatus(w, tmpl, http.StatusOK, data)
}

func renderHTMLTemplateStatus(w http.ResponseWriter, tmpl *template.Template, status int, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func (s *server) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data pageData) {
	if err := renderHTMLTemplateStatus(w, tmpl, status, data); err != nil {
		http.Error(w, "template render failed", http.StatusInternalServerError)
		s.logger.Error("template render failed", "template", tmpl.Name(), "error", err)
	}
}

// redirectWith sends the browser to path with one flash parameter (error or
// message) added to whatever query path already carries.
func redirectWith(w http.ResponseWriter, r *http.Request, path, key, value string) {
	u, err := url.Parse(path)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Del("error")
	q.Del("message")
	if value != "" {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// safeReturn keeps return targets on the employees page so a form cannot be
// used to bounce the browser elsewhere.
func safeReturn(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || u.Path != "/employees" {
		return "/employees"
	}
	q := u.Query()
	q.Del("error")
	q.Del("message")
	u.RawQuery = q.Encode()
	return u.String()
}
