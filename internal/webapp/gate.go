package webapp

import (
	"net/http"
	"strings"

	"github.com/phillip-england/hrpulse/internal/session"
)

// Decide is the routing rule applied on every request: where path should
// redirect to given the session's authenticated flag, if anywhere.
//
//	/login                      authenticated -> /dashboard
//	/dashboard, /employees[/*]  anonymous     -> /login
//	/logout                     anonymous     -> /login
//	/ and unknown paths         -> /dashboard or /login
//
// Static assets and the health and metrics probes are never redirected.
func Decide(path string, authenticated bool) (string, bool) {
	switch {
	case path == "/login":
		if authenticated {
			return "/dashboard", true
		}
		return "", false
	case isPublicPath(path):
		return "", false
	case isProtectedPath(path):
		if !authenticated {
			return "/login", true
		}
		return "", false
	default:
		if authenticated {
			return "/dashboard", true
		}
		return "/login", true
	}
}

func isPublicPath(path string) bool {
	return strings.HasPrefix(path, "/assets/") || path == "/healthz" || path == "/metrics"
}

func isProtectedPath(path string) bool {
	return path == "/dashboard" ||
		path == "/employees" ||
		strings.HasPrefix(path, "/employees/") ||
		path == "/logout"
}

func (s *server) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target, ok := Decide(r.URL.Path, session.Authenticated(s.sessions, r)); ok {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// fallback serves paths the mux does not know, which for a signed in user
// includes unknown pages under /employees/.
func (s *server) fallback(w http.ResponseWriter, r *http.Request) {
	target, _ := Decide("/", session.Authenticated(s.sessions, r))
	http.Redirect(w, r, target, http.StatusFound)
}
