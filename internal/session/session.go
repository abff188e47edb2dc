// Package session keeps the backend bearer token for a browser.
//
// The token lives in a single cookie. Whether a user is authenticated is
// decided only by the presence of that cookie; the token is never inspected
// here, so an expired token still counts as a session until the backend
// rejects it.
package session

import (
	"net/http"
	"strings"
	"time"
)

const (
	DefaultCookieName = "hrpulse_token"
	DefaultMaxAge     = 30 * 24 * time.Hour
)

// Store is the single way the web client reads and writes the session token.
type Store interface {
	Token(r *http.Request) (string, bool)
	SetToken(w http.ResponseWriter, token string)
	Clear(w http.ResponseWriter)
}

// CookieStore keeps the token in an HttpOnly cookie that outlives the
// browser session for MaxAge. A zero MaxAge uses DefaultMaxAge.
type CookieStore struct {
	Name   string
	Secure bool
	MaxAge time.Duration
	now    func() time.Time
}

func NewCookieStore(secure bool, maxAge time.Duration) *CookieStore {
	return &CookieStore{Name: DefaultCookieName, Secure: secure, MaxAge: maxAge, now: time.Now}
}

func (s *CookieStore) Token(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cookieName())
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(c.Value)
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *CookieStore) SetToken(w http.ResponseWriter, token string) {
	maxAge := s.maxAge()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
		Expires:  s.clock()().Add(maxAge).UTC(),
	})
}

func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func (s *CookieStore) maxAge() time.Duration {
	if s.MaxAge <= 0 {
		return DefaultMaxAge
	}
	return s.MaxAge
}

func (s *CookieStore) clock() func() time.Time {
	if s.now == nil {
		return time.Now
	}
	return s.now
}

func (s *CookieStore) cookieName() string {
	if s.Name == "" {
		return DefaultCookieName
	}
	return s.Name
}

// Authenticated reports whether the request carries a token.
func Authenticated(store Store, r *http.Request) bool {
	_, ok := store.Token(r)
	return ok
}
