package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTokenThenRead(t *testing.T) {
	store := NewCookieStore(false, 0)

	rec := httptest.NewRecorder()
	store.SetToken(rec, "tok-123")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	token, ok := store.Token(req)
	require.True(t, ok)
	assert.Equal(t, "tok-123", token)
	assert.True(t, Authenticated(store, req))
}

func TestMissingOrBlankToken(t *testing.T) {
	store := NewCookieStore(false, 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := store.Token(req)
	assert.False(t, ok)
	assert.False(t, Authenticated(store, req))

	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "  "})
	_, ok = store.Token(req)
	assert.False(t, ok)
}

func TestClearExpiresCookie(t *testing.T) {
	store := &CookieStore{Name: "custom", Secure: true}

	rec := httptest.NewRecorder()
	store.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "custom", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
	assert.True(t, cookies[0].Secure)
}

func TestSetTokenPersistsBeyondBrowserSession(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewCookieStore(false, 48*time.Hour)
	store.now = func() time.Time { return fixed }

	rec := httptest.NewRecorder()
	store.SetToken(rec, "tok")

	raw := rec.Header().Get("Set-Cookie")
	assert.Contains(t, raw, "Max-Age=172800")
	assert.Contains(t, raw, "Expires=Tue, 03 Mar 2026 12:00:00 GMT")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, 172800, cookies[0].MaxAge)
}

func TestSetTokenDefaultMaxAge(t *testing.T) {
	store := &CookieStore{}

	rec := httptest.NewRecorder()
	store.SetToken(rec, "tok")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, int(DefaultMaxAge.Seconds()), cookies[0].MaxAge)
	assert.True(t, cookies[0].Expires.After(time.Now()))
}
