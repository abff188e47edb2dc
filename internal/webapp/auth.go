package webapp

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/phillip-england/hrpulse/internal/apiclient"
)

const loginFailedMessage = "Login failed"

func (s *server) loginPage(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Sign in", "")
	data.Username = r.URL.Query().Get("username")
	s.render(w, r, s.loginTmpl, http.StatusOK, data)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/login", "error", "Invalid form submission")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		redirectWith(w, r, "/login?username="+url.QueryEscape(username), "error", "Username and password are required")
		return
	}

	token, err := s.api.Login(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, apiclient.ErrLoginFailed) {
			s.logger.Error("login failed", "error", err)
		} else {
			s.logger.Info("login rejected", "username", username, "error", err)
		}
		redirectWith(w, r, "/login?username="+url.QueryEscape(username), "error", loginFailedMessage)
		return
	}

	s.roster.Forget(token)
	s.sessions.SetToken(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := s.sessions.Token(r); ok {
		s.roster.Forget(token)
	}
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
