package webapp

import (
	"net/http"

	"github.com/phillip-england/hrpulse/internal/dashboard"
)

const dashboardFailedMessage = "Failed to load dashboard data"

// dashboardPage renders only after all three fetches settle. A failure in any
// of them replaces the whole page body with one banner.
func (s *server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Dashboard Overview", "dashboard")

	loaded, err := dashboard.Load(r.Context(), s.api.WithToken(s.token(r)))
	if err != nil {
		s.logger.Error("dashboard load failed", "error", err)
		data.Error = dashboardFailedMessage
		s.render(w, r, s.dashboardTmpl, http.StatusOK, data)
		return
	}

	view := dashboard.Build(loaded)
	data.Dashboard = &view
	s.render(w, r, s.dashboardTmpl, http.StatusOK, data)
}
