package http

import (
	"net/http"

	"carteira/internal/core"
)

type notificationsData struct {
	Items []core.Notification
}

// renderNotifications serves the panel fragment to htmx and the full page
// otherwise.
func (s *Server) renderNotifications(w http.ResponseWriter, r *http.Request) {
	u := mustUser(r)
	p := s.newPage(r, "Notificações", "notifications", notificationsData{Items: s.ledger.Inbox().List(u.ID)})
	if isHTMX(r) {
		s.render(w, r, http.StatusOK, "notifications_panel", p)
		return
	}
	s.render(w, r, http.StatusOK, "notifications.html", p)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.renderNotifications(w, r)
}

func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	s.ledger.Inbox().MarkAllRead(mustUser(r).ID)
	s.renderNotifications(w, r)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	s.ledger.Inbox().Clear(mustUser(r).ID)
	s.renderNotifications(w, r)
}
