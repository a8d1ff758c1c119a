package http

import (
	"net/http"

	"carteira/internal/core"
	"carteira/internal/log"
)

const recentLimit = 20

type homeData struct {
	Balance    core.Money
	Income     core.Money
	Expense    core.Money
	Recent     []core.Transaction
	Categories []core.Category
	Greeting   string
}

func greeting(hour int) string {
	switch {
	case hour < 12:
		return "Bom dia"
	case hour < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

func (s *Server) homeData(r *http.Request) (homeData, error) {
	u := mustUser(r)
	l, err := s.ledger.Load(r.Context(), u.ID)
	if err != nil {
		return homeData{}, err
	}
	return homeData{
		Balance:    l.Balance(),
		Income:     l.Income(),
		Expense:    l.Expense(),
		Recent:     l.Recent(recentLimit),
		Categories: l.Categories,
		Greeting:   greeting(s.now().Hour()),
	}, nil
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data, err := s.homeData(r)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load home", log.FieldError, err)
		p := s.newPage(r, "Início", "home", homeData{Greeting: greeting(s.now().Hour())})
		p.Error = "Não foi possível carregar suas transações."
		s.render(w, r, http.StatusOK, "home.html", p)
		return
	}
	s.render(w, r, http.StatusOK, "home.html", s.newPage(r, "Início", "home", data))
}

// handleSummary re-renders the balance cards and list after ledger:changed.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	data, err := s.homeData(r)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load summary", log.FieldError, err)
		InternalServerError("Não foi possível atualizar o resumo").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "summary", s.newPage(r, "", "home", data))
}
