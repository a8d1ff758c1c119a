package http

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"carteira/internal/core"
	"carteira/internal/log"
	appweb "carteira/web"
)

const maskedAmount = "R$ ••••••"

// page is the data every full-page template receives.
type page struct {
	Title   string
	Nav     string
	User    core.User
	Profile core.UserProfile
	Theme   core.Theme
	Privacy bool
	Unread  int
	Error   string
	Data    any
}

// transactionRow lets the row partial see the page's privacy flag and
// categories while ranging over transactions.
type transactionRow struct {
	Page page
	Tx   core.Transaction
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"brl": func(m core.Money) string { return m.String() },
		"amount": func(privacy bool, m core.Money) string {
			if privacy {
				return maskedAmount
			}
			return m.String()
		},
		"signed": func(privacy bool, t core.Transaction) string {
			sign := "+ "
			if t.Type == core.Expense {
				sign = "- "
			}
			if privacy {
				return sign + maskedAmount
			}
			return sign + "R$ " + core.FormatAmount(t.Amount.Cents)
		},
		"dateShort": func(t core.Transaction) string { return core.FormatDateShort(t.Date.Local()) },
		"dateFull":  func(t core.Transaction) string { return core.FormatDateFull(t.Date.Local()) },
		"clock":     func(t core.Transaction) string { return core.FormatTime(t.Date.Local()) },
		"stamp": func(t time.Time) string {
			return core.FormatDateShort(t.Local()) + " " + core.FormatTime(t.Local())
		},
		"image":      imageURL,
		"background": backgroundStyle,
		"icon":       categoryIcon,
		"initial":    initial,
		"row":        func(p page, t core.Transaction) transactionRow { return transactionRow{Page: p, Tx: t} },
	}
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// categoryIcon finds the icon of the named category, with a type fallback.
func categoryIcon(t core.Transaction, cats []core.Category) string {
	for _, c := range cats {
		if strings.EqualFold(c.Name, t.CategoryName()) {
			return c.Icon
		}
	}
	if t.Type == core.Income {
		return "payments"
	}
	return "category"
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

// newPage fills the shared chrome for the signed-in user.
func (s *Server) newPage(r *http.Request, title, nav string, data any) page {
	u, _ := userFrom(r.Context())
	p := page{
		Title:   title,
		Nav:     nav,
		User:    u,
		Profile: u.Profile(),
		Theme:   u.EffectiveTheme(),
		Privacy: u.PrivacyMode,
		Data:    data,
	}
	if u.ID != "" {
		p.Unread = s.ledger.Inbox().UnreadCount(u.ID)
	}
	return p
}

// render executes name into a buffer so a template error never leaves a
// half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name, log.FieldOperation, log.OpRender, log.FieldError, err)
		http.Error(w, "Erro ao renderizar a página", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderInvalid re-renders a form with its error. htmx does not swap 4xx
// responses, so htmx requests get 200 plus an error toast instead of 422.
func (s *Server) renderInvalid(w http.ResponseWriter, r *http.Request, name string, p page) {
	if isHTMX(r) {
		NewHTMXResponse().TriggerErrorNotification(p.Error).Apply(w)
		s.render(w, r, http.StatusOK, name, p)
		return
	}
	s.render(w, r, http.StatusUnprocessableEntity, name, p)
}
