package http

import (
	"errors"
	"net/http"

	"carteira/internal/core"
	"carteira/internal/log"
)

type transactionFormData struct {
	Form       TransactionForm
	Categories []core.Category
	Editing    bool
}

func (s *Server) transactionPage(r *http.Request, form TransactionForm, cats []core.Category) page {
	title := "Nova transação"
	if form.ID != "" {
		title = "Editar transação"
	}
	return s.newPage(r, title, "new", transactionFormData{
		Form:       form,
		Categories: cats,
		Editing:    form.ID != "",
	})
}

func (s *Server) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
	u := mustUser(r)
	l, err := s.ledger.Load(r.Context(), u.ID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load categories", log.FieldError, err)
	}
	form := NewTransactionForm(core.TransactionType(r.URL.Query().Get("type")), s.now())
	s.render(w, r, http.StatusOK, "transaction_form.html", s.transactionPage(r, form, l.Categories))
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	u := mustUser(r)
	l, err := s.ledger.Load(r.Context(), u.ID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load ledger", log.FieldError, err)
		InternalServerError(userMessage(err)).Write(w)
		return
	}
	t, ok := l.Transaction(r.PathValue("id"))
	if !ok {
		NotFoundError("Transação não encontrada").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "transaction_form.html", s.transactionPage(r, FormFromTransaction(t), l.Categories))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	s.saveTransaction(w, r, "")
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	s.saveTransaction(w, r, r.PathValue("id"))
}

// saveTransaction creates (id == "") or updates a transaction from the form.
func (s *Server) saveTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	u := mustUser(r)
	logger := log.FromContext(r.Context())

	form := ParseTransactionForm(r.Form)
	form.ID = id

	invalid := func(err error) {
		l, _ := s.ledger.Load(r.Context(), u.ID)
		p := s.transactionPage(r, form, l.Categories)
		p.Error = userMessage(err)
		s.renderInvalid(w, r, "transaction_form.html", p)
	}

	t, err := form.Transaction()
	if err != nil {
		invalid(err)
		return
	}

	var saved core.Transaction
	if id == "" {
		saved, err = s.ledger.AddTransaction(r.Context(), u.ID, t)
	} else {
		saved, err = s.ledger.UpdateTransaction(r.Context(), u.ID, t)
	}
	switch {
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("Transação não encontrada").Write(w)
		return
	case err != nil:
		// Store failures were logged by the service; the form is kept.
		invalid(err)
		return
	}

	op := log.OpCreate
	if id != "" {
		op = log.OpUpdate
	}
	logger.InfoContext(r.Context(), "Transaction saved", log.FieldOperation, op, log.FieldTransactionID, saved.ID)

	if isHTMX(r) {
		NewHTMXResponse().
			TriggerLedgerChanged().
			Redirect("/").
			Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	u := mustUser(r)
	err := s.ledger.DeleteTransaction(r.Context(), u.ID, r.PathValue("id"))
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError("Transação não encontrada").Write(w)
		return
	}
	if err != nil {
		NewHTMXResponse().
			TriggerErrorNotification("Não foi possível excluir a transação.").
			Header("HX-Reswap", "none").
			Write(w)
		return
	}
	// Empty body: the row is swapped out.
	NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerSuccessNotification("Transação excluída.").
		Write(w)
}
