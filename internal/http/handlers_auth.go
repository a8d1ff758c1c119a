package http

import (
	"errors"
	"net/http"

	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/services"
)

type authForm struct {
	Name     string
	Email    string
	Remember bool
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessionUser(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", page{Title: "Entrar", Theme: core.ThemeDark, Data: authForm{}})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessionUser(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "register.html", page{Title: "Criar conta", Theme: core.ThemeDark, Data: authForm{}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	form := authForm{
		Email:    sanitizeInput(r.Form.Get("email")),
		Remember: r.Form.Get("remember") != "",
	}
	logger := log.FromContext(r.Context())

	u, err := s.auth.Login(r.Context(), form.Email, r.Form.Get("password"))
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, services.ErrInvalidCredentials) {
			logger.ErrorContext(r.Context(), "Login failed", log.FieldOperation, log.OpLogin, log.FieldError, err)
			status = http.StatusInternalServerError
		}
		s.render(w, r, status, "login.html", page{Title: "Entrar", Theme: core.ThemeDark, Error: userMessage(err), Data: form})
		return
	}

	if err := s.startSession(w, u, form.Remember); err != nil {
		logger.ErrorContext(r.Context(), "Failed to issue session", log.FieldUserID, u.ID, log.FieldError, err)
		InternalServerError("Não foi possível iniciar a sessão").Write(w)
		return
	}
	logger.InfoContext(r.Context(), "User signed in", log.FieldUserID, u.ID, "remember", form.Remember)
	redirect(w, r, "/")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	form := authForm{
		Name:     sanitizeInput(r.Form.Get("name")),
		Email:    sanitizeInput(r.Form.Get("email")),
		Remember: r.Form.Get("remember") != "",
	}
	password := r.Form.Get("password")
	fail := func(status int, err error) {
		s.render(w, r, status, "register.html", page{Title: "Criar conta", Theme: core.ThemeDark, Error: userMessage(err), Data: form})
	}

	if password != r.Form.Get("confirm") {
		fail(http.StatusUnprocessableEntity, services.ErrPasswordMismatch)
		return
	}

	u, err := s.auth.Register(r.Context(), form.Name, form.Email, password)
	switch {
	case errors.Is(err, core.ErrEmailTaken):
		fail(http.StatusConflict, err)
		return
	case isUserError(err):
		fail(http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Registration failed",
			log.FieldOperation, log.OpRegister, log.FieldError, err)
		fail(http.StatusInternalServerError, err)
		return
	}

	if err := s.startSession(w, u, form.Remember); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to issue session", log.FieldUserID, u.ID, log.FieldError, err)
		redirect(w, r, "/login")
		return
	}
	redirect(w, r, "/")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	u := mustUser(r)
	s.ledger.Invalidate(u.ID)
	s.endSession(w)
	log.FromContext(r.Context()).InfoContext(r.Context(), "User signed out")
	redirect(w, r, "/login")
}
