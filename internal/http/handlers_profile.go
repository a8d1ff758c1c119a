package http

import (
	"errors"
	"net/http"

	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/services"
)

type profileData struct {
	Wallpapers []Wallpaper
	Categories []core.Category
	Icons      []string
}

func (s *Server) profilePage(r *http.Request) page {
	u := mustUser(r)
	l, err := s.ledger.Load(r.Context(), u.ID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load categories", log.FieldError, err)
	}
	return s.newPage(r, "Perfil", "profile", profileData{
		Wallpapers: wallpapers,
		Categories: l.Categories,
		Icons:      core.CategoryIcons,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "profile.html", s.profilePage(r))
}

// profileDone answers a profile mutation. htmx gets the re-rendered page with
// a toast; plain posts are redirected back to /profile (or to a local "next"
// path), or shown the form again on invalid input.
func (s *Server) profileDone(w http.ResponseWriter, r *http.Request, success string, err error) {
	s.finishProfile(w, r, success, err, false)
}

func (s *Server) finishProfile(w http.ResponseWriter, r *http.Request, success string, err error, ledgerChanged bool) {
	if err != nil {
		if !isUserError(err) {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Profile update failed",
				log.FieldOperation, log.OpUpdate, log.FieldPath, r.URL.Path, log.FieldError, err)
		}
		p := s.profilePage(r)
		p.Error = userMessage(err)
		s.renderInvalid(w, r, "profile.html", p)
		return
	}
	if next := localPath(r.FormValue("next")); next != "" {
		redirect(w, r, next)
		return
	}
	if !isHTMX(r) {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().TriggerSuccessNotification(success)
	if ledgerChanged {
		b.TriggerLedgerChanged()
	}
	b.Apply(w)
	s.render(w, r, http.StatusOK, "profile.html", s.profilePage(r))
}

// updateProfile applies upd and swaps the refreshed user into the request so
// the page rendered afterwards reflects it.
func (s *Server) updateProfile(r *http.Request, upd services.ProfileUpdate) (*http.Request, error) {
	u, err := s.auth.UpdateProfile(r.Context(), mustUser(r).ID, upd)
	if err != nil {
		return r, err
	}
	return r.WithContext(withUser(r.Context(), u)), nil
}

func (s *Server) handleProfileName(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	name := sanitizeInput(r.FormValue("name"))
	r, err := s.updateProfile(r, services.ProfileUpdate{Name: &name})
	s.profileDone(w, r, "Nome atualizado.", err)
}

func (s *Server) handleProfilePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	err := s.auth.ChangePassword(r.Context(), mustUser(r).ID, r.FormValue("password"), r.FormValue("confirm"))
	s.profileDone(w, r, "Senha alterada.", err)
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.UploadMaxBytes+64<<10)
	return ReadImageUpload(r, field, s.opts.UploadMaxBytes)
}

func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	img, err := s.readUpload(w, r, "avatar")
	if err != nil {
		s.profileDone(w, r, "", err)
		return
	}
	r, err = s.updateProfile(r, services.ProfileUpdate{AvatarURL: &img})
	s.profileDone(w, r, "Foto atualizada.", err)
}

func (s *Server) handleAvatarRemove(w http.ResponseWriter, r *http.Request) {
	empty := ""
	r, err := s.updateProfile(r, services.ProfileUpdate{AvatarURL: &empty})
	s.profileDone(w, r, "Foto removida.", err)
}

// handleWallpaper accepts a preset id, "clear", or an uploaded image.
func (s *Server) handleWallpaper(w http.ResponseWriter, r *http.Request) {
	var value string
	if preset := r.URL.Query().Get("preset"); preset != "" {
		if preset != "clear" {
			wp, ok := wallpaperByID(preset)
			if !ok {
				s.profileDone(w, r, "", ErrUnknownWallpaper)
				return
			}
			value = wp.URL
		}
	} else {
		img, err := s.readUpload(w, r, "wallpaper")
		if err != nil {
			s.profileDone(w, r, "", err)
			return
		}
		value = img
	}

	msg := "Papel de parede atualizado."
	if value == "" {
		msg = "Papel de parede removido."
	}
	r, err := s.updateProfile(r, services.ProfileUpdate{Wallpaper: &value})
	s.profileDone(w, r, msg, err)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := mustUser(r).EffectiveTheme().Toggle()
	r, err := s.updateProfile(r, services.ProfileUpdate{Theme: &next})
	msg := "Modo escuro ativado."
	if next == core.ThemeLight {
		msg = "Modo claro ativado."
	}
	s.profileDone(w, r, msg, err)
}

func (s *Server) handleTogglePrivacy(w http.ResponseWriter, r *http.Request) {
	next := !mustUser(r).PrivacyMode
	r, err := s.updateProfile(r, services.ProfileUpdate{PrivacyMode: &next})
	msg := "Valores visíveis."
	if next {
		msg = "Valores ocultos."
	}
	s.profileDone(w, r, msg, err)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	c := core.Category{
		Name: sanitizeInput(r.FormValue("name")),
		Icon: r.FormValue("icon"),
	}
	if c.Icon == "" {
		c.Icon = "category"
	}
	_, err := s.ledger.AddCategory(r.Context(), mustUser(r).ID, c)
	s.finishProfile(w, r, "Categoria criada.", err, true)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := s.ledger.DeleteCategory(r.Context(), mustUser(r).ID, r.PathValue("id"))
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError("Categoria não encontrada").Write(w)
		return
	}
	s.finishProfile(w, r, "Categoria removida.", err, true)
}
