package http

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"carteira/internal/auth"
	"carteira/internal/core"
	"carteira/internal/services"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends htmx requests an HX-Redirect and everything else a 303.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(url).Write(w)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// localPath returns p when it is a same-origin absolute path.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	return p
}

// userMessages maps domain errors to the pt-BR text shown in forms.
var userMessages = []struct {
	err error
	msg string
}{
	{services.ErrInvalidCredentials, "E-mail ou senha incorretos."},
	{services.ErrPasswordMismatch, "As senhas não coincidem."},
	{auth.ErrPasswordTooShort, "A senha deve ter pelo menos 6 caracteres."},
	{core.ErrEmailTaken, "Este e-mail já está cadastrado."},
	{core.ErrInvalidEmail, "Informe um e-mail válido."},
	{core.ErrEmptyName, "Informe seu nome."},
	{core.ErrNameTooLong, "O nome é muito longo."},
	{core.ErrInvalidAmount, "Informe um valor maior que zero."},
	{core.ErrAmountTooLarge, "O valor é muito alto."},
	{core.ErrEmptyDescription, "Informe uma descrição."},
	{core.ErrDescriptionTooLong, "A descrição é muito longa."},
	{core.ErrInvalidType, "Escolha receita ou despesa."},
	{core.ErrInvalidDate, "Informe uma data válida."},
	{core.ErrCategoryTooLong, "O nome da categoria é muito longo."},
	{core.ErrEmptyCategoryName, "Informe o nome da categoria."},
	{core.ErrInvalidIcon, "Escolha um ícone válido."},
	{core.ErrNotFound, "Registro não encontrado."},
	{ErrNoFile, "Selecione uma imagem."},
	{ErrNotAnImage, "O arquivo precisa ser uma imagem PNG, JPEG, GIF ou WebP."},
	{ErrUploadTooLarge, "A imagem é muito grande."},
	{ErrUnknownWallpaper, "Papel de parede inválido."},
}

const genericFailure = "Não foi possível concluir a operação. Tente novamente."

func userMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return genericFailure
}

// isUserError reports whether err is caused by the input rather than by
// the store.
func isUserError(err error) bool {
	return userMessage(err) != genericFailure
}

// Wallpaper is a selectable background preset.
type Wallpaper struct {
	ID   string
	Name string
	URL  string
}

var wallpapers = []Wallpaper{
	{ID: "abstract", Name: "Abstrato", URL: "https://images.unsplash.com/photo-1550684848-fac1c5b4e853?q=80&w=1000&auto=format&fit=crop"},
	{ID: "nebula", Name: "Nebulosa", URL: "https://images.unsplash.com/photo-1462331940025-496dfbfc7564?q=80&w=1000&auto=format&fit=crop"},
	{ID: "city", Name: "Cidade", URL: "https://images.unsplash.com/photo-1519501025264-65ba15a82390?q=80&w=1000&auto=format&fit=crop"},
	{ID: "minimal", Name: "Geometria", URL: "https://images.unsplash.com/photo-1550684847-75bdda21cc95?q=80&w=1000&auto=format&fit=crop"},
	{ID: "nature", Name: "Natureza", URL: "https://images.unsplash.com/photo-1472214103451-9374bd1c798e?q=80&w=1000&auto=format&fit=crop"},
}

func wallpaperByID(id string) (Wallpaper, bool) {
	for _, w := range wallpapers {
		if w.ID == id {
			return w, true
		}
	}
	return Wallpaper{}, false
}

// imageURL lets stored avatar and wallpaper values through html/template
// only when they are images we produced: sniffed data URLs or https presets.
func imageURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "https://") {
		return template.URL(s)
	}
	return ""
}

// backgroundStyle renders the wallpaper as an inline background declaration.
func backgroundStyle(s string) template.CSS {
	u := imageURL(s)
	if u == "" || strings.ContainsAny(string(u), `"\`) {
		return ""
	}
	return template.CSS(`background-image: url("` + string(u) + `")`)
}
