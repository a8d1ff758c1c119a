package http

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"carteira/internal/auth"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/notify"
	"carteira/internal/services"
	"carteira/internal/storage/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testApp struct {
	t      *testing.T
	srv    *Server
	store  *memory.Store
	cookie *http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := memory.New()
	logger := log.Discard()
	authSvc := services.NewAuthService(store, nil, logger)
	ledger := services.NewLedgerService(store, store, notify.NewInbox(), nil, logger)

	srv, err := NewServer(Options{
		Addr:           ":0",
		SessionTTL:     time.Hour,
		RememberTTL:    24 * time.Hour,
		UploadMaxBytes: 64 << 10,
	}, Deps{
		Auth:   authSvc,
		Ledger: ledger,
		Tokens: auth.NewTokenIssuer(testSecret),
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testApp{t: t, srv: srv, store: store}
}

func (a *testApp) serve(req *http.Request, htmx bool) *httptest.ResponseRecorder {
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	rr := httptest.NewRecorder()
	a.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, path, nil), false)
}

func (a *testApp) send(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.serve(req, htmx)
}

// register signs up a user and keeps the session cookie.
func (a *testApp) register(name, email string) core.User {
	a.t.Helper()
	rr := a.send(http.MethodPost, "/register", url.Values{
		"name": {name}, "email": {email}, "password": {"segredo123"}, "confirm": {"segredo123"},
	}, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		a.t.Fatalf("register: status=%d location=%q body=%s", rr.Code, rr.Header().Get("Location"), rr.Body.String())
	}
	a.cookie = sessionCookieFrom(a.t, rr)
	u, err := a.store.GetUserByEmail(context.Background(), strings.ToLower(email))
	if err != nil {
		a.t.Fatalf("registered user not stored: %v", err)
	}
	return u
}

func (a *testApp) user(id string) core.User {
	a.t.Helper()
	u, err := a.store.GetUserByID(context.Background(), id)
	if err != nil {
		a.t.Fatalf("GetUserByID: %v", err)
	}
	return u
}

func sessionCookieFrom(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", sessionCookie)
	return nil
}

func expenseForm(desc, amount string) url.Values {
	return url.Values{
		"type": {"expense"}, "description": {desc}, "amount": {amount},
		"category": {"Comida"}, "date": {"2026-10-01"}, "time": {"09:30"},
	}
}

func TestHealthAndReady(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := app.get(path)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: missing X-Request-ID", path)
		}
	}
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t)
	rr := app.get("/static/app.css")
	if rr.Code != http.StatusOK {
		t.Fatalf("app.css status=%d", rr.Code)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Error("static assets should be cacheable")
	}
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	app := newTestApp(t)

	rr := app.get("/")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = app.serve(httptest.NewRequest(http.MethodGet, "/analytics", nil), true)
	if rr.Header().Get("HX-Redirect") != "/login" {
		t.Errorf("htmx request should get HX-Redirect, got headers %v", rr.Header())
	}

	app.cookie = &http.Cookie{Name: sessionCookie, Value: "garbage"}
	rr = app.get("/profile")
	if rr.Code != http.StatusSeeOther {
		t.Errorf("invalid token: status=%d", rr.Code)
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t)
	app.register("Ana", "Ana@Example.com")

	rr := app.get("/")
	if rr.Code != http.StatusOK {
		t.Fatalf("home status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Ana") {
		t.Error("home should greet the user by name")
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("protected pages must not be cached, got %q", rr.Header().Get("Cache-Control"))
	}

	// Signed-in users skip the login screen.
	if rr := app.get("/login"); rr.Code != http.StatusSeeOther {
		t.Errorf("login page with session: status=%d", rr.Code)
	}

	rr = app.send(http.MethodPost, "/logout", nil, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("logout: %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if c := sessionCookieFrom(t, rr); c.MaxAge >= 0 {
		t.Errorf("logout should expire the cookie, MaxAge=%d", c.MaxAge)
	}
	app.cookie = nil

	rr = app.send(http.MethodPost, "/login", url.Values{"email": {"ana@example.com"}, "password": {"errada123"}}, false)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "E-mail ou senha incorretos.") {
		t.Error("wrong password should show an inline error")
	}

	rr = app.send(http.MethodPost, "/login", url.Values{
		"email": {"ANA@example.com"}, "password": {"segredo123"}, "remember": {"1"},
	}, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login: status=%d body=%s", rr.Code, rr.Body.String())
	}
	if c := sessionCookieFrom(t, rr); c.MaxAge <= 0 || !c.HttpOnly {
		t.Errorf("remember me should set a persistent HttpOnly cookie, got MaxAge=%d HttpOnly=%v", c.MaxAge, c.HttpOnly)
	}
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)
	app.register("Ana", "ana@example.com")
	app.cookie = nil

	tests := []struct {
		name   string
		form   url.Values
		status int
		msg    string
	}{
		{"duplicate email", url.Values{"email": {"ana@example.com"}, "password": {"segredo123"}, "confirm": {"segredo123"}}, http.StatusConflict, "Este e-mail já está cadastrado."},
		{"mismatch", url.Values{"email": {"b@example.com"}, "password": {"segredo123"}, "confirm": {"outro1234"}}, http.StatusUnprocessableEntity, "As senhas não coincidem."},
		{"short password", url.Values{"email": {"c@example.com"}, "password": {"123"}, "confirm": {"123"}}, http.StatusUnprocessableEntity, "A senha deve ter pelo menos 6 caracteres."},
		{"bad email", url.Values{"email": {"nope"}, "password": {"segredo123"}, "confirm": {"segredo123"}}, http.StatusUnprocessableEntity, "Informe um e-mail válido."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.send(http.MethodPost, "/register", tt.form, false)
			if rr.Code != tt.status {
				t.Errorf("status=%d, want %d", rr.Code, tt.status)
			}
			if !strings.Contains(rr.Body.String(), tt.msg) {
				t.Errorf("body missing %q", tt.msg)
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	app := newTestApp(t)
	u := app.register("Bruno", "bruno@example.com")

	rr := app.send(http.MethodPost, "/transactions", expenseForm("Mercado", "12,50"), false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create: status=%d body=%s", rr.Code, rr.Body.String())
	}

	txs, _ := app.store.ListTransactions(context.Background(), u.ID)
	if len(txs) != 1 || txs[0].Amount.Cents != 1250 {
		t.Fatalf("unexpected stored transactions: %+v", txs)
	}
	id := txs[0].ID

	body := app.get("/").Body.String()
	if !strings.Contains(body, "Mercado") || !strings.Contains(body, "12,50") {
		t.Error("home should list the new transaction")
	}

	rr = app.get("/transactions/" + id + "/edit")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `value="12,50"`) {
		t.Errorf("edit form: status=%d", rr.Code)
	}
	if rr := app.get("/transactions/missing/edit"); rr.Code != http.StatusNotFound {
		t.Errorf("edit unknown: status=%d", rr.Code)
	}

	rr = app.send(http.MethodPost, "/transactions/"+id, expenseForm("Feira", "20"), true)
	if rr.Header().Get("HX-Redirect") != "/" {
		t.Errorf("htmx update should redirect home, headers=%v", rr.Header())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), EventLedgerChanged) {
		t.Error("update should trigger ledger:changed")
	}
	txs, _ = app.store.ListTransactions(context.Background(), u.ID)
	if txs[0].Description != "Feira" || txs[0].Amount.Cents != 2000 {
		t.Errorf("update not stored: %+v", txs[0])
	}

	summary := app.serve(httptest.NewRequest(http.MethodGet, "/ui/summary", nil), true)
	if summary.Code != http.StatusOK || !strings.Contains(summary.Body.String(), `id="summary"`) {
		t.Errorf("summary fragment: status=%d", summary.Code)
	}
	if strings.Contains(summary.Body.String(), "<html") {
		t.Error("summary should be a fragment")
	}

	rr = app.send(http.MethodDelete, "/transactions/"+id, nil, true)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Header().Get("HX-Trigger"), EventLedgerChanged) {
		t.Errorf("delete: status=%d trigger=%q", rr.Code, rr.Header().Get("HX-Trigger"))
	}
	if rr := app.send(http.MethodDelete, "/transactions/"+id, nil, true); rr.Code != http.StatusNotFound {
		t.Errorf("second delete: status=%d", rr.Code)
	}
}

func TestTransactionValidation(t *testing.T) {
	app := newTestApp(t)
	app.register("Carla", "carla@example.com")

	form := expenseForm("Mercado", "")
	rr := app.send(http.MethodPost, "/transactions", form, false)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("plain post: status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Informe um valor maior que zero.") {
		t.Error("form should show the amount error")
	}
	if !strings.Contains(rr.Body.String(), `value="Mercado"`) {
		t.Error("form should keep the entered description")
	}

	rr = app.send(http.MethodPost, "/transactions", expenseForm("Iate", "100000000000,01"), false)
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), "O valor é muito alto.") {
		t.Errorf("oversized amount: status=%d", rr.Code)
	}

	rr = app.send(http.MethodPost, "/transactions", form, true)
	if rr.Code != http.StatusOK {
		t.Errorf("htmx post: status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), EventShowNotification) {
		t.Error("htmx validation error should raise a toast")
	}
}

func TestPrivacyModeMasksAmounts(t *testing.T) {
	app := newTestApp(t)
	u := app.register("Davi", "davi@example.com")
	app.send(http.MethodPost, "/transactions", expenseForm("Cinema", "45,00"), false)

	rr := app.send(http.MethodPost, "/profile/privacy", url.Values{"next": {"/"}}, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("privacy toggle from home: %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if !app.user(u.ID).PrivacyMode {
		t.Fatal("privacy mode not stored")
	}
	body := app.get("/").Body.String()
	if strings.Contains(body, "45,00") || !strings.Contains(body, maskedAmount) {
		t.Error("amounts should be masked in privacy mode")
	}
}

func TestAnalyticsAndExport(t *testing.T) {
	app := newTestApp(t)
	app.register("Eva", "eva@example.com")
	app.send(http.MethodPost, "/transactions", expenseForm("Aluguel", "1500"), false)
	app.send(http.MethodPost, "/transactions", url.Values{
		"type": {"income"}, "description": {"Salário"}, "amount": {"5000"}, "date": {"2026-10-05"},
	}, false)

	rr := app.get("/analytics?period=year")
	if rr.Code != http.StatusOK {
		t.Fatalf("analytics: status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Anual", "Comida", "conic-gradient"} {
		if !strings.Contains(body, want) {
			t.Errorf("analytics body missing %q", want)
		}
	}

	rr = app.get("/analytics/export.pdf?period=6months")
	if rr.Code != http.StatusOK {
		t.Fatalf("export: status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "relatorio-financeiro-6months.pdf") {
		t.Errorf("content disposition %q", cd)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Error("export is not a PDF")
	}
}

func TestAnalyticsListsFullHistory(t *testing.T) {
	app := newTestApp(t)
	u := app.register("Igor", "igor@example.com")

	const n = recentLimit + 1
	for i := 1; i <= n; i++ {
		form := expenseForm(fmt.Sprintf("Compra %02d", i), "10")
		form.Set("date", fmt.Sprintf("2026-09-%02d", i))
		if rr := app.send(http.MethodPost, "/transactions", form, false); rr.Code != http.StatusSeeOther {
			t.Fatalf("create %d: status=%d", i, rr.Code)
		}
	}

	var oldest core.Transaction
	txs, _ := app.store.ListTransactions(context.Background(), u.ID)
	for _, tx := range txs {
		if tx.Description == "Compra 01" {
			oldest = tx
		}
	}
	if oldest.ID == "" {
		t.Fatal("oldest transaction not stored")
	}
	editLink := `href="/transactions/` + oldest.ID + `/edit"`

	if strings.Contains(app.get("/").Body.String(), editLink) {
		t.Error("home should only list the most recent transactions")
	}

	body := app.get("/analytics").Body.String()
	if !strings.Contains(body, "Histórico Detalhado") {
		t.Error("analytics should render the history section")
	}
	if !strings.Contains(body, editLink) {
		t.Error("history should link to the oldest transaction")
	}
	if !strings.Contains(body, `hx-delete="/transactions/`+oldest.ID+`"`) {
		t.Error("history rows should be deletable")
	}
	if got := strings.Count(body, `/edit"`); got != n {
		t.Errorf("history rows = %d, want %d", got, n)
	}
}

func TestDonutGradient(t *testing.T) {
	if donutGradient(nil) != "" {
		t.Error("empty breakdown should have no gradient")
	}
}

func TestNotifications(t *testing.T) {
	app := newTestApp(t)
	u := app.register("Fabi", "fabi@example.com")
	app.send(http.MethodPost, "/transactions", expenseForm("Padaria", "8"), false)

	inbox := app.srv.ledger.Inbox()
	if inbox.UnreadCount(u.ID) != 1 {
		t.Fatalf("expected 1 unread notification, got %d", inbox.UnreadCount(u.ID))
	}

	rr := app.get("/notifications")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Despesa Registrada") {
		t.Errorf("notifications page: status=%d", rr.Code)
	}

	rr = app.send(http.MethodPost, "/notifications/read", nil, true)
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "<html") {
		t.Errorf("mark read should return the panel fragment, status=%d", rr.Code)
	}
	if inbox.UnreadCount(u.ID) != 0 {
		t.Error("notifications should be read")
	}

	app.send(http.MethodDelete, "/notifications", nil, true)
	if len(inbox.List(u.ID)) != 0 {
		t.Error("notifications should be cleared")
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	return &body, mw.FormDataContentType()
}

func TestProfileUpdates(t *testing.T) {
	app := newTestApp(t)
	u := app.register("Gui", "gui@example.com")

	rr := app.send(http.MethodPost, "/profile/name", url.Values{"name": {"Guilherme"}}, true)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Guilherme") {
		t.Errorf("name: status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "Nome atualizado.") {
		t.Errorf("name: trigger=%q", rr.Header().Get("HX-Trigger"))
	}

	if rr := app.send(http.MethodPost, "/profile/name", url.Values{"name": {""}}, false); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty name: status=%d", rr.Code)
	}

	rr = app.send(http.MethodPost, "/profile/password", url.Values{"password": {"novasenha1"}, "confirm": {"outra"}}, false)
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), "As senhas não coincidem.") {
		t.Errorf("password mismatch: status=%d", rr.Code)
	}
	if rr := app.send(http.MethodPost, "/profile/password", url.Values{"password": {"novasenha1"}, "confirm": {"novasenha1"}}, false); rr.Code != http.StatusSeeOther {
		t.Errorf("password change: status=%d", rr.Code)
	}

	before := app.user(u.ID).EffectiveTheme()
	app.send(http.MethodPost, "/profile/theme", nil, true)
	if got := app.user(u.ID).EffectiveTheme(); got != before.Toggle() {
		t.Errorf("theme = %q, want %q", got, before.Toggle())
	}

	app.send(http.MethodPost, "/profile/wallpaper?preset=nebula", nil, true)
	want, _ := wallpaperByID("nebula")
	if got := app.user(u.ID).Wallpaper; got != want.URL {
		t.Errorf("wallpaper = %q", got)
	}
	app.send(http.MethodPost, "/profile/wallpaper?preset=clear", nil, true)
	if got := app.user(u.ID).Wallpaper; got != "" {
		t.Errorf("wallpaper should be cleared, got %q", got)
	}

	rr = app.send(http.MethodPost, "/profile/wallpaper?preset=vaporwave", nil, false)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown preset: status=%d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "Papel de parede inválido.") || strings.Contains(body, "Selecione uma imagem.") {
		t.Error("unknown preset should report an invalid wallpaper")
	}
}

func TestAvatarUpload(t *testing.T) {
	app := newTestApp(t)
	u := app.register("Helena", "helena@example.com")

	body, ct := multipartBody(t, "avatar", "me.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/profile/avatar", body)
	req.Header.Set("Content-Type", ct)
	rr := app.serve(req, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("upload: status=%d", rr.Code)
	}
	if got := app.user(u.ID).AvatarURL; !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("avatar not stored as data URL: %.40q", got)
	}

	body, ct = multipartBody(t, "avatar", "notes.txt", []byte("not an image at all"))
	req = httptest.NewRequest(http.MethodPost, "/profile/avatar", body)
	req.Header.Set("Content-Type", ct)
	rr = app.serve(req, true)
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "error") {
		t.Errorf("text upload should raise an error toast, trigger=%q", rr.Header().Get("HX-Trigger"))
	}

	app.send(http.MethodDelete, "/profile/avatar", nil, true)
	if got := app.user(u.ID).AvatarURL; got != "" {
		t.Errorf("avatar should be removed, got %.20q", got)
	}
}

func TestCategories(t *testing.T) {
	app := newTestApp(t)
	u := app.register("Igor", "igor@example.com")

	rr := app.send(http.MethodPost, "/categories", url.Values{"name": {"Pets"}, "icon": {"pets"}}, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/profile" {
		t.Fatalf("create category: %d %q", rr.Code, rr.Header().Get("Location"))
	}
	cats, _ := app.store.ListCategories(context.Background(), u.ID)
	if len(cats) != 1 || cats[0].Icon != "pets" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
	if !strings.Contains(app.get("/profile").Body.String(), "Pets") {
		t.Error("profile should list the category")
	}

	if rr := app.send(http.MethodPost, "/categories", url.Values{"name": {"X"}, "icon": {"rocket"}}, false); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid icon: status=%d", rr.Code)
	}

	rr = app.send(http.MethodDelete, "/categories/"+cats[0].ID, nil, true)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Header().Get("HX-Trigger"), EventLedgerChanged) {
		t.Errorf("delete category: status=%d trigger=%q", rr.Code, rr.Header().Get("HX-Trigger"))
	}
	if rr := app.send(http.MethodDelete, "/categories/"+cats[0].ID, nil, true); rr.Code != http.StatusNotFound {
		t.Errorf("delete unknown category: status=%d", rr.Code)
	}
}

func TestLocalPath(t *testing.T) {
	tests := map[string]string{
		"/":                 "/",
		"/analytics":        "/analytics",
		"//evil.test":       "",
		"https://evil.test": "",
		"/\\evil.test":      "",
		"":                  "",
	}
	for in, want := range tests {
		if got := localPath(in); got != want {
			t.Errorf("localPath(%q) = %q, want %q", in, got, want)
		}
	}
}
