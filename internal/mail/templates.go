package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"carteira/internal/core"
)

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(`<!doctype html>
<html lang="pt-BR"><body style="font-family:sans-serif;color:#0f4452">
<h2>Bem-vindo(a), {{.Name}}!</h2>
<p>Sua conta na Carteira foi criada com o e-mail <strong>{{.Email}}</strong>.</p>
<p>Registre suas receitas e despesas para acompanhar o saldo e os relatórios mensais.</p>
</body></html>`))

	statementTmpl = template.Must(template.New("statement").Parse(`<!doctype html>
<html lang="pt-BR"><body style="font-family:sans-serif;color:#0f4452">
<h2>Olá, {{.Name}}</h2>
<p>Segue em anexo o seu relatório financeiro dos últimos 6 meses.</p>
<table cellpadding="6">
<tr><td>Total Receitas</td><td style="color:#10b981">{{.Income}}</td></tr>
<tr><td>Total Despesas</td><td style="color:#ef4444">{{.Expense}}</td></tr>
<tr><td><strong>Saldo Total</strong></td><td><strong>{{.Balance}}</strong></td></tr>
</table>
</body></html>`))
)

// Welcome builds the message sent after registration.
func Welcome(u core.User) (Message, error) {
	var buf bytes.Buffer
	p := u.Profile()
	if err := welcomeTmpl.Execute(&buf, p); err != nil {
		return Message{}, fmt.Errorf("render welcome mail: %w", err)
	}
	return Message{To: u.Email, Subject: "Bem-vindo(a) à Carteira", HTML: buf.String()}, nil
}

// Statement builds the monthly statement message with the PDF attached.
func Statement(u core.User, income, expense, balance core.Money, pdfName string, pdf []byte) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		Name                     string
		Income, Expense, Balance string
	}{u.Profile().Name, income.String(), expense.String(), balance.String()}
	if err := statementTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render statement mail: %w", err)
	}
	return Message{
		To:          u.Email,
		Subject:     "Seu relatório financeiro",
		HTML:        buf.String(),
		Attachments: []Attachment{{Name: pdfName, Data: pdf}},
	}, nil
}
