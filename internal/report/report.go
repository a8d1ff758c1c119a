// Package report renders the financial statement PDF.
package report

import (
	"fmt"
	"io"
	"time"

	"carteira/internal/analytics"
	"carteira/internal/core"

	"github.com/go-pdf/fpdf"
)

// Report is everything that goes into one statement.
type Report struct {
	GeneratedAt  time.Time
	Period       analytics.Period
	Summary      analytics.Summary
	Flows        []analytics.MonthFlow
	Transactions []core.Transaction
}

// Build assembles a report from the user's ledger. The summary covers every
// loaded transaction; the cash flow covers the period.
func Build(l core.Ledger, p analytics.Period, now time.Time) Report {
	return Report{
		GeneratedAt:  now,
		Period:       p,
		Summary:      analytics.Summarize(l.Transactions),
		Flows:        analytics.CashFlow(l.Transactions, p, now),
		Transactions: l.Transactions,
	}
}

// Filename is the download name for a report of period p.
func Filename(p analytics.Period) string {
	return fmt.Sprintf("relatorio-financeiro-%s.pdf", p)
}

type rgb struct{ r, g, b int }

var (
	petrol = rgb{15, 68, 82}
	grey   = rgb{100, 100, 100}
	black  = rgb{0, 0, 0}
	red    = rgb{239, 68, 68}
	green  = rgb{16, 185, 129}
	stripe = rgb{245, 245, 245}
)

const (
	margin    = 14.0
	rowHeight = 8.0
)

type writer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) color(c rgb) { w.pdf.SetTextColor(c.r, c.g, c.b) }

func (w *writer) text(width, h float64, s, align string) {
	w.pdf.CellFormat(width, h, w.tr(s), "", 1, align, false, 0, "")
}

// Write renders r as an A4 PDF to out.
func Write(out io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, 15, margin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Relatório Financeiro", true)
	pdf.SetCreator("carteira", true)
	pdf.AddPage()

	w := &writer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pageWidth, _ := pdf.GetPageSize()
	content := pageWidth - 2*margin

	pdf.SetFont("Helvetica", "", 22)
	w.color(petrol)
	w.text(content, 10, "Relatório Financeiro", "C")

	pdf.SetFont("Helvetica", "", 10)
	w.color(grey)
	w.text(content, 5, "Gerado em: "+core.FormatDateFull(r.GeneratedAt), "C")
	w.text(content, 5, "Filtro: "+r.Period.Label(), "C")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 16)
	w.color(black)
	w.text(content, 8, "Resumo Geral", "L")
	pdf.SetFont("Helvetica", "", 12)
	w.text(content, 7, "Total Receitas: "+r.Summary.Income.String(), "L")
	w.text(content, 7, "Total Despesas: "+r.Summary.Expense.String(), "L")
	pdf.SetFont("Helvetica", "B", 12)
	w.text(content, 7, "Saldo Total: "+r.Summary.Balance.String(), "L")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 16)
	w.text(content, 8, "Fluxo de Caixa", "L")
	flowCols := []float64{content / 3, content / 3, content / 3}
	w.header(flowCols, "Mês", "Receita", "Despesa")
	for i, f := range r.Flows {
		w.row(flowCols, i, nil, f.Label, f.Income.String(), f.Expense.String())
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 16)
	w.color(black)
	w.text(content, 8, "Histórico Detalhado", "L")
	histCols := []float64{26, content - 26 - 40 - 36, 40, 36}
	w.header(histCols, "Data", "Descrição", "Categoria", "Valor")
	for i, t := range r.Transactions {
		sign, c := "+", green
		if t.Type == core.Expense {
			sign, c = "-", red
		}
		w.row(histCols, i, &c,
			core.FormatDateFull(t.Date),
			w.fit(t.Description, histCols[1]),
			w.fit(t.CategoryName(), histCols[2]),
			sign+" "+t.Amount.String(),
		)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (w *writer) header(cols []float64, titles ...string) {
	w.pdf.SetFont("Helvetica", "B", 10)
	w.pdf.SetFillColor(petrol.r, petrol.g, petrol.b)
	w.pdf.SetTextColor(255, 255, 255)
	for i, title := range titles {
		w.pdf.CellFormat(cols[i], rowHeight, w.tr(title), "", 0, "L", true, 0, "")
	}
	w.pdf.Ln(-1)
}

// row writes a striped table row; when last is set the final column is bold
// and drawn in that colour.
func (w *writer) row(cols []float64, n int, last *rgb, cells ...string) {
	fill := n%2 == 1
	w.pdf.SetFillColor(stripe.r, stripe.g, stripe.b)
	for i, cell := range cells {
		w.pdf.SetFont("Helvetica", "", 10)
		w.color(black)
		if last != nil && i == len(cells)-1 {
			w.pdf.SetFont("Helvetica", "B", 10)
			w.color(*last)
		}
		w.pdf.CellFormat(cols[i], rowHeight, w.tr(cell), "", 0, "L", fill, 0, "")
	}
	w.pdf.Ln(-1)
}

// fit shortens s with an ellipsis until it fits in width (minus padding).
func (w *writer) fit(s string, width float64) string {
	limit := width - 2
	if w.pdf.GetStringWidth(w.tr(s)) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if w.pdf.GetStringWidth(w.tr(candidate)) <= limit {
			return candidate
		}
	}
	return ""
}
