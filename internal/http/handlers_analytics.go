package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"carteira/internal/analytics"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/report"
)

type periodOption struct {
	Value    analytics.Period
	Label    string
	Selected bool
}

type flowBar struct {
	analytics.MonthFlow
	IncomePct  int
	ExpensePct int
}

type sliceRow struct {
	analytics.CategorySlice
	Pct int
}

type analyticsData struct {
	Period  analytics.Period
	Label   string
	Options []periodOption
	Summary analytics.Summary
	Flows   []flowBar
	Slices  []sliceRow
	Donut   template.CSS

	// Transactions is the full history, newest first.
	Transactions []core.Transaction
	Categories   []core.Category
}

func periodOptions(p analytics.Period) []periodOption {
	return []periodOption{
		{Value: analytics.SixMonths, Label: "6 meses", Selected: p == analytics.SixMonths},
		{Value: analytics.Year, Label: "Ano", Selected: p == analytics.Year},
	}
}

// donutGradient builds the conic-gradient for the category chart.
func donutGradient(slices []analytics.CategorySlice) template.CSS {
	var total int64
	for _, sl := range slices {
		total += sl.Value.Cents
	}
	if total <= 0 {
		return ""
	}
	var stops []string
	var acc int64
	for _, sl := range slices {
		from := float64(acc) / float64(total) * 100
		acc += sl.Value.Cents
		to := float64(acc) / float64(total) * 100
		stops = append(stops, fmt.Sprintf("%s %s%% %s%%", sl.Color,
			strconv.FormatFloat(from, 'f', 2, 64), strconv.FormatFloat(to, 'f', 2, 64)))
	}
	return template.CSS("background: conic-gradient(" + strings.Join(stops, ", ") + ")")
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	u := mustUser(r)
	p := ParsePeriod(r.URL.Query())

	l, err := s.ledger.Load(r.Context(), u.ID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load analytics", log.FieldPeriod, p, log.FieldError, err)
		pg := s.newPage(r, "Análises", "analytics", analyticsData{Period: p, Label: p.Label(), Options: periodOptions(p)})
		pg.Error = "Não foi possível carregar suas transações."
		s.render(w, r, http.StatusOK, "analytics.html", pg)
		return
	}

	now := s.now()
	flows := analytics.CashFlow(l.Transactions, p, now)
	peak := analytics.Peak(flows)
	bars := make([]flowBar, len(flows))
	for i, f := range flows {
		bars[i] = flowBar{
			MonthFlow:  f,
			IncomePct:  analytics.Share(f.Income.Cents, peak),
			ExpensePct: analytics.Share(f.Expense.Cents, peak),
		}
	}

	slices := analytics.CategoryBreakdown(l.Transactions)
	var expenseTotal int64
	for _, sl := range slices {
		if !sl.Placeholder {
			expenseTotal += sl.Value.Cents
		}
	}
	rows := make([]sliceRow, len(slices))
	for i, sl := range slices {
		rows[i] = sliceRow{CategorySlice: sl, Pct: analytics.Share(sl.Value.Cents, expenseTotal)}
	}

	data := analyticsData{
		Period:  p,
		Label:   p.Label(),
		Options: periodOptions(p),
		Summary: analytics.Summarize(l.Transactions),
		Flows:   bars,
		Slices:  rows,
		Donut:   donutGradient(slices),

		Transactions: l.Transactions,
		Categories:   l.Categories,
	}
	s.render(w, r, http.StatusOK, "analytics.html", s.newPage(r, "Análises", "analytics", data))
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	u := mustUser(r)
	p := ParsePeriod(r.URL.Query())
	logger := log.FromContext(r.Context())

	l, err := s.ledger.Load(r.Context(), u.ID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load ledger for export", log.FieldPeriod, p, log.FieldError, err)
		InternalServerError("Não foi possível gerar o relatório").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, report.Build(l, p, s.now())); err != nil {
		logger.ErrorContext(r.Context(), "Failed to render PDF", log.FieldOperation, log.OpExport, log.FieldPeriod, p, log.FieldError, err)
		InternalServerError("Não foi possível gerar o relatório").Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Report exported", log.FieldOperation, log.OpExport, log.FieldPeriod, p, "bytes", buf.Len())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename(p)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
