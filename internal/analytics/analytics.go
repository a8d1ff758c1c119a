// Package analytics derives the cash-flow and category views from a list of
// transactions. Everything here is pure and recomputed on every request.
package analytics

import (
	"math"
	"sort"
	"time"

	"carteira/internal/core"
)

type Period string

const (
	SixMonths Period = "6months"
	Year      Period = "year"
)

// ParsePeriod maps a query value to a Period, defaulting to SixMonths.
func ParsePeriod(s string) Period {
	if Period(s) == Year {
		return Year
	}
	return SixMonths
}

// Label is the pt-BR description of the period used in reports.
func (p Period) Label() string {
	if p == Year {
		return "Anual"
	}
	return "Últimos 6 Meses"
}

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthLabel returns the short pt-BR label for m.
func MonthLabel(m time.Month) string {
	return monthLabels[m-1]
}

type MonthFlow struct {
	Year    int
	Month   time.Month
	Label   string
	Income  core.Money
	Expense core.Money
}

// CashFlow buckets transactions by calendar month. Year covers January to
// December of now's year; SixMonths covers the six months ending at now's
// month, reaching back into the previous year when needed.
func CashFlow(txs []core.Transaction, p Period, now time.Time) []MonthFlow {
	var start time.Time
	n := 6
	if p == Year {
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		n = 12
	} else {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)
	}

	flows := make([]MonthFlow, n)
	index := make(map[[2]int]int, n)
	for i := range flows {
		m := start.AddDate(0, i, 0)
		flows[i] = MonthFlow{Year: m.Year(), Month: m.Month(), Label: MonthLabel(m.Month())}
		index[[2]int{m.Year(), int(m.Month())}] = i
	}

	for _, t := range txs {
		d := t.Date.In(now.Location())
		i, ok := index[[2]int{d.Year(), int(d.Month())}]
		if !ok {
			continue
		}
		switch t.Type {
		case core.Income:
			flows[i].Income.Cents += t.Amount.Cents
		case core.Expense:
			flows[i].Expense.Cents += t.Amount.Cents
		}
	}
	return flows
}

// Peak returns the largest income or expense across flows, for bar scaling.
func Peak(flows []MonthFlow) int64 {
	var peak int64
	for _, f := range flows {
		peak = max(peak, f.Income.Cents, f.Expense.Cents)
	}
	return peak
}

// Palette colours are handed to categories in first-seen order.
var Palette = []string{"#ef4444", "#f59e0b", "#10b981", "#3b82f6", "#8b5cf6", "#ec4899", "#6366f1"}

const placeholderColor = "#e2e8f0"

type CategorySlice struct {
	Name        string
	Value       core.Money
	Color       string
	Placeholder bool
}

// CategoryBreakdown sums expenses per category, largest first. With no
// expenses it returns a single placeholder slice so the chart still renders.
func CategoryBreakdown(txs []core.Transaction) []CategorySlice {
	var slices []CategorySlice
	pos := map[string]int{}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		name := t.CategoryName()
		i, ok := pos[name]
		if !ok {
			i = len(slices)
			pos[name] = i
			slices = append(slices, CategorySlice{Name: name, Color: Palette[i%len(Palette)]})
		}
		slices[i].Value.Cents += t.Amount.Cents
	}

	if len(slices) == 0 {
		return []CategorySlice{{Name: "Sem lançamentos", Value: core.Money{Cents: 1}, Color: placeholderColor, Placeholder: true}}
	}

	sort.SliceStable(slices, func(i, j int) bool { return slices[i].Value.Cents > slices[j].Value.Cents })
	return slices
}

type Summary struct {
	Income  core.Money
	Expense core.Money
	Balance core.Money
}

func Summarize(txs []core.Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.Income.Cents += t.Amount.Cents
		case core.Expense:
			s.Expense.Cents += t.Amount.Cents
		}
	}
	s.Balance.Cents = s.Income.Cents - s.Expense.Cents
	return s
}

// Share returns value as a whole percentage of total, clamped to 0..100.
// Non-zero values never drop below 2 so their bar stays visible.
func Share(value, total int64) int {
	if total <= 0 || value <= 0 {
		return 0
	}
	pct := int(math.Round(float64(value) / float64(total) * 100))
	if pct < 2 {
		return 2
	}
	if pct > 100 {
		return 100
	}
	return pct
}
