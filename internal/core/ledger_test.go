package core

import (
	"testing"
	"time"
)

func tx(id string, typ TransactionType, cents int64, day int) Transaction {
	return Transaction{
		ID:          id,
		Description: id,
		Type:        typ,
		Amount:      Money{Cents: cents},
		Date:        time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestLedgerTotals(t *testing.T) {
	l := NewLedger([]Transaction{
		tx("a", Income, 10000, 1),
		tx("b", Expense, 2500, 2),
		tx("c", Expense, 1500, 3),
		tx("d", Income, 500, 4),
	}, nil)

	if l.Income().Cents != 10500 {
		t.Fatalf("income = %d", l.Income().Cents)
	}
	if l.Expense().Cents != 4000 {
		t.Fatalf("expense = %d", l.Expense().Cents)
	}
	if l.Balance().Cents != l.Income().Cents-l.Expense().Cents {
		t.Fatalf("balance invariant broken: %d", l.Balance().Cents)
	}
}

func TestNewLedgerOrdering(t *testing.T) {
	l := NewLedger(
		[]Transaction{tx("old", Income, 1, 1), tx("new", Income, 1, 20), tx("mid", Income, 1, 10)},
		[]Category{{ID: "2", Name: "mercado"}, {ID: "1", Name: "Aluguel"}},
	)
	if l.Transactions[0].ID != "new" || l.Transactions[2].ID != "old" {
		t.Fatalf("transactions not newest-first: %+v", l.Transactions)
	}
	if l.Categories[0].Name != "Aluguel" {
		t.Fatalf("categories not sorted by name: %+v", l.Categories)
	}
}

func TestLedgerMutations(t *testing.T) {
	l := NewLedger([]Transaction{tx("a", Expense, 100, 1)}, []Category{{ID: "c1", Name: "Casa"}})
	snapshot := l.Clone()

	l.Prepend(tx("b", Income, 300, 2))
	if l.Transactions[0].ID != "b" || len(l.Transactions) != 2 {
		t.Fatalf("prepend failed: %+v", l.Transactions)
	}

	upd := tx("a", Expense, 999, 1)
	if !l.Replace(upd) {
		t.Fatalf("replace should find a")
	}
	if got, _ := l.Transaction("a"); got.Amount.Cents != 999 {
		t.Fatalf("replace did not apply: %+v", got)
	}
	if l.Replace(tx("zzz", Expense, 1, 1)) {
		t.Fatalf("replace of unknown id should report false")
	}

	l.RemoveTransaction("a")
	if _, ok := l.Transaction("a"); ok {
		t.Fatalf("remove failed")
	}

	l.AppendCategory(Category{ID: "c2", Name: "Academia"})
	if l.Categories[len(l.Categories)-1].ID != "c2" {
		t.Fatalf("category should be appended at the end")
	}
	l.RemoveCategory("c1")
	if len(l.Categories) != 1 {
		t.Fatalf("remove category failed: %+v", l.Categories)
	}

	if len(snapshot.Transactions) != 1 || snapshot.Transactions[0].Amount.Cents != 100 {
		t.Fatalf("clone was affected by mutations: %+v", snapshot.Transactions)
	}
}

func TestLedgerRecent(t *testing.T) {
	l := NewLedger([]Transaction{tx("a", Income, 1, 1), tx("b", Income, 1, 2), tx("c", Income, 1, 3)}, nil)
	if got := l.Recent(2); len(got) != 2 || got[0].ID != "c" {
		t.Fatalf("recent = %+v", got)
	}
	if got := l.Recent(10); len(got) != 3 {
		t.Fatalf("recent overflow = %d", len(got))
	}
}

func TestFormatDates(t *testing.T) {
	d := time.Date(2025, 7, 4, 9, 5, 0, 0, time.UTC)
	if FormatTime(d) != "09:05" || FormatDateShort(d) != "04/07" || FormatDateFull(d) != "04/07/2025" {
		t.Fatalf("format mismatch: %s %s %s", FormatTime(d), FormatDateShort(d), FormatDateFull(d))
	}
}
