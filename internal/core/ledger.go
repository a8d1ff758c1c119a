package core

import (
	"sort"
	"strings"
)

// Ledger is the per-user working set: every loaded transaction and category.
type Ledger struct {
	Transactions []Transaction
	Categories   []Category
}

// NewLedger sorts transactions by date (newest first) and categories by name.
func NewLedger(txs []Transaction, cats []Category) Ledger {
	l := Ledger{
		Transactions: append([]Transaction(nil), txs...),
		Categories:   append([]Category(nil), cats...),
	}
	sort.SliceStable(l.Transactions, func(i, j int) bool {
		return l.Transactions[i].Date.After(l.Transactions[j].Date)
	})
	sort.SliceStable(l.Categories, func(i, j int) bool {
		return strings.ToLower(l.Categories[i].Name) < strings.ToLower(l.Categories[j].Name)
	})
	return l
}

// Clone returns a copy whose slices can be mutated independently.
func (l Ledger) Clone() Ledger {
	return Ledger{
		Transactions: append([]Transaction(nil), l.Transactions...),
		Categories:   append([]Category(nil), l.Categories...),
	}
}

func (l Ledger) Income() Money {
	var total int64
	for _, t := range l.Transactions {
		if t.Type == Income {
			total += t.Amount.Cents
		}
	}
	return Money{Cents: total}
}

func (l Ledger) Expense() Money {
	var total int64
	for _, t := range l.Transactions {
		if t.Type == Expense {
			total += t.Amount.Cents
		}
	}
	return Money{Cents: total}
}

// Balance is income minus expense over the loaded transactions.
func (l Ledger) Balance() Money {
	return Money{Cents: l.Income().Cents - l.Expense().Cents}
}

// Transaction looks up a transaction by id.
func (l Ledger) Transaction(id string) (Transaction, bool) {
	for _, t := range l.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// Recent returns at most n transactions from the head of the list.
func (l Ledger) Recent(n int) []Transaction {
	if n <= 0 || n >= len(l.Transactions) {
		return l.Transactions
	}
	return l.Transactions[:n]
}

// Prepend puts a freshly created transaction at the head of the list.
func (l *Ledger) Prepend(t Transaction) {
	l.Transactions = append([]Transaction{t}, l.Transactions...)
}

// Replace swaps the transaction with the same id, keeping its position.
func (l *Ledger) Replace(t Transaction) bool {
	for i := range l.Transactions {
		if l.Transactions[i].ID == t.ID {
			l.Transactions[i] = t
			return true
		}
	}
	return false
}

func (l *Ledger) RemoveTransaction(id string) {
	out := l.Transactions[:0:0]
	for _, t := range l.Transactions {
		if t.ID != id {
			out = append(out, t)
		}
	}
	l.Transactions = out
}

func (l *Ledger) AppendCategory(c Category) {
	l.Categories = append(l.Categories, c)
}

func (l *Ledger) RemoveCategory(id string) {
	out := l.Categories[:0:0]
	for _, c := range l.Categories {
		if c.ID != id {
			out = append(out, c)
		}
	}
	l.Categories = out
}
