// Package sheets defines the outbound port for mirroring transactions into
// a spreadsheet. Adapters live in the google and memory subpackages.
package sheets

import (
	"context"

	"carteira/internal/core"
)

// TransactionMirror appends one row per recorded transaction.
type TransactionMirror interface {
	AppendTransaction(ctx context.Context, owner string, t core.Transaction) (rowRef string, err error)
}

// Row is the column layout shared by every adapter:
// Data | Descrição | Categoria | Tipo | Valor | Usuário.
// Rows are appended as USER_ENTERED, so free-text cells go through textCell.
func Row(owner string, t core.Transaction) []any {
	kind := "Receita"
	if t.Type == core.Expense {
		kind = "Despesa"
	}
	return []any{
		core.FormatDateFull(t.Date),
		textCell(t.Description),
		textCell(t.CategoryName()),
		kind,
		core.Money{Cents: t.Signed()}.Reais().StringFixed(2),
		textCell(owner),
	}
}

// textCell quotes values the spreadsheet would otherwise parse as a formula.
func textCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
