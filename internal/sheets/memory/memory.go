// Package memory is an in-process TransactionMirror. The worker falls back
// to it when no spreadsheet is configured, so rows are still visible in logs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"carteira/internal/core"
	ports "carteira/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows [][]any
}

var _ ports.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendTransaction(_ context.Context, owner string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, ports.Row(owner, t))
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.rows...)
}
