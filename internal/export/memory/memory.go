// Package memory provides an in-memory statement writer used in tests and
// when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finbook/internal/export"
)

type Store struct {
	mu   sync.Mutex
	rows []export.StatementRow
}

var _ export.StatementWriter = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, row export.StatementRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []export.StatementRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]export.StatementRow, len(s.rows))
	copy(out, s.rows)
	return out
}
