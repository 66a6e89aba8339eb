// Package memory is an in-process tabular source used for tests and for
// running the dashboard without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"franchisor/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	grids map[string]map[string][][]string // document -> tab -> grid
}

// Ensure interface conformance
var _ sheets.TabReader = (*Store)(nil)

func New() *Store {
	return &Store{grids: make(map[string]map[string][][]string)}
}

// SetGrid seeds a tab. The grid's first row is the header.
func (s *Store) SetGrid(document, tab string, grid [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tabs, ok := s.grids[document]
	if !ok {
		tabs = make(map[string][][]string)
		s.grids[document] = tabs
	}
	tabs[tab] = grid
}

func (s *Store) ReadGrid(_ context.Context, document, tab string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tabs, ok := s.grids[document]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sheets.ErrDocumentNotFound, document)
	}
	grid, ok := tabs[tab]
	if !ok {
		return nil, fmt.Errorf("%w: %s!%s", sheets.ErrTabNotFound, document, tab)
	}
	// Copy so callers cannot mutate the seeded data.
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (s *Store) ReadRecords(ctx context.Context, document, tab string) ([]string, []map[string]string, error) {
	grid, err := s.ReadGrid(ctx, document, tab)
	if err != nil {
		return nil, nil, err
	}
	return sheets.RecordsFromGrid(document, tab, grid)
}
