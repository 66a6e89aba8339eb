// Package normalizer turns raw spreadsheet tabs into typed transaction
// tables.
//
// The column contract is positional, not name-based: whatever the header
// row says, the first four columns of a tracker tab are timestamp, product,
// quantity and amount, in that order. Columns past the fourth are treated
// as noise and discarded.
package normalizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"franchisor/internal/core"
	"franchisor/internal/registry"
	"franchisor/internal/sheets"
)

// timestampLayout matches the tracker export format (dd/mm/yyyy hh:mm:ss).
const timestampLayout = "02/01/2006 15:04:05"

// canonicalColumns is the fixed positional schema of a tracker tab.
const canonicalColumns = 4

// defaultTimeout bounds one remote fetch. The upstream API has no SLA for
// slow tabs, so a stuck call must not hang the request.
const defaultTimeout = 15 * time.Second

// Normalizer fetches and normalizes one period's rows.
type Normalizer struct {
	src     sheets.TabReader
	reg     *registry.Registry
	timeout time.Duration
}

func New(src sheets.TabReader, reg *registry.Registry) *Normalizer {
	return &Normalizer{src: src, reg: reg, timeout: defaultTimeout}
}

// WithTimeout overrides the per-fetch timeout, mainly for tests.
func (n *Normalizer) WithTimeout(d time.Duration) *Normalizer {
	n.timeout = d
	return n
}

// Normalize returns the transaction table for one PeriodKey.
//
// Failures never escape as panics: the result is always a usable (possibly
// empty) table plus a tagged error describing what went wrong. A missing
// tab comes back as sheets.ErrTabNotFound so callers can present it as "no
// data for this period" rather than a failure.
func (n *Normalizer) Normalize(ctx context.Context, key core.PeriodKey) (core.TransactionTable, error) {
	if err := n.reg.Validate(key); err != nil {
		return core.TransactionTable{}, err
	}
	document, err := n.reg.Handle(key.Location)
	if err != nil {
		return core.TransactionTable{}, err
	}

	header, rows, err := n.fetch(ctx, document, key.Period)
	if err != nil {
		return core.TransactionTable{}, err
	}
	// A tab narrower than the canonical schema has no usable data: this is
	// a hard rejection, not a partial success.
	if len(header) < canonicalColumns {
		slog.InfoContext(ctx, "Tab narrower than canonical schema, treating as empty",
			"document", document, "tab", key.Period, "columns", len(header))
		return core.TransactionTable{}, nil
	}

	table := make(core.TransactionTable, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		ts, err := time.Parse(timestampLayout, row[0])
		if err != nil {
			// An unparsable timestamp invalidates the whole row.
			dropped++
			continue
		}
		cents, ok := core.CoerceAmountCents(row[3])
		if !ok {
			// An unparsable amount does not: the row stays, at zero.
			cents = 0
		}
		table = append(table, core.Transaction{
			Timestamp: ts,
			Product:   row[1],
			Quantity:  row[2],
			Amount:    core.Money{Cents: cents},
			Location:  key.Location,
			Year:      key.Year,
			Period:    key.Period,
		})
	}
	if dropped > 0 {
		slog.InfoContext(ctx, "Dropped rows with unparsable timestamps",
			"document", document, "tab", key.Period, "dropped", dropped, "kept", len(table))
	}
	return table, nil
}

// fetch retrieves one tab, preferring header-keyed records and falling back
// to the raw grid when the header row is structurally unusable. It retries
// a generic fetch failure once; not-found and structural conditions are
// definitive and never retried.
func (n *Normalizer) fetch(ctx context.Context, document, tab string) ([]string, [][]string, error) {
	header, rows, err := n.fetchRecords(ctx, document, tab)
	if err == nil {
		return header, rows, nil
	}
	if sheets.IsStructural(err) {
		slog.WarnContext(ctx, "Header-keyed retrieval failed, falling back to raw grid",
			"document", document, "tab", tab, "error", err)
		return n.fetchGrid(ctx, document, tab)
	}
	if retriable(err) {
		slog.WarnContext(ctx, "Fetch failed, retrying once",
			"document", document, "tab", tab, "error", err)
		if header, rows, retryErr := n.fetchRecords(ctx, document, tab); retryErr == nil {
			return header, rows, nil
		} else if sheets.IsStructural(retryErr) {
			return n.fetchGrid(ctx, document, tab)
		}
	}
	return nil, nil, err
}

func (n *Normalizer) fetchRecords(ctx context.Context, document, tab string) ([]string, [][]string, error) {
	cctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	header, records, err := n.src.ReadRecords(cctx, document, tab)
	if err != nil {
		return nil, nil, err
	}
	// Flatten records back to positional rows; the schema is positional
	// and the header text itself carries no meaning here.
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = rec[h]
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// fetchGrid is the raw-grid fallback: take the header row, truncate to the
// canonical column count, and zip every data row against it, padding short
// rows with empty strings.
func (n *Normalizer) fetchGrid(ctx context.Context, document, tab string) ([]string, [][]string, error) {
	cctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	grid, err := n.src.ReadGrid(cctx, document, tab)
	if err != nil {
		return nil, nil, fmt.Errorf("raw-grid fallback: %w", err)
	}
	if len(grid) == 0 {
		return nil, nil, nil
	}
	header := grid[0]
	if len(header) > canonicalColumns {
		header = header[:canonicalColumns]
	}
	rows := make([][]string, 0, len(grid)-1)
	for _, raw := range grid[1:] {
		row := make([]string, len(header))
		for i := range header {
			if i < len(raw) {
				row[i] = raw[i]
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// retriable reports whether a fetch error is worth one more attempt.
// Not-found conditions are stable answers, not transient faults.
func retriable(err error) bool {
	if errors.Is(err, sheets.ErrDocumentNotFound) || errors.Is(err, sheets.ErrTabNotFound) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
