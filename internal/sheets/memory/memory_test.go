package memory

import (
	"context"
	"errors"
	"testing"

	"franchisor/internal/sheets"
)

func TestReadGridAndRecords(t *testing.T) {
	s := New()
	s.SetGrid("doc", "Jul 25", [][]string{
		{"DateTime", "Product", "Quantity", "Amount"},
		{"01/07/2025 10:00:00", "PT Session", "1", "45.00"},
		{"02/07/2025 11:30:00", "Day Pass", "1"},
	})

	ctx := context.Background()
	grid, err := s.ReadGrid(ctx, "doc", "Jul 25")
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	if len(grid) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(grid))
	}

	header, recs, err := s.ReadRecords(ctx, "doc", "Jul 25")
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(header) != 4 || header[0] != "DateTime" {
		t.Fatalf("header: %v", header)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0]["Product"] != "PT Session" {
		t.Fatalf("record keying: %v", recs[0])
	}
	// Short rows are padded with empty strings.
	if v, ok := recs[1]["Amount"]; !ok || v != "" {
		t.Fatalf("short row padding: %v", recs[1])
	}
}

func TestNotFound(t *testing.T) {
	s := New()
	s.SetGrid("doc", "Jul 25", [][]string{{"DateTime", "Product", "Quantity", "Amount"}})

	ctx := context.Background()
	if _, err := s.ReadGrid(ctx, "other", "Jul 25"); !errors.Is(err, sheets.ErrDocumentNotFound) {
		t.Fatalf("expected document not found, got %v", err)
	}
	if _, err := s.ReadGrid(ctx, "doc", "Aug 25"); !errors.Is(err, sheets.ErrTabNotFound) {
		t.Fatalf("expected tab not found, got %v", err)
	}
}

func TestStructuralHeader(t *testing.T) {
	s := New()
	s.SetGrid("doc", "Jul 25", [][]string{
		{"DateTime", "Product", "Quantity", "Amount", "", ""},
		{"01/07/2025 10:00:00", "PT Session", "1", "45.00", "x", "y"},
	})
	_, _, err := s.ReadRecords(context.Background(), "doc", "Jul 25")
	if !sheets.IsStructural(err) {
		t.Fatalf("expected structural error, got %v", err)
	}
	// The raw grid remains readable for the fallback path.
	if _, err := s.ReadGrid(context.Background(), "doc", "Jul 25"); err != nil {
		t.Fatalf("ReadGrid after structural: %v", err)
	}
}
