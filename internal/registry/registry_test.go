package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"franchisor/internal/core"
)

func TestDefaultLocationsSorted(t *testing.T) {
	reg := Default()
	locs := reg.Locations()
	if len(locs) != 5 {
		t.Fatalf("expected 5 locations, got %d", len(locs))
	}
	for i := 1; i < len(locs); i++ {
		if locs[i-1] >= locs[i] {
			t.Fatalf("locations not sorted: %v", locs)
		}
	}
}

func TestValidate(t *testing.T) {
	reg := Default()
	cases := []struct {
		key  core.PeriodKey
		want error
	}{
		{core.PeriodKey{Location: "Aylesbury", Year: 2025, Period: "Jul 25"}, nil},
		{core.PeriodKey{Location: "Aylesbury", Year: 2023, Period: "Feb 23"}, nil},
		{core.PeriodKey{Location: "Nowhere", Year: 2025, Period: "Jul 25"}, ErrUnknownLocation},
		{core.PeriodKey{Location: "Oxford East", Year: 2023, Period: "Feb 23"}, ErrInvalidYear},
		{core.PeriodKey{Location: "Oxford East", Year: 2025, Period: "Jan 25"}, ErrInvalidPeriod},
	}
	for i, tc := range cases {
		err := reg.Validate(tc.key)
		if tc.want == nil {
			if err != nil {
				t.Fatalf("case %d: expected ok, got %v", i, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestPeriodsAndYears(t *testing.T) {
	reg := Default()
	years := reg.Years("Aylesbury")
	if len(years) != 3 || years[0] != 2023 || years[2] != 2025 {
		t.Fatalf("Aylesbury years: %v", years)
	}
	periods := reg.Periods("Oxford East", 2025)
	if len(periods) != 8 || periods[0] != "May 25" {
		t.Fatalf("Oxford East periods: %v", periods)
	}
	if got := reg.Periods("Nowhere", 2025); got != nil && len(got) != 0 {
		t.Fatalf("unknown location periods: %v", got)
	}
}

func TestHandle(t *testing.T) {
	reg := New(map[string]Location{
		"With ID": {Document: "Doc", SpreadsheetID: "sheet-123", Years: []int{2025}},
		"No ID":   {Document: "Doc Title Only", Years: []int{2025}},
	})
	if h, err := reg.Handle("With ID"); err != nil || h != "sheet-123" {
		t.Fatalf("Handle With ID: %q %v", h, err)
	}
	if h, err := reg.Handle("No ID"); err != nil || h != "Doc Title Only" {
		t.Fatalf("Handle No ID: %q %v", h, err)
	}
	if _, err := reg.Handle("Missing"); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("Handle Missing: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	body := `{
		"Test Site": {
			"document": "Test Tracker",
			"spreadsheet_id": "abc",
			"years": [2025],
			"periods": {"2025": ["May 25", "Jun 25"]}
		}
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := reg.Validate(core.PeriodKey{Location: "Test Site", Year: 2025, Period: "Jun 25"}); err != nil {
		t.Fatalf("validate loaded: %v", err)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}
