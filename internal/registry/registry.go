// Package registry holds the static mapping from franchise location to its
// tracker spreadsheet and the set of selectable reporting periods.
//
// The registry is read-only input: it is seeded with the known locations and
// can be replaced wholesale from a JSON file, but it is never derived or
// mutated at runtime.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"franchisor/internal/core"
)

var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrInvalidYear     = errors.New("year not configured for location")
	ErrInvalidPeriod   = errors.New("period not configured for location and year")
)

// Location describes one franchise site and its tracker document.
type Location struct {
	// Document is the human-readable spreadsheet title.
	Document string `json:"document"`
	// SpreadsheetID is the API identifier of the tracker document. May be
	// empty when running against the in-memory backend, where Document is
	// used as the handle instead.
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	// Years lists the selectable years, ascending.
	Years []int `json:"years"`
	// Periods maps a year to its ordered worksheet tab labels.
	Periods map[int][]string `json:"periods"`
}

// Registry maps location name to its configuration.
type Registry struct {
	locations map[string]Location
	order     []string
}

// New builds a registry from the given location map. Iteration order for
// Locations() is sorted by name.
func New(locations map[string]Location) *Registry {
	order := make([]string, 0, len(locations))
	for name := range locations {
		order = append(order, name)
	}
	sort.Strings(order)
	return &Registry{locations: locations, order: order}
}

// Default returns the registry seeded with the current franchise estate.
func Default() *Registry {
	months2025 := []string{"May 25", "Jun 25", "Jul 25", "Aug 25", "Sep 25", "Oct 25", "Nov 25", "Dec 25"}
	return New(map[string]Location{
		"Oxford East": {
			Document: "Oxford East Monthly Tracker",
			Years:    []int{2025},
			Periods:  map[int][]string{2025: months2025},
		},
		"Milton Keynes": {
			Document: "Milton Keynes Monthly Tracker",
			Years:    []int{2025},
			Periods:  map[int][]string{2025: months2025},
		},
		"Berkhamsted": {
			Document: "Berkhamsted Monthly Revenue Tracker",
			Years:    []int{2025},
			Periods:  map[int][]string{2025: months2025},
		},
		"Basingstoke": {
			Document: "Basingstoke Monthly Tracker",
			Years:    []int{2025},
			Periods:  map[int][]string{2025: months2025},
		},
		"Aylesbury": {
			Document: "Aylesbury Monthly Tracker",
			Years:    []int{2023, 2024, 2025},
			Periods: map[int][]string{
				2023: {"Feb 23", "Mar 23", "Apr 23", "May 23", "Jun 23", "Jul 23", "Aug 23", "Sep 23", "Oct 23", "Nov 23", "Dec 23"},
				2024: {"Jan 24", "Feb 24", "Mar 24", "Apr 24", "May 24", "Jun 24", "Jul 24", "Aug 24", "Sep 24", "Oct 24", "Nov 24", "Dec 24"},
				2025: {"Jan 25", "Feb 25", "Mar 25", "Apr 25", "May 25", "Jun 25", "Jul 25", "Aug 25", "Sep 25", "Oct 25", "Nov 25", "Dec 25"},
			},
		},
	})
}

// LoadFile reads a registry from a JSON file mapping location name to its
// Location entry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	var locations map[string]Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("parse registry file %s: %w", path, err)
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("registry file %s: no locations", path)
	}
	return New(locations), nil
}

// Locations returns the location names in stable sorted order.
func (r *Registry) Locations() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Years returns the selectable years for a location, or nil if unknown.
func (r *Registry) Years(location string) []int {
	loc, ok := r.locations[location]
	if !ok {
		return nil
	}
	out := make([]int, len(loc.Years))
	copy(out, loc.Years)
	return out
}

// Periods returns the ordered period labels for a location and year.
func (r *Registry) Periods(location string, year int) []string {
	loc, ok := r.locations[location]
	if !ok {
		return nil
	}
	periods := loc.Periods[year]
	out := make([]string, len(periods))
	copy(out, periods)
	return out
}

// Handle resolves the remote document handle for a location: the spreadsheet
// ID when configured, otherwise the document title.
func (r *Registry) Handle(location string) (string, error) {
	loc, ok := r.locations[location]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLocation, location)
	}
	if loc.SpreadsheetID != "" {
		return loc.SpreadsheetID, nil
	}
	return loc.Document, nil
}

// Validate checks that a PeriodKey addresses a configured tab.
func (r *Registry) Validate(key core.PeriodKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	loc, ok := r.locations[key.Location]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLocation, key.Location)
	}
	periods, ok := loc.Periods[key.Year]
	if !ok {
		return fmt.Errorf("%w: %s %d", ErrInvalidYear, key.Location, key.Year)
	}
	for _, p := range periods {
		if p == key.Period {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %d %q", ErrInvalidPeriod, key.Location, key.Year, key.Period)
}
