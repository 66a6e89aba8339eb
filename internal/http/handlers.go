package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"franchisor/internal/core"
	applog "franchisor/internal/log"
	"franchisor/internal/present"
	"franchisor/internal/registry"
	"franchisor/internal/sheets"
)

// networkConcurrency caps how many location tabs are fetched in parallel for
// the whole-network view, keeping within the Sheets API per-minute quota.
const networkConcurrency = 4

// selectorsResponse drives the three dashboard dropdowns.
type selectorsResponse struct {
	Locations []string `json:"locations"`
	Years     []int    `json:"years"`
	Periods   []string `json:"periods"`
}

type metricsResponse struct {
	Location         string  `json:"location"`
	Year             int     `json:"year"`
	Period           string  `json:"period"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalDisplay     string  `json:"total_revenue_display"`
	TransactionCount int     `json:"transaction_count"`
	AvgTransaction   float64 `json:"avg_transaction"`
	AvgDisplay       string  `json:"avg_transaction_display"`
	UniqueProducts   int     `json:"unique_products"`
	TopProduct       string  `json:"top_product"`
	DailyAverage     float64 `json:"daily_average"`
	DailyDisplay     string  `json:"daily_average_display"`
}

type seriesResponse struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// networkEntry is one location's latest-period summary for the whole-network
// view. Err carries a short message when that location could not be read;
// one broken tracker must not blank the rest of the estate.
type networkEntry struct {
	Location         string  `json:"location"`
	Year             int     `json:"year"`
	Period           string  `json:"period"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalDisplay     string  `json:"total_revenue_display"`
	TransactionCount int     `json:"transaction_count"`
	Err              string  `json:"error,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	key := s.keyFromQuery(r)
	data := map[string]any{
		"Locations": s.reg.Locations(),
		"Years":     s.reg.Years(key.Location),
		"Periods":   s.reg.Periods(key.Location, key.Year),
		"Selected":  key,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render index", applog.FieldError, err)
	}
}

// handleSelectors returns the valid years and periods for a location so the
// front end can rebuild the dependent dropdowns.
func (s *Server) handleSelectors(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		if names := s.reg.Locations(); len(names) > 0 {
			location = names[0]
		}
	}
	years := s.reg.Years(location)
	if years == nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("unknown location %q", location))
		return
	}
	year := latestYear(years)
	if v := r.URL.Query().Get("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			year = n
		}
	}
	s.respondJSON(w, selectorsResponse{
		Locations: s.reg.Locations(),
		Years:     years,
		Periods:   s.reg.Periods(location, year),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	key := s.keyFromQuery(r)
	table, err := s.loadTable(w, r, key)
	if err != nil {
		return
	}
	m := core.ComputeRevenueMetrics(table)
	s.respondJSON(w, metricsResponse{
		Location:         key.Location,
		Year:             key.Year,
		Period:           key.Period,
		TotalRevenue:     m.TotalRevenue.Pounds(),
		TotalDisplay:     formatPounds(m.TotalRevenue),
		TransactionCount: m.TransactionCount,
		AvgTransaction:   m.AvgTransaction.Pounds(),
		AvgDisplay:       formatPounds(m.AvgTransaction),
		UniqueProducts:   m.UniqueProducts,
		TopProduct:       m.TopProduct,
		DailyAverage:     m.DailyAverage.Pounds(),
		DailyDisplay:     formatPounds(m.DailyAverage),
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	key := s.keyFromQuery(r)
	table, err := s.loadTable(w, r, key)
	if err != nil {
		return
	}
	points := present.DailyTrend(table)
	resp := seriesResponse{Labels: []string{}, Values: []float64{}}
	for _, p := range points {
		resp.Labels = append(resp.Labels, p.Date.Format("02 Jan"))
		resp.Values = append(resp.Values, p.Revenue.Pounds())
	}
	s.respondJSON(w, resp)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	key := s.keyFromQuery(r)
	table, err := s.loadTable(w, r, key)
	if err != nil {
		return
	}
	series := present.ProductSeries(core.BreakdownByProduct(table))
	resp := seriesResponse{Labels: series.Labels, Values: series.Values}
	if resp.Labels == nil {
		resp.Labels = []string{}
	}
	if resp.Values == nil {
		resp.Values = []float64{}
	}
	s.respondJSON(w, resp)
}

// handleNetwork summarizes the latest configured period of every location,
// fetching the tabs concurrently.
func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	locations := s.reg.Locations()
	entries := make([]networkEntry, len(locations))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(networkConcurrency)
	for i, name := range locations {
		g.Go(func() error {
			years := s.reg.Years(name)
			year := latestYear(years)
			periods := s.reg.Periods(name, year)
			entry := networkEntry{Location: name, Year: year}
			if len(periods) == 0 {
				entry.Err = "no periods configured"
				entries[i] = entry
				return nil
			}
			entry.Period = periods[len(periods)-1]

			key := core.PeriodKey{Location: name, Year: year, Period: entry.Period}
			table, err := s.getTable(ctx, key)
			if err != nil && !isNoData(err) {
				entry.Err = "unavailable"
				s.logger.WarnContext(ctx, "Network view fetch failed",
					applog.FieldLocation, name,
					applog.FieldPeriod, entry.Period,
					applog.FieldError, err)
				entries[i] = entry
				return nil
			}
			m := core.ComputeRevenueMetrics(table)
			entry.TotalRevenue = m.TotalRevenue.Pounds()
			entry.TotalDisplay = formatPounds(m.TotalRevenue)
			entry.TransactionCount = m.TransactionCount
			entries[i] = entry
			return nil
		})
	}
	// Workers report per-location failures inline and never return an error.
	_ = g.Wait()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Location < entries[j].Location })
	s.respondJSON(w, map[string]any{"locations": entries})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	key := s.keyFromQuery(r)
	table, err := s.loadTable(w, r, key)
	if err != nil {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", present.ExportFilename(key)))
	if err := present.WriteCSV(w, table); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed streaming CSV export",
			applog.FieldLocation, key.Location,
			applog.FieldPeriod, key.Period,
			applog.FieldError, err)
	}
}

// keyFromQuery builds a PeriodKey from the query string, defaulting to the
// first location and its most recent year and period.
func (s *Server) keyFromQuery(r *http.Request) core.PeriodKey {
	q := r.URL.Query()

	location := q.Get("location")
	if location == "" {
		if names := s.reg.Locations(); len(names) > 0 {
			location = names[0]
		}
	}

	year := 0
	if v := q.Get("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			year = n
		}
	}
	if year == 0 {
		year = latestYear(s.reg.Years(location))
	}

	period := q.Get("period")
	if period == "" {
		if periods := s.reg.Periods(location, year); len(periods) > 0 {
			period = periods[len(periods)-1]
		}
	}

	return core.PeriodKey{Location: location, Year: year, Period: period}
}

// loadTable fetches the table for a key and writes the error response itself
// when the key is invalid or the upstream failed. A missing tab is not an
// error here: it comes back as an empty table.
func (s *Server) loadTable(w http.ResponseWriter, r *http.Request, key core.PeriodKey) (core.TransactionTable, error) {
	table, err := s.getTable(r.Context(), key)
	switch {
	case err == nil:
		return table, nil
	case isNoData(err):
		return core.TransactionTable{}, nil
	case isBadKey(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, err
	default:
		s.logger.ErrorContext(r.Context(), "Failed to load period table",
			applog.FieldLocation, key.Location,
			applog.FieldYear, key.Year,
			applog.FieldPeriod, key.Period,
			applog.FieldError, err)
		s.respondError(w, http.StatusBadGateway, "upstream data source unavailable")
		return nil, err
	}
}

// isNoData reports whether an error means the period simply has no sheet yet.
func isNoData(err error) bool {
	return errors.Is(err, sheets.ErrTabNotFound)
}

func isBadKey(err error) bool {
	return errors.Is(err, registry.ErrUnknownLocation) ||
		errors.Is(err, registry.ErrInvalidYear) ||
		errors.Is(err, registry.ErrInvalidPeriod) ||
		errors.Is(err, core.ErrEmptyLocation) ||
		errors.Is(err, core.ErrInvalidYear) ||
		errors.Is(err, core.ErrEmptyPeriod)
}

func latestYear(years []int) int {
	year := 0
	for _, y := range years {
		if y > year {
			year = y
		}
	}
	return year
}

func (s *Server) respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed encoding JSON response", applog.FieldError, err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
