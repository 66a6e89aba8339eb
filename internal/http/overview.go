package http

import (
	"net/http"
	"strconv"
	"strings"

	"franchisor/internal/core"
	applog "franchisor/internal/log"
	"franchisor/internal/present"
)

// Performance band thresholds for one period's total revenue, in pence.
const (
	bandExcellentCents   = 600_000
	bandApproachingCents = 400_000
)

type performanceBand struct {
	Label string
	Class string
}

// bandFor classifies a period total against the franchise targets.
func bandFor(total core.Money) performanceBand {
	switch {
	case total.Cents > bandExcellentCents:
		return performanceBand{Label: "Excellent performance", Class: "band-excellent"}
	case total.Cents > bandApproachingCents:
		return performanceBand{Label: "Approaching target", Class: "band-approaching"}
	default:
		return performanceBand{Label: "Below target", Class: "band-below"}
	}
}

type overviewRow struct {
	Timestamp string
	Product   string
	Amount    string
}

type overviewProduct struct {
	Product          string
	TotalRevenue     string
	TransactionCount int
	AvgValue         string
}

type overviewData struct {
	Key       core.PeriodKey
	Empty     bool
	NoDataMsg string

	TotalRevenue     string
	TransactionCount int
	AvgTransaction   string
	UniqueProducts   int
	TopProduct       string
	DailyAverage     string

	Band      performanceBand
	Breakdown []overviewProduct
	Raw       []overviewRow
}

// handleOverview renders the summary partial for one period: headline
// figures, the performance band, the per-product table and the raw rows.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	key := s.keyFromQuery(r)
	table, err := s.loadTable(w, r, key)
	if err != nil {
		return
	}

	data := overviewData{Key: key}
	if len(table) == 0 {
		data.Empty = true
		data.NoDataMsg = "No data for this period yet."
	}

	m := core.ComputeRevenueMetrics(table)
	data.TotalRevenue = formatPounds(m.TotalRevenue)
	data.TransactionCount = m.TransactionCount
	data.AvgTransaction = formatPounds(m.AvgTransaction)
	data.UniqueProducts = m.UniqueProducts
	data.TopProduct = m.TopProduct
	data.DailyAverage = formatPounds(m.DailyAverage)
	data.Band = bandFor(m.TotalRevenue)

	for _, stat := range core.BreakdownByProduct(table) {
		data.Breakdown = append(data.Breakdown, overviewProduct{
			Product:          stat.Product,
			TotalRevenue:     formatPounds(stat.TotalRevenue),
			TransactionCount: stat.TransactionCount,
			AvgValue:         formatPounds(stat.AvgValue),
		})
	}
	for _, row := range present.RawView(table) {
		data.Raw = append(data.Raw, overviewRow{
			Timestamp: row.Timestamp.Format("02/01/2006 15:04"),
			Product:   row.Product,
			Amount:    formatPounds(row.Amount),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "overview.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render overview", applog.FieldError, err)
	}
}

// formatPounds renders pence as a pound figure with thousands separators,
// e.g. 123456789 -> "£1,234,567.89".
func formatPounds(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	return sign + "£" + b.String() + "." + pad2(frac)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
