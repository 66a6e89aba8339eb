// Package present shapes normalized tables and metrics into chart-ready
// series and export-ready flat data. It owns no business logic.
package present

import (
	"sort"
	"time"

	"franchisor/internal/core"
)

type (
	// TrendPoint is one day's summed revenue.
	TrendPoint struct {
		Date    time.Time
		Revenue core.Money
	}

	// BarSeries is a label-aligned value series for a bar chart.
	BarSeries struct {
		Labels []string
		Values []float64
	}

	// RawRow is the display subset of a transaction.
	RawRow struct {
		Timestamp time.Time
		Product   string
		Amount    core.Money
	}
)

// DailyTrend groups rows by calendar date, sums the amounts and returns the
// points sorted ascending by date. An empty table yields an empty series;
// chart renderers are expected to cope with zero points.
func DailyTrend(table core.TransactionTable) []TrendPoint {
	if len(table) == 0 {
		return nil
	}
	byDay := map[time.Time]int64{}
	for _, tx := range table {
		day := tx.Timestamp.Truncate(24 * time.Hour)
		byDay[day] += tx.Amount.Cents
	}
	points := make([]TrendPoint, 0, len(byDay))
	for day, cents := range byDay {
		points = append(points, TrendPoint{Date: day, Revenue: core.Money{Cents: cents}})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

// ProductSeries renders a breakdown as a bar series of product against
// total revenue, preserving the breakdown's order.
func ProductSeries(breakdown core.ProductBreakdown) BarSeries {
	s := BarSeries{
		Labels: make([]string, 0, len(breakdown)),
		Values: make([]float64, 0, len(breakdown)),
	}
	for _, stat := range breakdown {
		s.Labels = append(s.Labels, stat.Product)
		s.Values = append(s.Values, stat.TotalRevenue.Pounds())
	}
	return s
}

// RawView projects the table onto its display columns, newest first.
func RawView(table core.TransactionTable) []RawRow {
	rows := make([]RawRow, 0, len(table))
	for _, tx := range table {
		rows = append(rows, RawRow{Timestamp: tx.Timestamp, Product: tx.Product, Amount: tx.Amount})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp.After(rows[j].Timestamp) })
	return rows
}
