package core

import "sort"

// daysPerPeriod is the fixed divisor for the daily average figure. Every
// period is treated as 30 days regardless of calendar length; this matches
// the established reporting convention and must not silently change.
const daysPerPeriod = 30

// TopProductNone is reported when a table has no rows to rank.
const TopProductNone = "N/A"

type (
	// RevenueMetrics is a derived, read-only snapshot for one period.
	// It is recomputed on every query and never cached inside core.
	RevenueMetrics struct {
		TotalRevenue     Money
		TransactionCount int
		AvgTransaction   Money
		UniqueProducts   int
		TopProduct       string
		DailyAverage     Money
	}

	// ProductStat aggregates one product's rows.
	ProductStat struct {
		Product          string
		TotalRevenue     Money
		TransactionCount int
		AvgValue         Money
	}

	// ProductBreakdown is sorted by total revenue descending; ties are
	// broken by product name ascending so output stays deterministic.
	ProductBreakdown []ProductStat
)

// ComputeRevenueMetrics derives summary statistics from a table.
// Pure function: no I/O, no mutation of the input.
func ComputeRevenueMetrics(table TransactionTable) RevenueMetrics {
	if len(table) == 0 {
		return RevenueMetrics{TopProduct: TopProductNone}
	}

	total := table.TotalCents()
	count := int64(len(table))

	byProduct := map[string]int64{}
	for _, tx := range table {
		byProduct[tx.Product] += tx.Amount.Cents
	}

	// Rank by summed revenue; among equal sums the lexicographically
	// smallest product name wins so repeated runs agree.
	names := make([]string, 0, len(byProduct))
	for name := range byProduct {
		names = append(names, name)
	}
	sort.Strings(names)
	top := TopProductNone
	var best int64
	for i, name := range names {
		if i == 0 || byProduct[name] > best {
			top = name
			best = byProduct[name]
		}
	}

	return RevenueMetrics{
		TotalRevenue:     Money{Cents: total},
		TransactionCount: int(count),
		AvgTransaction:   divideCents(total, count),
		UniqueProducts:   len(byProduct),
		TopProduct:       top,
		DailyAverage:     divideCents(total, daysPerPeriod),
	}
}

// BreakdownByProduct groups rows by product and computes per-product
// sum, count and mean of the amount column.
func BreakdownByProduct(table TransactionTable) ProductBreakdown {
	if len(table) == 0 {
		return nil
	}

	sums := map[string]int64{}
	counts := map[string]int64{}
	for _, tx := range table {
		sums[tx.Product] += tx.Amount.Cents
		counts[tx.Product]++
	}

	out := make(ProductBreakdown, 0, len(sums))
	for name, sum := range sums {
		out = append(out, ProductStat{
			Product:          name,
			TotalRevenue:     Money{Cents: sum},
			TransactionCount: int(counts[name]),
			AvgValue:         divideCents(sum, counts[name]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue.Cents != out[j].TotalRevenue.Cents {
			return out[i].TotalRevenue.Cents > out[j].TotalRevenue.Cents
		}
		return out[i].Product < out[j].Product
	})
	return out
}
