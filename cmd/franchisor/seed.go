package main

import (
	"fmt"
	"math/rand"
	"time"

	"franchisor/internal/registry"
	mem "franchisor/internal/sheets/memory"
)

var demoProducts = []string{
	"Standard Clean", "Deep Clean", "End of Tenancy", "Carpet Clean", "Oven Clean",
}

// seedDemoData fills the in-memory backend with plausible tracker tabs for
// every configured location and period, so the dashboard is explorable
// without Google credentials. Seeded per-location so restarts reproduce the
// same numbers.
func seedDemoData(store *mem.Store, reg *registry.Registry) {
	header := []string{"Timestamp", "Product", "Quantity", "Amount"}

	for _, name := range reg.Locations() {
		rng := rand.New(rand.NewSource(int64(len(name)) * 7919))
		for _, year := range reg.Years(name) {
			for _, period := range reg.Periods(name, year) {
				start, err := periodStart(period)
				if err != nil {
					continue
				}
				grid := [][]string{header}
				rows := 40 + rng.Intn(80)
				for i := 0; i < rows; i++ {
					ts := start.Add(time.Duration(rng.Intn(28*24)) * time.Hour).
						Add(time.Duration(rng.Intn(60)) * time.Minute)
					product := demoProducts[rng.Intn(len(demoProducts))]
					amount := 25 + rng.Float64()*160
					grid = append(grid, []string{
						ts.Format("02/01/2006 15:04:05"),
						product,
						"1",
						fmt.Sprintf("£%.2f", amount),
					})
				}
				if doc, err := reg.Handle(name); err == nil {
					store.SetGrid(doc, period, grid)
				}
			}
		}
	}
}

// periodStart parses a tab label like "Jul 25" into the first day of that
// month.
func periodStart(period string) (time.Time, error) {
	return time.Parse("Jan 06", period)
}
