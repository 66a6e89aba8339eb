package present

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"franchisor/internal/core"
)

// exportHeader is the fixed column order of the CSV download.
var exportHeader = []string{"timestamp", "product", "quantity", "amount", "location", "year", "period"}

// WriteCSV streams the table as comma-separated text, one row per
// transaction, header first.
func WriteCSV(w io.Writer, table core.TransactionTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range table {
		row := []string{
			tx.Timestamp.Format("02/01/2006 15:04:05"),
			tx.Product,
			tx.Quantity,
			strconv.FormatFloat(tx.Amount.Pounds(), 'f', 2, 64),
			tx.Location,
			strconv.Itoa(tx.Year),
			tx.Period,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename names the download after the location and period.
func ExportFilename(key core.PeriodKey) string {
	name := fmt.Sprintf("%s_%s_transactions.csv", key.Location, key.Period)
	return strings.ReplaceAll(name, " ", "_")
}
