package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// PeriodKey identifies one addressable sheet tab: a location plus a
	// year and the period label used as the worksheet name (e.g. "Jul 25").
	PeriodKey struct {
		Location string
		Year     int
		Period   string
	}

	Money struct {
		Cents int64
	}

	// Transaction is one normalized sale record. Rows are immutable once
	// built by the normalizer and live only for the duration of a request.
	Transaction struct {
		Timestamp time.Time
		Product   string
		Quantity  string // carried through for export, unused downstream
		Amount    Money
		Location  string
		Year      int
		Period    string
	}

	// TransactionTable is the ordered set of transactions for one PeriodKey.
	TransactionTable []Transaction
)

var (
	ErrEmptyLocation = errors.New("empty location")
	ErrInvalidYear   = errors.New("invalid year")
	ErrEmptyPeriod   = errors.New("empty period label")
)

func (k PeriodKey) Validate() error {
	if strings.TrimSpace(k.Location) == "" {
		return ErrEmptyLocation
	}
	if k.Year < 2000 || k.Year > 2100 {
		return ErrInvalidYear
	}
	if strings.TrimSpace(k.Period) == "" {
		return ErrEmptyPeriod
	}
	return nil
}

// String renders the key for logging and error messages.
func (k PeriodKey) String() string {
	return k.Location + " " + k.Period
}

// TotalCents sums the amount column. Zero for an empty table.
func (t TransactionTable) TotalCents() int64 {
	var total int64
	for _, tx := range t {
		total += tx.Amount.Cents
	}
	return total
}
