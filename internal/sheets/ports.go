package sheets

import "context"

// Ports for outbound tabular-source adapters. The remote source is addressed
// by (document handle, worksheet tab name) and is read-only.
type (
	// RecordReader retrieves rows keyed by the tab's header row. The
	// returned header preserves the tab's column order, which consumers
	// relying on positional schemas need alongside the keyed records.
	RecordReader interface {
		ReadRecords(ctx context.Context, document, tab string) (header []string, records []map[string]string, err error)
	}

	// GridReader retrieves the full tab as raw rows of strings.
	GridReader interface {
		ReadGrid(ctx context.Context, document, tab string) ([][]string, error)
	}

	// TabReader combines both retrieval modes over one source.
	TabReader interface {
		RecordReader
		GridReader
	}
)
