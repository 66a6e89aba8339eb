package sheets

import (
	"errors"
	"fmt"
)

// Tagged error variants for the remote source. Callers branch on these with
// errors.Is / errors.As instead of matching message text.
var (
	// ErrDocumentNotFound: the configured spreadsheet does not exist or is
	// not visible to the service account.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrTabNotFound: the document exists but has no worksheet with the
	// requested name. Surfaced to users as "no data for this period".
	ErrTabNotFound = errors.New("worksheet tab not found")
)

// StructuralError reports a tab whose header row cannot key rows reliably
// (duplicate or empty header cells). It is recoverable: callers fall back to
// raw-grid retrieval.
type StructuralError struct {
	Document string
	Tab      string
	Reason   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural header problem in %s!%s: %s", e.Document, e.Tab, e.Reason)
}

// IsStructural reports whether err carries a *StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
