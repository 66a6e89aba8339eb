// Package google adapts the Google Sheets API to the tabular-source ports.
//
// One Client wraps one authenticated sheets service. The service is built
// once at process start from service-account credentials and injected into
// whatever needs it; there is no package-level cached connection.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"franchisor/internal/sheets"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc *gsheet.Service
}

// Ensure interface conformance
var _ sheets.TabReader = (*Client)(nil)

// New wraps an existing sheets service, mainly for tests.
func New(svc *gsheet.Service) *Client {
	return &Client{svc: svc}
}

// NewFromCredentials builds a read-only client from service-account
// credentials. Exactly one of credentialsJSON or credentialsFile must be
// set; a failure here is an authentication failure and is fatal for the
// process.
func NewFromCredentials(ctx context.Context, credentialsJSON, credentialsFile string) (*Client, error) {
	var creds []byte
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		creds = []byte(credentialsJSON)
	case strings.TrimSpace(credentialsFile) != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ReadGrid fetches the whole tab as raw rows of strings.
func (c *Client) ReadGrid(ctx context.Context, document, tab string) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	// A bare quoted sheet name selects the full used range of the tab.
	rng := fmt.Sprintf("'%s'", strings.ReplaceAll(tab, "'", "''"))
	resp, err := c.svc.Spreadsheets.Values.Get(document, rng).Context(ctx).Do()
	if err != nil {
		return nil, mapAPIError(err, document, tab)
	}
	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		grid = append(grid, toStrings(row))
	}
	return grid, nil
}

// ReadRecords fetches the tab keyed by its header row. Returns a
// *sheets.StructuralError when the header row has duplicate or empty cells.
func (c *Client) ReadRecords(ctx context.Context, document, tab string) ([]string, []map[string]string, error) {
	grid, err := c.ReadGrid(ctx, document, tab)
	if err != nil {
		return nil, nil, err
	}
	return sheets.RecordsFromGrid(document, tab, grid)
}

// mapAPIError folds googleapi failures into the tagged port errors.
func mapAPIError(err error, document, tab string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: %v", sheets.ErrDocumentNotFound, document, err)
		case http.StatusBadRequest:
			// The Values API rejects a range naming a missing tab with 400.
			return fmt.Errorf("%w: %s!%s: %v", sheets.ErrTabNotFound, document, tab, err)
		}
	}
	return fmt.Errorf("read %s!%s: %w", document, tab, err)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
