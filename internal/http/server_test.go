package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"franchisor/internal/core"
	"franchisor/internal/normalizer"
	"franchisor/internal/registry"
	"franchisor/internal/sheets/memory"
)

func testRegistry() *registry.Registry {
	return registry.New(map[string]registry.Location{
		"Oxford East": {
			Document: "Oxford East Monthly Tracker",
			Years:    []int{2025},
			Periods:  map[int][]string{2025: {"Jun 25", "Jul 25"}},
		},
		"Aylesbury": {
			Document: "Aylesbury Monthly Tracker",
			Years:    []int{2024, 2025},
			Periods:  map[int][]string{2024: {"Dec 24"}, 2025: {"Jan 25", "Feb 25"}},
		},
	})
}

func seededStore() *memory.Store {
	store := memory.New()
	store.SetGrid("Oxford East Monthly Tracker", "Jul 25", [][]string{
		{"Timestamp", "Product", "Quantity", "Amount"},
		{"01/07/2025 09:00:00", "Deep Clean", "1", "£120.00"},
		{"01/07/2025 14:30:00", "Standard Clean", "1", "£45.50"},
		{"02/07/2025 10:00:00", "Deep Clean", "1", "£120.00"},
	})
	store.SetGrid("Aylesbury Monthly Tracker", "Feb 25", [][]string{
		{"Timestamp", "Product", "Quantity", "Amount"},
		{"03/02/2025 11:00:00", "Oven Clean", "1", "£60.00"},
	})
	return store
}

func newTestServer(t *testing.T, store *memory.Store) *Server {
	t.Helper()
	reg := testRegistry()
	norm := normalizer.New(store, reg)
	srv := NewServer(":0", norm, reg, Options{RateLimitRPS: 1000, RateLimitBurst: 1000})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func doGET(srv *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleMetrics(t *testing.T) {
	srv := newTestServer(t, seededStore())

	rec := doGET(srv, "/api/metrics?location=Oxford+East&year=2025&period=Jul+25")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}
	var resp metricsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TransactionCount != 3 {
		t.Fatalf("count: %d", resp.TransactionCount)
	}
	if resp.TotalDisplay != "£285.50" {
		t.Fatalf("total display: %q", resp.TotalDisplay)
	}
	if resp.TopProduct != "Deep Clean" {
		t.Fatalf("top product: %q", resp.TopProduct)
	}
	if resp.UniqueProducts != 2 {
		t.Fatalf("unique products: %d", resp.UniqueProducts)
	}
}

func TestHandleMetricsMissingTabIsEmpty(t *testing.T) {
	srv := newTestServer(t, seededStore())

	// Jun 25 is configured but has no tab yet.
	rec := doGET(srv, "/api/metrics?location=Oxford+East&year=2025&period=Jun+25")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}
	var resp metricsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TransactionCount != 0 || resp.TotalRevenue != 0 {
		t.Fatalf("expected zeros: %+v", resp)
	}
	if resp.TopProduct != core.TopProductNone {
		t.Fatalf("top product: %q", resp.TopProduct)
	}
}

func TestHandleMetricsRejectsUnknownKey(t *testing.T) {
	srv := newTestServer(t, seededStore())

	for _, target := range []string{
		"/api/metrics?location=Swindon&year=2025&period=Jul+25",
		"/api/metrics?location=Oxford+East&year=1999&period=Jul+25",
		"/api/metrics?location=Oxford+East&year=2025&period=Nope",
	} {
		rec := doGET(srv, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", target, rec.Code)
		}
	}
}

func TestHandleTrendGroupsByDay(t *testing.T) {
	srv := newTestServer(t, seededStore())

	rec := doGET(srv, "/api/trend?location=Oxford+East&year=2025&period=Jul+25")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var resp seriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Labels) != 2 {
		t.Fatalf("labels: %v", resp.Labels)
	}
	if resp.Values[0] != 165.50 || resp.Values[1] != 120.00 {
		t.Fatalf("values: %v", resp.Values)
	}
}

func TestHandleProductsOrderedByRevenue(t *testing.T) {
	srv := newTestServer(t, seededStore())

	rec := doGET(srv, "/api/products?location=Oxford+East&year=2025&period=Jul+25")
	var resp seriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"Deep Clean", "Standard Clean"}
	if len(resp.Labels) != len(want) {
		t.Fatalf("labels: %v", resp.Labels)
	}
	for i, label := range want {
		if resp.Labels[i] != label {
			t.Fatalf("labels: %v", resp.Labels)
		}
	}
}

func TestHandleSelectors(t *testing.T) {
	srv := newTestServer(t, seededStore())

	rec := doGET(srv, "/api/selectors?location=Aylesbury&year=2024")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var resp selectorsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Locations) != 2 || resp.Locations[0] != "Aylesbury" {
		t.Fatalf("locations: %v", resp.Locations)
	}
	if len(resp.Periods) != 1 || resp.Periods[0] != "Dec 24" {
		t.Fatalf("periods: %v", resp.Periods)
	}

	rec = doGET(srv, "/api/selectors?location=Swindon")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown location status: %d", rec.Code)
	}
}

func TestHandleNetwork(t *testing.T) {
	store := seededStore()
	srv := newTestServer(t, store)

	rec := doGET(srv, "/api/network")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var resp struct {
		Locations []networkEntry `json:"locations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Locations) != 2 {
		t.Fatalf("entries: %+v", resp.Locations)
	}
	// Sorted by location name.
	if resp.Locations[0].Location != "Aylesbury" || resp.Locations[1].Location != "Oxford East" {
		t.Fatalf("order: %+v", resp.Locations)
	}
	// Aylesbury's latest period is Feb 25 with one seeded row.
	ayl := resp.Locations[0]
	if ayl.Period != "Feb 25" || ayl.TransactionCount != 1 || ayl.Err != "" {
		t.Fatalf("aylesbury: %+v", ayl)
	}
	// Oxford East's latest period (Jul 25) is seeded too.
	oxf := resp.Locations[1]
	if oxf.TransactionCount != 3 {
		t.Fatalf("oxford: %+v", oxf)
	}
}

func TestHandleExport(t *testing.T) {
	srv := newTestServer(t, seededStore())

	rec := doGET(srv, "/export?location=Oxford+East&year=2025&period=Jul+25")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type: %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Oxford_East_Jul_25_transactions.csv") {
		t.Fatalf("disposition: %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines: %d\n%s", len(lines), rec.Body.String())
	}
	if !strings.HasPrefix(lines[0], "timestamp,product,quantity,amount") {
		t.Fatalf("header: %q", lines[0])
	}
}

func TestTableCaching(t *testing.T) {
	store := seededStore()
	srv := newTestServer(t, store)

	target := "/api/metrics?location=Oxford+East&year=2025&period=Jul+25"
	doGET(srv, target)

	// Replace the tab; a cached server must keep serving the old numbers.
	store.SetGrid("Oxford East Monthly Tracker", "Jul 25", [][]string{
		{"Timestamp", "Product", "Quantity", "Amount"},
		{"05/07/2025 09:00:00", "Carpet Clean", "1", "£999.00"},
	})

	rec := doGET(srv, target)
	var resp metricsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TransactionCount != 3 {
		t.Fatalf("expected cached table, got %+v", resp)
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t, seededStore())

	rec := doGET(srv, "/api/metrics?location=Oxford+East&year=2025&period=Jul+25")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("missing CSP")
	}
}

func TestRateLimiting(t *testing.T) {
	reg := testRegistry()
	norm := normalizer.New(seededStore(), reg)
	srv := NewServer(":0", norm, reg, Options{RateLimitRPS: 0.001, RateLimitBurst: 1})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	target := "/api/metrics?location=Oxford+East&year=2025&period=Jul+25"
	if rec := doGET(srv, target); rec.Code != http.StatusOK {
		t.Fatalf("first request: %d", rec.Code)
	}
	if rec := doGET(srv, target); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, seededStore())
	for _, target := range []string{"/healthz", "/readyz"} {
		if rec := doGET(srv, target); rec.Code != http.StatusOK {
			t.Fatalf("%s: %d", target, rec.Code)
		}
	}
}

func TestHandleIndexRendersSelectors(t *testing.T) {
	srv := newTestServer(t, seededStore())

	rec := doGET(srv, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Oxford East", "Aylesbury", "trend-chart", "products-chart"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q", want)
		}
	}
}

func TestHandleOverviewPartial(t *testing.T) {
	srv := newTestServer(t, seededStore())

	rec := doGET(srv, "/ui/overview?location=Oxford+East&year=2025&period=Jul+25")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"£285.50", "Deep Clean", "Below target"} {
		if !strings.Contains(body, want) {
			t.Fatalf("overview missing %q in:\n%s", want, body)
		}
	}

	rec = doGET(srv, "/ui/overview?location=Oxford+East&year=2025&period=Jun+25")
	if !strings.Contains(rec.Body.String(), "No data for this period") {
		t.Fatalf("empty state missing:\n%s", rec.Body.String())
	}
}

func TestFormatPounds(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "£0.00"},
		{5, "£0.05"},
		{4550, "£45.50"},
		{123456789, "£1,234,567.89"},
		{-4550, "-£45.50"},
	}
	for _, tt := range tests {
		if got := formatPounds(core.Money{Cents: tt.cents}); got != tt.want {
			t.Fatalf("formatPounds(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{700_000, "band-excellent"},
		{600_000, "band-approaching"},
		{450_000, "band-approaching"},
		{400_000, "band-below"},
		{0, "band-below"},
	}
	for _, tt := range tests {
		if got := bandFor(core.Money{Cents: tt.cents}).Class; got != tt.want {
			t.Fatalf("bandFor(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
