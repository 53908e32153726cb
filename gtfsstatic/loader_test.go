package gtfsstatic

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anish3343/transit-dashboard/refstore"
)

func buildBundle(t *testing.T, tables map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range tables {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func serveBundle(t *testing.T, bundle []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bundle)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openStore(t *testing.T) *refstore.Store {
	t.Helper()
	store, err := refstore.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRefreshIngestsBundle(t *testing.T) {
	bundle := buildBundle(t, map[string]string{
		"stops.txt": "stop_id,stop_name\n632N,33 St\n632S,33 St\n",
		"trips.txt": "trip_id,route_id,trip_headsign,trip_short_name,direction_id\n" +
			"AFA23GEN-1038-Sunday-00_052150_6..N03R,6,Pelham Bay Park,,0\n",
		"routes.txt": "route_id,route_short_name,route_long_name,route_color,route_text_color\n" +
			"6,6,Lexington Av Local,00933C,FFFFFF\n",
	})
	srv := serveBundle(t, bundle)
	store := openStore(t)

	results := NewLoader(store, map[string]string{"subway": srv.URL}).Refresh(context.Background())
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	res := results[0]
	if res.Error != "" {
		t.Fatalf("refresh error: %s", res.Error)
	}
	if res.Stops != 2 || res.Trips != 1 || res.Routes != 1 {
		t.Errorf("counts = %+v", res)
	}

	// Short name was derived from the trip id suffix during ingest.
	rows, err := store.FindTrips(context.Background(), "subway", []string{"052150_6..N03R"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("derived short-name lookup returned %d rows", len(rows))
	}
	if rows[0].TripHeadsign.String != "Pelham Bay Park" {
		t.Errorf("headsign = %q", rows[0].TripHeadsign.String)
	}
	if rows[0].RouteColor.String != "00933C" {
		t.Errorf("route color = %q", rows[0].RouteColor.String)
	}
}

func TestRefreshMissingTable(t *testing.T) {
	bundle := buildBundle(t, map[string]string{
		"stops.txt": "stop_id,stop_name\n1,Grand Central\n",
		// trips.txt absent
		"routes.txt": "route_id,route_short_name\n1,Hudson\n",
	})
	srv := serveBundle(t, bundle)

	results := NewLoader(openStore(t), map[string]string{"mnr": srv.URL}).Refresh(context.Background())
	if results[0].Error == "" {
		t.Fatal("expected error for missing trips.txt")
	}
}

func TestRefreshIsolatesSystemFailures(t *testing.T) {
	good := serveBundle(t, buildBundle(t, map[string]string{
		"stops.txt":  "stop_id,stop_name\n1,Grand Central\n",
		"trips.txt":  "trip_id,route_id,trip_headsign,trip_short_name,direction_id\n7802,1,Grand Central,,0\n",
		"routes.txt": "route_id,route_short_name,route_long_name,route_color,route_text_color\n1,Hudson,Hudson Line,,\n",
	}))
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	store := openStore(t)
	results := NewLoader(store, map[string]string{
		"mnr":    good.URL,
		"subway": bad.URL,
	}).Refresh(context.Background())

	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	// Outcomes come back in system-key order regardless of map iteration.
	if results[0].System != "mnr" || results[1].System != "subway" {
		t.Errorf("result order = %q, %q; want mnr, subway", results[0].System, results[1].System)
	}
	if results[1].Error == "" {
		t.Error("expected subway bundle failure")
	}
	if results[0].Error != "" {
		t.Errorf("mnr refresh failed: %s", results[0].Error)
	}

	// The good system's rows landed despite the bad one. The mnr short name
	// falls back to the trip id.
	rows, err := store.FindTrips(context.Background(), "mnr", []string{"7802"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("mnr rows = %d", len(rows))
	}
}

func TestRefreshCorruptZip(t *testing.T) {
	srv := serveBundle(t, []byte("this is not a zip archive"))
	results := NewLoader(openStore(t), map[string]string{"bus": srv.URL}).Refresh(context.Background())
	if results[0].Error == "" {
		t.Fatal("expected zip parse error")
	}
}
