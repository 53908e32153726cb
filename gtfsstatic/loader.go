// Package gtfsstatic ingests published static GTFS bundles into the
// reference store. Each sub-system's bundle is a zip of CSV tables; only
// stops, trips and routes are kept.
package gtfsstatic

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/anish3343/transit-dashboard/gtfsrt"
	"github.com/anish3343/transit-dashboard/refstore"
)

const maxBundleBytes = 256 * 1024 * 1024

type stopRow struct {
	StopID   string `csv:"stop_id"`
	StopName string `csv:"stop_name"`
}

type tripRow struct {
	TripID        string `csv:"trip_id"`
	RouteID       string `csv:"route_id"`
	TripHeadsign  string `csv:"trip_headsign"`
	TripShortName string `csv:"trip_short_name"`
	DirectionID   string `csv:"direction_id"`
}

type routeRow struct {
	RouteID        string `csv:"route_id"`
	RouteShortName string `csv:"route_short_name"`
	RouteLongName  string `csv:"route_long_name"`
	RouteColor     string `csv:"route_color"`
	RouteTextColor string `csv:"route_text_color"`
}

// Result is the per-system outcome of one refresh. A failed system leaves
// its previously loaded reference rows untouched.
type Result struct {
	System string `json:"system"`
	Stops  int    `json:"stops"`
	Trips  int    `json:"trips"`
	Routes int    `json:"routes"`
	Error  string `json:"error,omitempty"`
}

// Loader downloads and ingests static schedule bundles.
type Loader struct {
	store      *refstore.Store
	urls       map[string]string
	httpClient *http.Client
}

// NewLoader creates a Loader writing into store. urls maps sub-system key to
// bundle URL (normally config.StaticGTFSURLs).
func NewLoader(store *refstore.Store, urls map[string]string) *Loader {
	return &Loader{
		store: store,
		urls:  urls,
		// Bundles run to tens of megabytes; allow a slow origin.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Refresh ingests every configured bundle sequentially, in system-key order
// so outcomes are deterministic. Failures are per-system: one bad bundle
// never aborts the others.
func (l *Loader) Refresh(ctx context.Context) []Result {
	systems := make([]string, 0, len(l.urls))
	for system := range l.urls {
		systems = append(systems, system)
	}
	sort.Strings(systems)

	results := make([]Result, 0, len(systems))
	for _, system := range systems {
		res := l.refreshSystem(ctx, system, l.urls[system])
		if res.Error != "" {
			log.Error().Str("system", system).Str("error", res.Error).Msg("static GTFS refresh failed")
		} else {
			log.Info().Str("system", system).
				Int("stops", res.Stops).Int("trips", res.Trips).Int("routes", res.Routes).
				Msg("static GTFS refreshed")
		}
		results = append(results, res)
	}
	return results
}

func (l *Loader) refreshSystem(ctx context.Context, system, url string) Result {
	res := Result{System: system}

	archive, err := l.download(ctx, url)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	stops, err := parseTable[stopRow](archive, "stops.txt")
	if err != nil {
		res.Error = err.Error()
		return res
	}
	trips, err := parseTable[tripRow](archive, "trips.txt")
	if err != nil {
		res.Error = err.Error()
		return res
	}
	routes, err := parseTable[routeRow](archive, "routes.txt")
	if err != nil {
		res.Error = err.Error()
		return res
	}

	policy := gtfsrt.PolicyFor(system)

	stopRecords := make([]refstore.StopRecord, 0, len(stops))
	for _, s := range stops {
		stopRecords = append(stopRecords, refstore.StopRecord{StopID: s.StopID, StopName: s.StopName})
	}
	tripRecords := make([]refstore.TripRecord, 0, len(trips))
	for _, t := range trips {
		tripRecords = append(tripRecords, refstore.TripRecord{
			TripID:        t.TripID,
			RouteID:       t.RouteID,
			TripHeadsign:  t.TripHeadsign,
			TripShortName: policy.ShortName(t.TripID, t.TripShortName),
			DirectionID:   t.DirectionID,
		})
	}
	routeRecords := make([]refstore.RouteRecord, 0, len(routes))
	for _, r := range routes {
		routeRecords = append(routeRecords, refstore.RouteRecord{
			RouteID:        r.RouteID,
			RouteShortName: r.RouteShortName,
			RouteLongName:  r.RouteLongName,
			RouteColor:     r.RouteColor,
			RouteTextColor: r.RouteTextColor,
		})
	}

	if err := l.store.UpsertStops(ctx, system, stopRecords); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := l.store.UpsertTrips(ctx, system, tripRecords); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := l.store.UpsertRoutes(ctx, system, routeRecords); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Stops = len(stopRecords)
	res.Trips = len(tripRecords)
	res.Routes = len(routeRecords)
	return res
}

func (l *Loader) download(ctx context.Context, url string) (*zip.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bundle download returned HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBundleBytes))
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("opening bundle zip: %w", err)
	}
	return archive, nil
}

// parseTable reads one CSV table out of the bundle. Unknown columns are
// ignored; a missing file is an error since all three tables are required.
func parseTable[T any](archive *zip.Reader, name string) ([]T, error) {
	f, err := archive.Open(name)
	if err != nil {
		return nil, fmt.Errorf("bundle missing %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	var rows []T
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return rows, nil
}
