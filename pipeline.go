package transit

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc"

	"github.com/anish3343/transit-dashboard/config"
	"github.com/anish3343/transit-dashboard/gtfsrt"
	"github.com/anish3343/transit-dashboard/internal/metrics"
	"github.com/anish3343/transit-dashboard/refstore"
)

const alertsFeedKey = "service_alerts"

type feedFetcher interface {
	Fetch(ctx context.Context, feedKey string) ([]byte, error)
}

type schemaResolver interface {
	SchemaFor(ctx context.Context, system string) *gtfsrt.Schema
}

type referenceGateway interface {
	TripLookup(ctx context.Context, system string, ids []string) (map[string]refstore.TripInfo, error)
	RouteLookup(ctx context.Context, system string, ids []string) (map[string]refstore.RouteInfo, error)
}

// Pipeline runs the fetch-decode-enrich cycle for one request. It holds no
// per-request state; every invocation works on its own snapshot and lookup
// maps.
type Pipeline struct {
	cfg      *config.AppConfig
	feeds    map[string]config.FeedConfig
	fetcher  feedFetcher
	resolver schemaResolver
	gateway  referenceGateway
	metrics  *metrics.Metrics
}

// NewPipeline wires the pipeline from its collaborators. m may be nil.
func NewPipeline(cfg *config.AppConfig, fetcher feedFetcher, resolver schemaResolver, gateway referenceGateway, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		feeds:    config.Feeds,
		fetcher:  fetcher,
		resolver: resolver,
		gateway:  gateway,
		metrics:  m,
	}
}

func (p *Pipeline) fetch(ctx context.Context, feedKey string) ([]byte, error) {
	raw, err := p.fetcher.Fetch(ctx, feedKey)
	if p.metrics != nil {
		p.metrics.ObserveFeedFetch(feedKey, err)
	}
	return raw, err
}

// Arrivals fetches one realtime feed and returns the enriched arrival list
// for the stations watching that feed.
func (p *Pipeline) Arrivals(ctx context.Context, feedKey string) ([]Arrival, error) {
	feed, ok := p.feeds[feedKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gtfsrt.ErrUnknownFeed, feedKey)
	}
	stations := p.cfg.StationsForFeed(feedKey)

	raw, err := p.fetch(ctx, feedKey)
	if err != nil {
		return nil, err
	}
	msg, err := gtfsrt.NewDecoder(p.resolver.SchemaFor(ctx, feed.System)).Decode(raw)
	if err != nil {
		return nil, err
	}

	tripIDs, routeIDs := collectIdentifiers(msg, feed.System, stations)

	// Independent read queries; run them side by side.
	var (
		trips    map[string]refstore.TripInfo
		routes   map[string]refstore.RouteInfo
		tripErr  error
		routeErr error
	)
	var wg conc.WaitGroup
	wg.Go(func() { trips, tripErr = p.gateway.TripLookup(ctx, feed.System, tripIDs) })
	wg.Go(func() { routes, routeErr = p.gateway.RouteLookup(ctx, feed.System, routeIDs) })
	wg.Wait()
	if tripErr != nil {
		return nil, fmt.Errorf("trip lookup: %w", tripErr)
	}
	if routeErr != nil {
		return nil, fmt.Errorf("route lookup: %w", routeErr)
	}

	return BuildArrivals(feedKey, feed.System, msg, stations, trips, routes), nil
}

// Alerts fetches the service alerts feed and returns the processed alert
// list.
func (p *Pipeline) Alerts(ctx context.Context) ([]Alert, error) {
	raw, err := p.fetch(ctx, alertsFeedKey)
	if err != nil {
		return nil, err
	}
	msg, err := gtfsrt.NewDecoder(gtfsrt.Generic()).Decode(raw)
	if err != nil {
		return nil, err
	}
	return BuildAlerts(msg), nil
}

// collectIdentifiers gathers the trip keys and route ids to resolve against
// the reference store. Only entities with at least one watched stop call
// contribute, so uninteresting trips never reach the database.
func collectIdentifiers(msg *gtfsrt.FeedMessage, system string, stations []config.Station) (tripIDs, routeIDs []string) {
	policy := gtfsrt.PolicyFor(system)
	watched := make(map[string]bool, len(stations))
	for _, st := range stations {
		watched[st.StopID] = true
	}

	seenTrips := make(map[string]bool)
	seenRoutes := make(map[string]bool)
	for _, entity := range msg.Entities {
		if entity.Kind() != gtfsrt.KindTripUpdate {
			continue
		}
		relevant := false
		for _, call := range entity.TripUpdate.StopTimes {
			if watched[call.StopID] {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}
		if key := policy.TripKey(entity); key != "" && !seenTrips[key] {
			seenTrips[key] = true
			tripIDs = append(tripIDs, key)
		}
		if rid := entity.TripUpdate.RouteID; rid != "" && !seenRoutes[rid] {
			seenRoutes[rid] = true
			routeIDs = append(routeIDs, rid)
		}
	}
	return tripIDs, routeIDs
}
