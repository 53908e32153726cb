package refstore

import "context"

// Querier is the read surface the Gateway needs. *Store satisfies it; tests
// substitute a counting double.
type Querier interface {
	FindTrips(ctx context.Context, system string, ids []string) ([]TripRow, error)
	FindRoutes(ctx context.Context, system string, ids []string) ([]RouteRow, error)
}

// TripInfo is the merged trip+route metadata for one reference trip. Empty
// strings stand for absent values (null route join).
type TripInfo struct {
	Headsign       string
	RouteShortName string
	RouteLongName  string
	RouteColor     string
	RouteTextColor string
}

// RouteInfo is the display metadata for one reference route.
type RouteInfo struct {
	ShortName string
	LongName  string
	Color     string
	TextColor string
}

// Gateway turns batch identifier sets into lookup maps for the enrichment
// engine.
type Gateway struct {
	q Querier
}

// NewGateway creates a Gateway over an injected Querier.
func NewGateway(q Querier) *Gateway {
	return &Gateway{q: q}
}

// TripLookup resolves trip metadata for a batch of identifiers. The result
// is keyed by both trip_id and trip_short_name (when present) pointing at
// the same merged record, so callers can join by either form without knowing
// which one matched. An empty id set short-circuits without querying.
func (g *Gateway) TripLookup(ctx context.Context, system string, ids []string) (map[string]TripInfo, error) {
	infos := make(map[string]TripInfo)
	if len(ids) == 0 {
		return infos, nil
	}
	rows, err := g.q.FindTrips(ctx, system, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		info := TripInfo{
			Headsign:       row.TripHeadsign.String,
			RouteShortName: row.RouteShortName.String,
			RouteLongName:  row.RouteLongName.String,
			RouteColor:     row.RouteColor.String,
			RouteTextColor: row.RouteTextColor.String,
		}
		infos[row.TripID] = info
		if row.TripShortName.Valid && row.TripShortName.String != "" {
			infos[row.TripShortName.String] = info
		}
	}
	return infos, nil
}

// RouteLookup resolves route metadata for a batch of route identifiers.
// An empty id set short-circuits without querying.
func (g *Gateway) RouteLookup(ctx context.Context, system string, ids []string) (map[string]RouteInfo, error) {
	infos := make(map[string]RouteInfo)
	if len(ids) == 0 {
		return infos, nil
	}
	rows, err := g.q.FindRoutes(ctx, system, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		infos[row.RouteID] = RouteInfo{
			ShortName: row.RouteShortName.String,
			LongName:  row.RouteLongName.String,
			Color:     row.RouteColor.String,
			TextColor: row.RouteTextColor.String,
		}
	}
	return infos, nil
}
