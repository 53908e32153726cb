// Package transit implements the dashboard feed pipeline: fetch a
// GTFS-Realtime snapshot, decode it, enrich trip updates against the static
// schedule reference store, and serve normalized arrivals and service
// alerts over a small JSON API.
package transit

import "github.com/anish3343/transit-dashboard/gtfsrt"

// Arrival is one upcoming stop call, constructed fresh per request and never
// persisted. ArrivalTime is always plain epoch seconds.
type Arrival struct {
	System         string `json:"system"`
	TripID         string `json:"tripId,omitempty"`
	Route          string `json:"route,omitempty"`
	RouteShortName string `json:"routeShortName,omitempty"`
	RouteLongName  string `json:"routeLongName,omitempty"`
	RouteColor     string `json:"routeColor,omitempty"`
	RouteTextColor string `json:"routeTextColor,omitempty"`
	Track          string `json:"track,omitempty"`
	StopID         string `json:"stopId"`
	Label          string `json:"label,omitempty"`
	Destination    string `json:"destination"`
	ArrivalTime    int64  `json:"arrivalTime"`
}

// Alert is one service alert with its affected sub-systems derived from the
// informed entities. Everything else passes through from the feed.
type Alert struct {
	ID              string                   `json:"id"`
	Systems         []string                 `json:"systems"`
	ActivePeriod    []gtfsrt.ActivePeriod    `json:"activePeriod"`
	InformedEntity  []gtfsrt.InformedEntity  `json:"informedEntity"`
	HeaderText      *gtfsrt.TranslatedString `json:"headerText,omitempty"`
	DescriptionText *gtfsrt.TranslatedString `json:"descriptionText,omitempty"`
}
