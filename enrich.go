package transit

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/anish3343/transit-dashboard/config"
	"github.com/anish3343/transit-dashboard/gtfsrt"
	"github.com/anish3343/transit-dashboard/refstore"
)

// BuildArrivals correlates a decoded feed snapshot with the reference lookup
// maps and emits the sorted arrival list for the watched stations. feedKey is
// echoed into Arrival.System; system selects the trip-key and track policy.
func BuildArrivals(feedKey, system string, msg *gtfsrt.FeedMessage, stations []config.Station,
	trips map[string]refstore.TripInfo, routes map[string]refstore.RouteInfo) []Arrival {

	policy := gtfsrt.PolicyFor(system)

	labels := make(map[string]string, len(stations))
	for _, st := range stations {
		labels[st.StopID] = st.Label
	}

	arrivals := make([]Arrival, 0, len(stations))
	for _, entity := range msg.Entities {
		if entity.Kind() != gtfsrt.KindTripUpdate {
			continue
		}
		tu := entity.TripUpdate

		tripKey := policy.TripKey(entity)
		trip, tripMatched := trips[tripKey]
		if tripKey != "" && !tripMatched {
			// Expected for extra or unscheduled service.
			log.Debug().Str("system", system).Str("tripKey", tripKey).
				Msg("no reference trip for realtime trip key")
		}
		route := routes[tu.RouteID]

		for _, call := range tu.StopTimes {
			label, watched := labels[call.StopID]
			if !watched {
				continue
			}
			arr := Arrival{
				System:         feedKey,
				TripID:         tripKey,
				Route:          tu.RouteID,
				RouteShortName: firstNonEmpty(trip.RouteShortName, route.ShortName),
				RouteLongName:  firstNonEmpty(trip.RouteLongName, route.LongName),
				RouteColor:     firstNonEmpty(trip.RouteColor, route.Color),
				RouteTextColor: firstNonEmpty(trip.RouteTextColor, route.TextColor),
				StopID:         call.StopID,
				Label:          label,
				Destination:    trip.Headsign,
				ArrivalTime:    call.Arrival,
			}
			if policy.TrackExtension {
				arr.Track = call.Track
			}
			arrivals = append(arrivals, arr)
		}
	}

	// Stable keeps entity-then-stop-update order for equal timestamps.
	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].ArrivalTime < arrivals[j].ArrivalTime
	})
	return arrivals
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
