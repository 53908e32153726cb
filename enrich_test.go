package transit

import (
	"sort"
	"testing"

	"github.com/anish3343/transit-dashboard/config"
	"github.com/anish3343/transit-dashboard/gtfsrt"
	"github.com/anish3343/transit-dashboard/refstore"
)

var testStations = []config.Station{
	{StopID: "632N", Label: "33 St (North)", Feed: "subway"},
	{StopID: "632S", Label: "33 St (South)", Feed: "subway"},
}

func tripEntity(id, tripID, routeID string, stops ...gtfsrt.StopTimeUpdate) gtfsrt.Entity {
	return gtfsrt.Entity{
		ID: id,
		TripUpdate: &gtfsrt.TripUpdate{
			TripID:    tripID,
			RouteID:   routeID,
			StopTimes: stops,
		},
	}
}

func TestBuildArrivalsFiltersToWatchedStops(t *testing.T) {
	msg := &gtfsrt.FeedMessage{Entities: []gtfsrt.Entity{
		tripEntity("e1", "trip-1", "6",
			gtfsrt.StopTimeUpdate{StopID: "632N", Arrival: 100},
			gtfsrt.StopTimeUpdate{StopID: "999X", Arrival: 200},
			gtfsrt.StopTimeUpdate{StopID: "632S", Arrival: 300},
		),
		{ID: "v1"}, // vehicle position entity, skipped
	}}

	got := BuildArrivals("subway", "subway", msg, testStations, nil, nil)
	if len(got) != 2 {
		t.Fatalf("arrivals = %d, want 2", len(got))
	}
	if got[0].StopID != "632N" || got[0].Label != "33 St (North)" {
		t.Errorf("arrival[0] = %+v", got[0])
	}
	if got[1].StopID != "632S" {
		t.Errorf("arrival[1] = %+v", got[1])
	}
}

func TestBuildArrivalsMissingTripMatch(t *testing.T) {
	msg := &gtfsrt.FeedMessage{Entities: []gtfsrt.Entity{
		tripEntity("e1", "Z999", "", gtfsrt.StopTimeUpdate{StopID: "632N", Arrival: 100}),
	}}

	got := BuildArrivals("subway", "subway", msg, testStations, map[string]refstore.TripInfo{}, nil)
	if len(got) != 1 {
		t.Fatalf("arrivals = %d, want 1", len(got))
	}
	if got[0].Destination != "" {
		t.Errorf("destination = %q, want empty for missing trip match", got[0].Destination)
	}
}

func TestBuildArrivalsFieldPrecedence(t *testing.T) {
	msg := &gtfsrt.FeedMessage{Entities: []gtfsrt.Entity{
		tripEntity("e1", "trip-1", "6", gtfsrt.StopTimeUpdate{StopID: "632N", Arrival: 100}),
	}}
	trips := map[string]refstore.TripInfo{
		// Trip matched but its route join lacked a color.
		"trip-1": {Headsign: "Pelham Bay Park", RouteShortName: "6"},
	}
	routes := map[string]refstore.RouteInfo{
		"6": {ShortName: "six", LongName: "Lexington Av Local", Color: "00933C"},
	}

	got := BuildArrivals("subway", "subway", msg, testStations, trips, routes)
	if len(got) != 1 {
		t.Fatalf("arrivals = %d, want 1", len(got))
	}
	arr := got[0]
	if arr.RouteShortName != "6" {
		t.Errorf("routeShortName = %q, want trip-joined value to win", arr.RouteShortName)
	}
	if arr.RouteColor != "00933C" {
		t.Errorf("routeColor = %q, want route-map fallback", arr.RouteColor)
	}
	if arr.RouteLongName != "Lexington Av Local" {
		t.Errorf("routeLongName = %q", arr.RouteLongName)
	}
	if arr.Destination != "Pelham Bay Park" {
		t.Errorf("destination = %q", arr.Destination)
	}
}

func TestBuildArrivalsCommuterRailTripKeyAndTrack(t *testing.T) {
	stations := []config.Station{{StopID: "1", Label: "Grand Central", Feed: "mnr"}}
	msg := &gtfsrt.FeedMessage{Entities: []gtfsrt.Entity{
		tripEntity("7802", "internal-id", "1",
			gtfsrt.StopTimeUpdate{StopID: "1", Arrival: 100, Track: "4"}),
	}}
	trips := map[string]refstore.TripInfo{
		"7802": {Headsign: "Grand Central"},
	}

	got := BuildArrivals("mnr", "mnr", msg, stations, trips, nil)
	if len(got) != 1 {
		t.Fatalf("arrivals = %d, want 1", len(got))
	}
	if got[0].TripID != "7802" {
		t.Errorf("tripId = %q, want entity id", got[0].TripID)
	}
	if got[0].Destination != "Grand Central" {
		t.Errorf("destination = %q", got[0].Destination)
	}
	if got[0].Track != "4" {
		t.Errorf("track = %q, want 4", got[0].Track)
	}
}

func TestBuildArrivalsTrackAbsentOutsideCommuterRail(t *testing.T) {
	msg := &gtfsrt.FeedMessage{Entities: []gtfsrt.Entity{
		tripEntity("e1", "trip-1", "6",
			gtfsrt.StopTimeUpdate{StopID: "632N", Arrival: 100, Track: "4"}),
	}}

	got := BuildArrivals("subway", "subway", msg, testStations, nil, nil)
	if got[0].Track != "" {
		t.Errorf("track = %q, want empty outside commuter rail", got[0].Track)
	}
}

func TestBuildArrivalsSorted(t *testing.T) {
	msg := &gtfsrt.FeedMessage{Entities: []gtfsrt.Entity{
		tripEntity("e1", "t1", "", gtfsrt.StopTimeUpdate{StopID: "632N", Arrival: 300}),
		tripEntity("e2", "t2", "", gtfsrt.StopTimeUpdate{StopID: "632S", Arrival: 100}),
		tripEntity("e3", "t3", "", gtfsrt.StopTimeUpdate{StopID: "632N", Arrival: 200}),
		tripEntity("e4", "t4", "", gtfsrt.StopTimeUpdate{StopID: "632S", Arrival: 200}),
	}}

	got := BuildArrivals("subway", "subway", msg, testStations, nil, nil)
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].ArrivalTime < got[j].ArrivalTime }) {
		t.Fatalf("arrivals not sorted: %+v", got)
	}
	// Equal timestamps keep source order.
	if got[1].TripID != "t3" || got[2].TripID != "t4" {
		t.Errorf("tie-break order = %q, %q; want t3, t4", got[1].TripID, got[2].TripID)
	}
}

func TestBuildArrivalsIdempotent(t *testing.T) {
	msg := &gtfsrt.FeedMessage{Entities: []gtfsrt.Entity{
		tripEntity("e1", "t1", "6", gtfsrt.StopTimeUpdate{StopID: "632N", Arrival: 100}),
	}}

	first := BuildArrivals("subway", "subway", msg, testStations, nil, nil)
	second := BuildArrivals("subway", "subway", msg, testStations, nil, nil)
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("repeated enrichment differs: %+v vs %+v", first, second)
	}
}
