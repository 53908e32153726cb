package transit

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/anish3343/transit-dashboard/config"
	"github.com/anish3343/transit-dashboard/gtfsrt"
	"github.com/anish3343/transit-dashboard/internal/metrics"
	"github.com/anish3343/transit-dashboard/refstore"
)

type fakeFetcher struct {
	payloads map[string][]byte
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, feedKey string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, ok := f.payloads[feedKey]
	if !ok {
		return nil, gtfsrt.ErrUnknownFeed
	}
	return raw, nil
}

type genericResolver struct{}

func (genericResolver) SchemaFor(ctx context.Context, system string) *gtfsrt.Schema {
	return gtfsrt.Generic()
}

type recordingGateway struct {
	tripIDs  []string
	routeIDs []string
	trips    map[string]refstore.TripInfo
	routes   map[string]refstore.RouteInfo
}

func (g *recordingGateway) TripLookup(ctx context.Context, system string, ids []string) (map[string]refstore.TripInfo, error) {
	g.tripIDs = ids
	return g.trips, nil
}

func (g *recordingGateway) RouteLookup(ctx context.Context, system string, ids []string) (map[string]refstore.RouteInfo, error) {
	g.routeIDs = ids
	return g.routes, nil
}

func subwayFeedBytes(t *testing.T) []byte {
	t.Helper()
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfsrtpb.FeedEntity{
			{
				Id: proto.String("e1"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String("052150_6..N03R"), RouteId: proto.String("6")},
					StopTimeUpdate: []*gtfsrtpb.TripUpdate_StopTimeUpdate{
						{StopId: proto.String("632N"), Arrival: &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(200)}},
					},
				},
			},
			{
				// Nothing at a watched stop: must not reach the gateway.
				Id: proto.String("e2"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String("offroute"), RouteId: proto.String("7")},
					StopTimeUpdate: []*gtfsrtpb.TripUpdate_StopTimeUpdate{
						{StopId: proto.String("999X"), Arrival: &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(100)}},
					},
				},
			},
		},
	}
	raw, err := proto.Marshal(fm)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func testPipelineConfig() *config.AppConfig {
	return &config.AppConfig{
		Stations: []config.Station{
			{StopID: "632N", Label: "33 St (North)", Feed: "subway"},
		},
	}
}

func TestPipelineArrivals(t *testing.T) {
	gateway := &recordingGateway{
		trips:  map[string]refstore.TripInfo{"052150_6..N03R": {Headsign: "Pelham Bay Park"}},
		routes: map[string]refstore.RouteInfo{"6": {Color: "00933C"}},
	}
	fetcher := &fakeFetcher{payloads: map[string][]byte{"subway": subwayFeedBytes(t)}}
	p := NewPipeline(testPipelineConfig(), fetcher, genericResolver{}, gateway, metrics.New())

	got, err := p.Arrivals(context.Background(), "subway")
	if err != nil {
		t.Fatalf("Arrivals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("arrivals = %d, want 1", len(got))
	}
	arr := got[0]
	if arr.Destination != "Pelham Bay Park" || arr.RouteColor != "00933C" || arr.ArrivalTime != 200 {
		t.Errorf("arrival = %+v", arr)
	}

	// Only identifiers from entities touching watched stops were resolved.
	if !reflect.DeepEqual(gateway.tripIDs, []string{"052150_6..N03R"}) {
		t.Errorf("trip ids = %v", gateway.tripIDs)
	}
	if !reflect.DeepEqual(gateway.routeIDs, []string{"6"}) {
		t.Errorf("route ids = %v", gateway.routeIDs)
	}
}

func TestPipelineArrivalsUnknownFeed(t *testing.T) {
	p := NewPipeline(testPipelineConfig(), &fakeFetcher{}, genericResolver{}, &recordingGateway{}, nil)
	_, err := p.Arrivals(context.Background(), "tram")
	if !errors.Is(err, gtfsrt.ErrUnknownFeed) {
		t.Fatalf("err = %v, want ErrUnknownFeed", err)
	}
}

func TestPipelineArrivalsFetchFailure(t *testing.T) {
	p := NewPipeline(testPipelineConfig(), &fakeFetcher{err: errors.New("HTTP 503")}, genericResolver{}, &recordingGateway{}, nil)
	if _, err := p.Arrivals(context.Background(), "subway"); err == nil {
		t.Fatal("expected fetch error to surface")
	}
}

func TestPipelineAlerts(t *testing.T) {
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfsrtpb.FeedEntity{
			{
				Id: proto.String("a1"),
				Alert: &gtfsrtpb.Alert{
					InformedEntity: []*gtfsrtpb.EntitySelector{
						{AgencyId: proto.String("MNR")},
					},
				},
			},
		},
	}
	raw, err := proto.Marshal(fm)
	if err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(testPipelineConfig(),
		&fakeFetcher{payloads: map[string][]byte{"service_alerts": raw}},
		genericResolver{}, &recordingGateway{}, nil)

	alerts, err := p.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != "a1" {
		t.Fatalf("alerts = %+v", alerts)
	}
	if !reflect.DeepEqual(alerts[0].Systems, []string{"mnr"}) {
		t.Errorf("systems = %v", alerts[0].Systems)
	}
}

func TestPipelineArrivalsSortedAcrossEntities(t *testing.T) {
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfsrtpb.FeedEntity{
			{
				Id: proto.String("e1"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String("late")},
					StopTimeUpdate: []*gtfsrtpb.TripUpdate_StopTimeUpdate{
						{StopId: proto.String("632N"), Arrival: &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(900)}},
					},
				},
			},
			{
				Id: proto.String("e2"),
				TripUpdate: &gtfsrtpb.TripUpdate{
					Trip: &gtfsrtpb.TripDescriptor{TripId: proto.String("soon")},
					StopTimeUpdate: []*gtfsrtpb.TripUpdate_StopTimeUpdate{
						{StopId: proto.String("632N"), Arrival: &gtfsrtpb.TripUpdate_StopTimeEvent{Time: proto.Int64(100)}},
					},
				},
			},
		},
	}
	raw, err := proto.Marshal(fm)
	if err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(testPipelineConfig(),
		&fakeFetcher{payloads: map[string][]byte{"subway": raw}},
		genericResolver{}, &recordingGateway{}, nil)

	got, err := p.Arrivals(context.Background(), "subway")
	if err != nil {
		t.Fatalf("Arrivals: %v", err)
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].ArrivalTime < got[j].ArrivalTime }) {
		t.Errorf("arrivals not sorted: %+v", got)
	}
}
