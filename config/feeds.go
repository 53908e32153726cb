package config

// AuthType selects how an API key is attached to a feed request.
type AuthType string

const (
	// AuthNone means the endpoint is public.
	AuthNone AuthType = ""
	// AuthHeader sends the key in an x-api-key request header.
	AuthHeader AuthType = "header"
	// AuthQuery sends the key in a ?key= query parameter.
	AuthQuery AuthType = "query"
)

// FeedConfig describes one realtime feed endpoint.
//
// System is the sub-system key used for reference-store lookups and
// per-system policy selection; several subway line-group feeds share the
// single "subway" system.
type FeedConfig struct {
	URL       string
	System    string
	APIKeyEnv string
	AuthType  AuthType
}

// Feeds is the registry of realtime feeds served by the dashboard.
var Feeds = map[string]FeedConfig{
	"subway": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs",
		System: "subway",
	},
	"subway-ace": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-ace",
		System: "subway",
	},
	"subway-bdfm": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-bdfm",
		System: "subway",
	},
	"subway-g": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-g",
		System: "subway",
	},
	"subway-jz": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-jz",
		System: "subway",
	},
	"subway-l": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-l",
		System: "subway",
	},
	"subway-nqrw": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-nqrw",
		System: "subway",
	},
	"subway-sir": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-si",
		System: "subway",
	},
	"bus": {
		URL:       "https://gtfsrt.prod.obanyc.com/tripUpdates",
		System:    "bus",
		APIKeyEnv: "MTA_BUS_TIME_KEY",
		AuthType:  AuthQuery,
	},
	"mnr": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/mnr%2Fgtfs-mnr",
		System: "mnr",
	},
	"service_alerts": {
		URL:    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/camsys%2Fall-alerts",
		System: "service_alerts",
	},
}

// Feed looks up a feed by key.
func Feed(key string) (FeedConfig, bool) {
	cfg, ok := Feeds[key]
	return cfg, ok
}

// StaticGTFSURLs maps each reference-store system to its static GTFS zip.
// The subway uses the supplemented export so realtime trip identifiers can
// be matched against it.
var StaticGTFSURLs = map[string]string{
	"subway": "https://rrgtfsfeeds.s3.amazonaws.com/gtfs_supplemented.zip",
	"mnr":    "https://rrgtfsfeeds.s3.amazonaws.com/gtfsmnr.zip",
	"bus":    "https://rrgtfsfeeds.s3.amazonaws.com/gtfs_m.zip",
}

// ProtoURLs maps schema file names to their upstream sources. The MTARR file
// carries the commuter-rail track extension and imports the generic file by
// relative name.
var ProtoURLs = map[string]string{
	"gtfs-realtime.proto":       "https://raw.githubusercontent.com/google/transit/master/gtfs-realtime/proto/gtfs-realtime.proto",
	"gtfs-realtime-MTARR.proto": "https://raw.githubusercontent.com/OneBusAway/onebusaway-gtfs-realtime-api/master/src/main/proto/com/google/transit/realtime/gtfs-realtime-MTARR.proto",
}

// DefaultStations is the station watch list used when config.yml does not
// provide one.
var DefaultStations = []Station{
	{StopID: "632N", Label: "33 St (North)", Feed: "subway"},
	{StopID: "632S", Label: "33 St (South)", Feed: "subway"},
	{StopID: "402677", Label: "3 Av/E 37 St", Feed: "bus"},
	{StopID: "405530", Label: "Lexington Av/E 37 St", Feed: "bus"},
	{StopID: "1", Label: "Grand Central", Feed: "mnr"},
	{StopID: "128", Label: "Darien", Feed: "mnr"},
}
