package gtfsrt

import "regexp"

// Policy is the per-sub-system capability table. It consolidates the
// realtime quirks that would otherwise leak into every component: how to
// extract the trip join key, whether the sub-system ships the extended
// schema, and how the static loader derives the fallback short name.
type Policy struct {
	// TripKey extracts the identifier used to join an entity against the
	// reference store.
	TripKey func(e Entity) string
	// TrackExtension is true when the sub-system's feed carries the
	// track-assignment extension (commuter rail only).
	TrackExtension bool
	// ShortName derives the trip_short_name stored as the secondary lookup
	// key when ingesting static schedule data.
	ShortName func(tripID, shortName string) string
}

// Realtime subway trip ids are a truncated suffix of the static ones, e.g.
// static "AFA23GEN-1038-Sunday-00_052150_6..N03R" vs realtime
// "052150_6..N03R". The suffix becomes the secondary lookup key.
var subwayTripSuffix = regexp.MustCompile(`_(\d{6}_.+)$`)

func nestedTripKey(e Entity) string {
	if e.TripUpdate == nil {
		return ""
	}
	return e.TripUpdate.TripID
}

// Metro-North publishes the train number in the entity id; the nested trip
// id is not usable for reference joins.
func entityIDTripKey(e Entity) string { return e.ID }

func passThroughShortName(tripID, shortName string) string { return shortName }

var policies = map[string]Policy{
	"subway": {
		TripKey: nestedTripKey,
		ShortName: func(tripID, shortName string) string {
			if shortName != "" {
				return shortName
			}
			if m := subwayTripSuffix.FindStringSubmatch(tripID); m != nil {
				return m[1]
			}
			return ""
		},
	},
	"mnr": {
		TripKey:        entityIDTripKey,
		TrackExtension: true,
		ShortName: func(tripID, shortName string) string {
			if shortName != "" {
				return shortName
			}
			return tripID
		},
	},
}

var defaultPolicy = Policy{
	TripKey:   nestedTripKey,
	ShortName: passThroughShortName,
}

// PolicyFor returns the capability table for a sub-system key. Unknown
// systems get the default behavior (nested trip id, no extension).
func PolicyFor(system string) Policy {
	if p, ok := policies[system]; ok {
		return p
	}
	return defaultPolicy
}
