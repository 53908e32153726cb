// Package gtfsrt handles fetching and decoding GTFS-Realtime protobuf feeds.
//
// It covers three concerns:
//   - Fetcher: retrieves raw feed bytes with per-feed auth (header or query key)
//   - Resolver/Schema: selects the message schema for a sub-system, loading the
//     commuter-rail extended schema when available and falling back to the
//     generic public schema otherwise
//   - Decoder: turns raw bytes into a FeedMessage whose entities are a tagged
//     union (TripUpdate, Alert, Unknown) decided once at decode time
package gtfsrt
