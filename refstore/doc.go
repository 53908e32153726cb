// Package refstore owns the static schedule reference store: a SQLite
// database of stops, trips and routes keyed by (system, id), refreshed by
// the gtfsstatic loader and queried read-only by the enrichment pipeline.
//
// The store handle is constructed explicitly with Open and injected where
// needed; there is no package-level state and no import-time side effect.
package refstore
