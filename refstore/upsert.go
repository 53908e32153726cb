package refstore

import (
	"context"
	"fmt"
)

// Batch size for upserts, kept small to stay clear of SQLite variable limits.
const upsertChunk = 200

// StopRecord is one stop to ingest.
type StopRecord struct {
	StopID   string
	StopName string
}

// TripRecord is one trip to ingest. TripShortName is the secondary lookup
// key, already derived by the loader's per-system rule.
type TripRecord struct {
	TripID        string
	RouteID       string
	TripHeadsign  string
	TripShortName string
	DirectionID   string
}

// RouteRecord is one route to ingest.
type RouteRecord struct {
	RouteID        string
	RouteShortName string
	RouteLongName  string
	RouteColor     string
	RouteTextColor string
}

// UpsertStops replaces stops of a system in chunks.
func (s *Store) UpsertStops(ctx context.Context, system string, records []StopRecord) error {
	for start := 0; start < len(records); start += upsertChunk {
		chunk := records[start:min(start+upsertChunk, len(records))]
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO stops (system, stop_id, stop_name) VALUES (?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, r := range chunk {
			if _, err := stmt.ExecContext(ctx, system, r.StopID, r.StopName); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return fmt.Errorf("upserting stop %s: %w", r.StopID, err)
			}
		}
		_ = stmt.Close()
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTrips replaces trips of a system in chunks.
func (s *Store) UpsertTrips(ctx context.Context, system string, records []TripRecord) error {
	for start := 0; start < len(records); start += upsertChunk {
		chunk := records[start:min(start+upsertChunk, len(records))]
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO trips
			 (system, trip_id, route_id, trip_headsign, trip_short_name, direction_id)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, r := range chunk {
			if _, err := stmt.ExecContext(ctx, system, r.TripID, r.RouteID,
				r.TripHeadsign, r.TripShortName, r.DirectionID); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return fmt.Errorf("upserting trip %s: %w", r.TripID, err)
			}
		}
		_ = stmt.Close()
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertRoutes replaces routes of a system in chunks.
func (s *Store) UpsertRoutes(ctx context.Context, system string, records []RouteRecord) error {
	for start := 0; start < len(records); start += upsertChunk {
		chunk := records[start:min(start+upsertChunk, len(records))]
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO routes
			 (system, route_id, route_short_name, route_long_name, route_color, route_text_color)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, r := range chunk {
			if _, err := stmt.ExecContext(ctx, system, r.RouteID, r.RouteShortName,
				r.RouteLongName, r.RouteColor, r.RouteTextColor); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return fmt.Errorf("upserting route %s: %w", r.RouteID, err)
			}
		}
		_ = stmt.Close()
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
