package refstore

import (
	"context"
	"database/sql"
	"strings"
)

// TripRow is one trip joined to its route display fields. The join is a left
// join: a trip may reference a route absent from the reference set, in which
// case the route columns are null.
type TripRow struct {
	TripID         string
	TripShortName  sql.NullString
	TripHeadsign   sql.NullString
	RouteShortName sql.NullString
	RouteLongName  sql.NullString
	RouteColor     sql.NullString
	RouteTextColor sql.NullString
}

// RouteRow is one route's display fields.
type RouteRow struct {
	RouteID        string
	RouteShortName sql.NullString
	RouteLongName  sql.NullString
	RouteColor     sql.NullString
	RouteTextColor sql.NullString
}

// StopRow is one stop of a system.
type StopRow struct {
	StopID   string
	StopName sql.NullString
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// FindTrips returns trips of the system whose trip_id OR trip_short_name is
// in ids, with route display fields joined in the same round-trip.
func (s *Store) FindTrips(ctx context.Context, system string, ids []string) ([]TripRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT
			t.trip_id,
			t.trip_short_name,
			t.trip_headsign,
			r.route_short_name,
			r.route_long_name,
			r.route_color,
			r.route_text_color
		FROM trips t
		LEFT JOIN routes r ON t.route_id = r.route_id AND t.system = r.system
		WHERE t.system = ?
		  AND (t.trip_id IN (` + placeholders(len(ids)) + `) OR t.trip_short_name IN (` + placeholders(len(ids)) + `))`

	args := make([]any, 0, 1+2*len(ids))
	args = append(args, system)
	for _, id := range ids {
		args = append(args, id)
	}
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TripRow
	for rows.Next() {
		var t TripRow
		if err := rows.Scan(&t.TripID, &t.TripShortName, &t.TripHeadsign,
			&t.RouteShortName, &t.RouteLongName, &t.RouteColor, &t.RouteTextColor); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// FindRoutes returns routes of the system whose route_id is in ids.
func (s *Store) FindRoutes(ctx context.Context, system string, ids []string) ([]RouteRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT route_id, route_short_name, route_long_name, route_color, route_text_color
		FROM routes
		WHERE system = ? AND route_id IN (` + placeholders(len(ids)) + `)`

	args := make([]any, 0, 1+len(ids))
	args = append(args, system)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RouteRow
	for rows.Next() {
		var r RouteRow
		if err := rows.Scan(&r.RouteID, &r.RouteShortName, &r.RouteLongName,
			&r.RouteColor, &r.RouteTextColor); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListStops returns all stops of a system ordered by stop_id.
func (s *Store) ListStops(ctx context.Context, system string) ([]StopRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT stop_id, stop_name FROM stops WHERE system = ? ORDER BY stop_id`, system)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StopRow
	for rows.Next() {
		var st StopRow
		if err := rows.Scan(&st.StopID, &st.StopName); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
