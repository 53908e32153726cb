package transit

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/anish3343/transit-dashboard/gtfsrt"
)

// handleFeed serves one realtime feed: the alerts feed returns the processed
// alert list, everything else the enriched arrival list.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	feedKey := r.PathValue("feed")

	if feedKey == alertsFeedKey {
		alerts, err := s.feeds.Alerts(r.Context())
		if err != nil {
			s.writeFeedError(w, feedKey, err)
			return
		}
		writeJSON(w, http.StatusOK, alertsResponse{Alerts: alerts})
		return
	}

	arrivals, err := s.feeds.Arrivals(r.Context(), feedKey)
	if err != nil {
		s.writeFeedError(w, feedKey, err)
		return
	}
	writeJSON(w, http.StatusOK, arrivalsResponse{Arrivals: arrivals})
}

// writeFeedError maps pipeline failures onto the API error contract.
// Configuration errors are the caller's fault or ours; everything else means
// the upstream feed let us down.
func (s *Server) writeFeedError(w http.ResponseWriter, feedKey string, err error) {
	log.Error().Err(err).Str("feed", feedKey).Msg("feed request failed")
	switch {
	case errors.Is(err, gtfsrt.ErrUnknownFeed):
		writeError(w, http.StatusNotFound, "unknown feed", err.Error())
	case errors.Is(err, gtfsrt.ErrMissingAPIKey):
		writeError(w, http.StatusInternalServerError, "feed misconfigured", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "feed unavailable", err.Error())
	}
}

type stopEntry struct {
	StopID   string `json:"stopId"`
	StopName string `json:"stopName"`
}

// handleStops lists the reference stops of one sub-system, for picking
// stations to watch.
func (s *Server) handleStops(w http.ResponseWriter, r *http.Request) {
	system := r.URL.Query().Get("system")
	if system == "" {
		writeError(w, http.StatusBadRequest, "missing system parameter", "")
		return
	}
	rows, err := s.stops.ListStops(r.Context(), system)
	if err != nil {
		log.Error().Err(err).Str("system", system).Msg("stop listing failed")
		writeError(w, http.StatusInternalServerError, "stop listing failed", err.Error())
		return
	}
	stops := make([]stopEntry, 0, len(rows))
	for _, row := range rows {
		stops = append(stops, stopEntry{StopID: row.StopID, StopName: row.StopName.String})
	}
	writeJSON(w, http.StatusOK, map[string]any{"stops": stops})
}

// handleGTFSUpdate re-ingests the static schedule bundles. Partial failure
// reports per-system outcomes with a 502 so callers notice.
func (s *Server) handleGTFSUpdate(w http.ResponseWriter, r *http.Request) {
	results := s.static.Refresh(r.Context())
	status := http.StatusOK
	for _, res := range results {
		if res.Error != "" {
			status = http.StatusBadGateway
			break
		}
	}
	writeJSON(w, status, map[string]any{"results": results})
}

// handleProtoUpdate refreshes the locally cached schema files.
func (s *Server) handleProtoUpdate(w http.ResponseWriter, r *http.Request) {
	results := s.protos(r.Context(), s.cfg.Proto.Dir)
	status := http.StatusOK
	for _, res := range results {
		if res.Error != "" {
			status = http.StatusBadGateway
			break
		}
	}
	writeJSON(w, status, map[string]any{"results": results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
