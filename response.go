package transit

import (
	"encoding/json"
	"net/http"
)

type arrivalsResponse struct {
	Arrivals []Arrival `json:"arrivals"`
}

type alertsResponse struct {
	Alerts []Alert `json:"alerts"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}
