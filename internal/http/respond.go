package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, detail string) {
	respondJSON(w, status, errorBody{Error: code, Detail: detail})
}

func respondErrorRaw(w http.ResponseWriter, status int, code, detail, raw string) {
	respondJSON(w, status, errorBody{Error: code, Detail: detail, Raw: raw})
}
