package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeReason reports a trade rejection with its stable reason code.
func writeReason(w http.ResponseWriter, status int, reason string, msg string) {
	writeJSON(w, status, map[string]any{"error": msg, "reason": reason})
}
