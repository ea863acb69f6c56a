package server

import (
	"encoding/json"
	"net/http"

	"github.com/grimaldi89/martechito/internal/faults"
)

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// writeIngestError reports ingestion failures. A collaborator failure names
// the stage that broke and rejects the batch with 400; anything else is 500.
func writeIngestError(w http.ResponseWriter, err error) {
	if up, ok := faults.AsUpstream(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Stage: up.Op})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// writeChatError reports turn failures. Collaborator failures are gateway
// errors; declines never reach this path, they are ordinary answers.
func writeChatError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if _, ok := faults.AsUpstream(err); ok {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
