package server

import (
	"encoding/json"
	"net/http"

	"github.com/grimaldi89/martechito/internal/catalog"
	"github.com/grimaldi89/martechito/internal/retrieval"
)

type ingestRequest struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

type ingestResponse struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks_indexed"`
}

// handleIngest runs batch ingestion over the catalog. The request may narrow
// the batch with include/exclude glob patterns; with an empty body the
// configured defaults apply. The whole batch either lands or is rejected.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	req := ingestRequest{Include: s.cfg.Include, Exclude: s.cfg.Exclude}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	descriptors, err := s.catalog.List(r.Context())
	if err != nil {
		writeIngestError(w, err)
		return
	}
	descriptors = catalog.Filter(descriptors, req.Include, req.Exclude)

	chunks, err := s.ingestor.IngestDescriptors(r.Context(), descriptors)
	if err != nil {
		writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Documents: len(descriptors), Chunks: chunks})
}

type ingestObjectRequest struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// handleIngestObject ingests one object from the object store.
func (s *Server) handleIngestObject(w http.ResponseWriter, r *http.Request) {
	var req ingestObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Bucket == "" || req.Name == "" {
		writeBadRequest(w, "bucket and name are required")
		return
	}

	chunks, err := s.ingestor.IngestObject(r.Context(), req.Bucket, req.Name)
	if err != nil {
		writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Documents: 1, Chunks: chunks})
}

type chatRequest struct {
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// handleChat runs one conversational turn. An empty or unknown session ID
// starts a fresh session; the reply carries the ID to continue with.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Content == "" {
		writeBadRequest(w, "content is required")
		return
	}

	sess := s.sessions.obtain(req.SessionID)
	reply, err := s.responder.Respond(r.Context(), sess, req.Content)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

type strategyRequest struct {
	SessionID string   `json:"session_id"`
	Strategy  string   `json:"strategy"` // "threshold", "mmr", or "" to reset
	Threshold *float64 `json:"threshold,omitempty"`
	K         *int     `json:"k,omitempty"`
	Lambda    *float64 `json:"lambda,omitempty"`
}

// handleChatStrategy sets or resets a session's retrieval strategy override.
// Omitted parameters keep their configured defaults.
func (s *Server) handleChatStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeBadRequest(w, "session_id is required")
		return
	}

	sess := s.sessions.lookup(req.SessionID)
	if sess == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}

	if req.Strategy == "" {
		sess.SetStrategy(nil)
		writeJSON(w, http.StatusOK, map[string]string{"strategy": "default"})
		return
	}

	strategy, err := buildStrategy(req)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	sess.SetStrategy(strategy)
	writeJSON(w, http.StatusOK, strategy)
}

func buildStrategy(req strategyRequest) (*retrieval.Strategy, error) {
	strategy := retrieval.DefaultStrategy()
	strategy.Kind = retrieval.Kind(req.Strategy)
	if req.Threshold != nil {
		strategy.Threshold = float32(*req.Threshold)
	}
	if req.K != nil {
		strategy.K = *req.K
	}
	if req.Lambda != nil {
		strategy.Lambda = *req.Lambda
	}
	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	return &strategy, nil
}
