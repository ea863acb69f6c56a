package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/grimaldi89/martechito/internal/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "message" or "configure"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`

	// Strategy fields, for "configure" messages.
	Strategy  string   `json:"strategy,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	K         *int     `json:"k,omitempty"`
	Lambda    *float64 `json:"lambda,omitempty"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string          `json:"type"` // "response", "configured" or "error"
	SessionID string          `json:"session_id"`
	Content   string          `json:"content,omitempty"`
	Citations []chat.Citation `json:"citations,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "message":
			s.handleWSMessage(conn, r, req)
		case "configure":
			s.handleWSConfigure(conn, req)
		default:
			s.sendWSError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleWSMessage(conn *websocket.Conn, r *http.Request, req wsRequest) {
	if req.Content == "" {
		s.sendWSError(conn, req.SessionID, "content is required")
		return
	}

	sess := s.sessions.obtain(req.SessionID)
	reply, err := s.responder.Respond(r.Context(), sess, req.Content)
	if err != nil {
		s.sendWSError(conn, sess.ID, "turn failed: "+err.Error())
		return
	}

	s.sendWS(conn, wsResponse{
		Type:      "response",
		SessionID: reply.SessionID,
		Content:   reply.Answer,
		Citations: reply.Citations,
	})
}

func (s *Server) handleWSConfigure(conn *websocket.Conn, req wsRequest) {
	sess := s.sessions.lookup(req.SessionID)
	if sess == nil {
		s.sendWSError(conn, req.SessionID, "unknown session")
		return
	}

	if req.Strategy == "" {
		sess.SetStrategy(nil)
		s.sendWS(conn, wsResponse{Type: "configured", SessionID: sess.ID, Content: "default"})
		return
	}

	strategy, err := buildStrategy(strategyRequest{
		Strategy:  req.Strategy,
		Threshold: req.Threshold,
		K:         req.K,
		Lambda:    req.Lambda,
	})
	if err != nil {
		s.sendWSError(conn, sess.ID, err.Error())
		return
	}
	sess.SetStrategy(strategy)
	s.sendWS(conn, wsResponse{Type: "configured", SessionID: sess.ID, Content: req.Strategy})
}

func (s *Server) sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, sessionID, message string) {
	resp := wsResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write error: %v", err)
	}
}
