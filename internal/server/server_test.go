package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/grimaldi89/martechito/internal/catalog"
	"github.com/grimaldi89/martechito/internal/chat"
	"github.com/grimaldi89/martechito/internal/faults"
	"github.com/grimaldi89/martechito/internal/retrieval"
)

type fakeCatalog struct {
	descriptors []catalog.Descriptor
	err         error
}

func (f *fakeCatalog) List(context.Context) ([]catalog.Descriptor, error) {
	return f.descriptors, f.err
}

type fakeIngestor struct {
	descriptors []catalog.Descriptor
	bucket      string
	object      string
	chunks      int
	err         error
}

func (f *fakeIngestor) IngestDescriptors(_ context.Context, descriptors []catalog.Descriptor) (int, error) {
	f.descriptors = descriptors
	return f.chunks, f.err
}

func (f *fakeIngestor) IngestObject(_ context.Context, bucket, object string) (int, error) {
	f.bucket = bucket
	f.object = object
	return f.chunks, f.err
}

type fakeResponder struct {
	sessions []*chat.Session
	err      error
}

func (f *fakeResponder) Respond(_ context.Context, sess *chat.Session, utterance string) (chat.Reply, error) {
	f.sessions = append(f.sessions, sess)
	if f.err != nil {
		return chat.Reply{}, f.err
	}
	return chat.Reply{
		SessionID: sess.ID,
		Question:  utterance,
		Answer:    "echo: " + utterance,
		Citations: []chat.Citation{{Title: "Guide", Source: "https://example.com/guide"}},
	}, nil
}

func newTestServer(cat *fakeCatalog, ing *fakeIngestor, resp *fakeResponder) *Server {
	return New(Config{Port: 0}, cat, ing, resp)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, &fakeResponder{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestIngestFiltersDescriptors(t *testing.T) {
	cat := &fakeCatalog{descriptors: []catalog.Descriptor{
		{URL: "https://example.com/ga4/events", Subject: "events", Tool: "GA4"},
		{URL: "https://example.com/ga4/sessions", Subject: "sessions", Tool: "GA4"},
		{URL: "https://example.com/ads/bidding", Subject: "bidding", Tool: "Ads"},
	}}
	ing := &fakeIngestor{chunks: 12}
	s := newTestServer(cat, ing, &fakeResponder{})

	w := postJSON(t, s, "/api/ingest", ingestRequest{
		Include: []string{"https://example.com/ga4/**"},
		Exclude: []string{"**/sessions"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(ing.descriptors) != 1 {
		t.Fatalf("expected 1 descriptor after filtering, got %d", len(ing.descriptors))
	}
	if ing.descriptors[0].URL != "https://example.com/ga4/events" {
		t.Errorf("unexpected descriptor %q", ing.descriptors[0].URL)
	}

	var resp ingestResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Documents != 1 || resp.Chunks != 12 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestIngestWithoutBodyTakesAllDescriptors(t *testing.T) {
	cat := &fakeCatalog{descriptors: []catalog.Descriptor{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
	}}
	ing := &fakeIngestor{chunks: 4}
	s := newTestServer(cat, ing, &fakeResponder{})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(ing.descriptors) != 2 {
		t.Errorf("expected all descriptors, got %d", len(ing.descriptors))
	}
}

func TestIngestUpstreamFailureNamesStage(t *testing.T) {
	cat := &fakeCatalog{descriptors: []catalog.Descriptor{{URL: "https://example.com/a"}}}
	ing := &fakeIngestor{err: faults.Upstream("fetch document", errors.New("status 503"))}
	s := newTestServer(cat, ing, &fakeResponder{})

	w := postJSON(t, s, "/api/ingest", ingestRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Stage != "fetch document" {
		t.Errorf("expected failing stage named, got %+v", resp)
	}
}

func TestIngestObject(t *testing.T) {
	ing := &fakeIngestor{chunks: 3}
	s := newTestServer(&fakeCatalog{}, ing, &fakeResponder{})

	w := postJSON(t, s, "/api/objects/ingest", ingestObjectRequest{Bucket: "docs", Name: "ga4.md"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ing.bucket != "docs" || ing.object != "ga4.md" {
		t.Errorf("expected bucket/object passed through, got %q %q", ing.bucket, ing.object)
	}
}

func TestIngestObjectRequiresBucketAndName(t *testing.T) {
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, &fakeResponder{})

	w := postJSON(t, s, "/api/objects/ingest", ingestObjectRequest{Bucket: "docs"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatCreatesAndReusesSession(t *testing.T) {
	resp := &fakeResponder{}
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, resp)

	w := postJSON(t, s, "/api/chat", chatRequest{Content: "What is a session?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var first chat.Reply
	if err := json.NewDecoder(w.Body).Decode(&first); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if first.SessionID == "" {
		t.Fatal("expected a session id in the reply")
	}

	w = postJSON(t, s, "/api/chat", chatRequest{SessionID: first.SessionID, Content: "And events?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if len(resp.sessions) != 2 || resp.sessions[0] != resp.sessions[1] {
		t.Error("expected the same session object for both turns")
	}
}

func TestChatRequiresContent(t *testing.T) {
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, &fakeResponder{})

	w := postJSON(t, s, "/api/chat", chatRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatUpstreamFailureIsBadGateway(t *testing.T) {
	resp := &fakeResponder{err: faults.Upstream("openai chat completion", errors.New("rate limited"))}
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, resp)

	w := postJSON(t, s, "/api/chat", chatRequest{Content: "hi"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestChatStrategyOverride(t *testing.T) {
	resp := &fakeResponder{}
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, resp)

	w := postJSON(t, s, "/api/chat", chatRequest{Content: "hi"})
	var reply chat.Reply
	if err := json.NewDecoder(w.Body).Decode(&reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}

	k := 3
	lambda := 0.5
	w = postJSON(t, s, "/api/chat/strategy", strategyRequest{
		SessionID: reply.SessionID,
		Strategy:  "mmr",
		K:         &k,
		Lambda:    &lambda,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	sess := s.sessions.lookup(reply.SessionID)
	st := sess.Strategy()
	if st == nil || st.Kind != retrieval.KindMMR || st.K != 3 || st.Lambda != 0.5 {
		t.Fatalf("expected mmr override on session, got %+v", st)
	}

	// Empty strategy resets to the configured default.
	w = postJSON(t, s, "/api/chat/strategy", strategyRequest{SessionID: reply.SessionID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if sess.Strategy() != nil {
		t.Error("expected strategy override cleared")
	}
}

func TestChatStrategyValidation(t *testing.T) {
	resp := &fakeResponder{}
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, resp)

	w := postJSON(t, s, "/api/chat", chatRequest{Content: "hi"})
	var reply chat.Reply
	if err := json.NewDecoder(w.Body).Decode(&reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}

	bad := 1.5
	w = postJSON(t, s, "/api/chat/strategy", strategyRequest{
		SessionID: reply.SessionID,
		Strategy:  "mmr",
		Lambda:    &bad,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for lambda out of range, got %d", w.Code)
	}

	w = postJSON(t, s, "/api/chat/strategy", strategyRequest{SessionID: "nope", Strategy: "mmr"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", w.Code)
	}
}

func TestWebSocketChat(t *testing.T) {
	resp := &fakeResponder{}
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, resp)

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsRequest{Type: "message", Content: "What is a session?"}); err != nil {
		t.Fatalf("writing message: %v", err)
	}

	var got wsResponse
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if got.Type != "response" {
		t.Fatalf("expected response, got %+v", got)
	}
	if got.SessionID == "" {
		t.Error("expected a session id")
	}
	if !strings.Contains(got.Content, "What is a session?") {
		t.Errorf("unexpected content %q", got.Content)
	}

	// Configure the session over the same connection.
	if err := conn.WriteJSON(wsRequest{Type: "configure", SessionID: got.SessionID, Strategy: "threshold"}); err != nil {
		t.Fatalf("writing configure: %v", err)
	}
	var conf wsResponse
	if err := conn.ReadJSON(&conf); err != nil {
		t.Fatalf("reading configure response: %v", err)
	}
	if conf.Type != "configured" {
		t.Fatalf("expected configured, got %+v", conf)
	}
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	s := newTestServer(&fakeCatalog{}, &fakeIngestor{}, &fakeResponder{})

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsRequest{Type: "bogus", Content: "x"}); err != nil {
		t.Fatalf("writing message: %v", err)
	}
	var got wsResponse
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if got.Type != "error" {
		t.Fatalf("expected error, got %+v", got)
	}
}
