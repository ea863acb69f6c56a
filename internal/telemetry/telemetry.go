// Package telemetry posts completed question/answer pairs to an external
// collector. Emission never blocks or fails a conversational turn.
package telemetry

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

type record struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Sink delivers records to a collector URL. A sink with an empty URL is a
// no-op, so callers never need to branch on whether telemetry is configured.
type Sink struct {
	url    string
	client *http.Client
	wg     sync.WaitGroup
}

// NewSink returns a sink posting to url. An empty url disables delivery.
func NewSink(url string) *Sink {
	return &Sink{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Emit delivers one question/answer pair in the background. Delivery
// failures are logged and otherwise ignored.
func (s *Sink) Emit(question, answer string) {
	if s.url == "" {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.post(record{Question: question, Answer: answer})
	}()
}

func (s *Sink) post(r record) {
	body, err := json.Marshal(r)
	if err != nil {
		log.Printf("telemetry: marshal record: %v", err)
		return
	}
	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("telemetry: post record: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("telemetry: collector returned %s", resp.Status)
	}
}

// Flush waits for in-flight deliveries, for orderly shutdown.
func (s *Sink) Flush() {
	s.wg.Wait()
}
