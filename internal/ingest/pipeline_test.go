package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grimaldi89/martechito/internal/catalog"
	"github.com/grimaldi89/martechito/internal/index"
	"github.com/grimaldi89/martechito/internal/objectstore"
)

const testDim = 4

// fakeEmbedder produces deterministic vectors without network access.
type fakeEmbedder struct {
	fail bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, errors.New("embedding service unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, testDim)
		for j, r := range text {
			v[j%testDim] += float32(r)
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return testDim }
func (f *fakeEmbedder) Name() string    { return "fake" }

// paragraphs builds a document body with n paragraphs, each sized so the
// test splitter yields exactly one chunk per paragraph.
func paragraphs(label string, n int) string {
	var parts []string
	for i := 0; i < n; i++ {
		// Each paragraph is 42+ bytes so no two fit into one 60-byte chunk.
		parts = append(parts, strings.Repeat(label, 8)+" paragraph number "+strings.Repeat("x", i))
	}
	return strings.Join(parts, "\n\n")
}

func newTestPipeline(t *testing.T, embedder *fakeEmbedder, objects objectstore.Store) (*Pipeline, *index.Store) {
	t.Helper()
	manager := index.NewManager(index.MemoryDB(), "ga4_documents", testDim, nil)
	store := index.NewStore(manager)
	// Size 60 keeps each test paragraph in its own chunk.
	p := New(NewLoader(5*time.Second), objects, NewSplitter(60, 0), embedder, manager, store)
	return p, store
}

func descriptorServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.Error(w, "missing", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(body))
	}))
}

func TestIngestDescriptorsIndexesEveryChunk(t *testing.T) {
	srv := descriptorServer(t, map[string]string{
		"/doc1": paragraphs("aaa", 5),
		"/doc2": paragraphs("bbb", 3),
	})
	defer srv.Close()

	p, store := newTestPipeline(t, &fakeEmbedder{}, nil)

	descriptors := []catalog.Descriptor{
		{URL: srv.URL + "/doc1", Subject: "attribution", Tool: "ga4"},
		{URL: srv.URL + "/doc2", Subject: "events", Tool: "ga4"},
	}

	n, err := p.IngestDescriptors(context.Background(), descriptors)
	if err != nil {
		t.Fatalf("IngestDescriptors: %v", err)
	}
	if n != 8 {
		t.Errorf("expected 8 chunks indexed (5+3), got %d", n)
	}
	if got := store.Count(); got != 8 {
		t.Errorf("index count should increase by 8, got %d", got)
	}
}

func TestIngestDescriptorsAttachesMetadata(t *testing.T) {
	srv := descriptorServer(t, map[string]string{"/doc": "attribution windows explained"})
	defer srv.Close()

	p, store := newTestPipeline(t, &fakeEmbedder{}, nil)

	_, err := p.IngestDescriptors(context.Background(), []catalog.Descriptor{
		{URL: srv.URL + "/doc", Subject: "attribution", Tool: "ga4"},
	})
	if err != nil {
		t.Fatalf("IngestDescriptors: %v", err)
	}

	results, err := store.SearchThreshold(context.Background(), mustEmbed(t, "attribution windows explained"), -1)
	if err != nil {
		t.Fatalf("SearchThreshold: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected indexed chunk")
	}
	meta := results[0].Meta
	if meta.Subject != "attribution" || meta.Tool != "ga4" {
		t.Errorf("descriptor metadata lost: %+v", meta)
	}
	if meta.Date == "" {
		t.Error("ingestion date missing")
	}
	if meta.Source != srv.URL+"/doc" {
		t.Errorf("source missing: %+v", meta)
	}
}

func TestIngestDescriptorsFetchFailureAbortsBatch(t *testing.T) {
	srv := descriptorServer(t, map[string]string{"/ok": paragraphs("aaa", 3)})
	defer srv.Close()

	p, store := newTestPipeline(t, &fakeEmbedder{}, nil)

	_, err := p.IngestDescriptors(context.Background(), []catalog.Descriptor{
		{URL: srv.URL + "/ok"},
		{URL: srv.URL + "/broken"},
	})
	if err == nil {
		t.Fatal("expected fetch failure")
	}
	if got := store.Count(); got != 0 {
		t.Errorf("failed batch must not commit anything, count=%d", got)
	}
}

func TestIngestDescriptorsEmbedFailureAbortsBatch(t *testing.T) {
	srv := descriptorServer(t, map[string]string{"/doc": paragraphs("aaa", 3)})
	defer srv.Close()

	p, store := newTestPipeline(t, &fakeEmbedder{fail: true}, nil)

	_, err := p.IngestDescriptors(context.Background(), []catalog.Descriptor{{URL: srv.URL + "/doc"}})
	if err == nil {
		t.Fatal("expected embedding failure")
	}
	if got := store.Count(); got != 0 {
		t.Errorf("failed batch must not commit anything, count=%d", got)
	}
}

func TestReingestUnchangedContentIsIdempotent(t *testing.T) {
	srv := descriptorServer(t, map[string]string{"/doc": paragraphs("aaa", 4)})
	defer srv.Close()

	p, store := newTestPipeline(t, &fakeEmbedder{}, nil)
	descriptors := []catalog.Descriptor{{URL: srv.URL + "/doc"}}
	ctx := context.Background()

	if _, err := p.IngestDescriptors(ctx, descriptors); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	first := store.Count()

	if _, err := p.IngestDescriptors(ctx, descriptors); err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if got := store.Count(); got != first {
		t.Errorf("re-ingesting unchanged content should upsert in place: %d -> %d", first, got)
	}
}

func TestIngestObject(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dev", "markdown-file")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "attribution.txt"), []byte(paragraphs("ccc", 2)), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, store := newTestPipeline(t, &fakeEmbedder{}, objectstore.NewFS(root, "dev"))

	n, err := p.IngestObject(context.Background(), "markdown-file", "attribution.txt")
	if err != nil {
		t.Fatalf("IngestObject: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 chunks, got %d", n)
	}
	if got := store.Count(); got != 2 {
		t.Errorf("unexpected index count %d", got)
	}

	results, err := store.SearchThreshold(context.Background(), mustEmbed(t, paragraphs("ccc", 1)), -1)
	if err != nil {
		t.Fatalf("SearchThreshold: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Meta.Title != "attribution.txt" {
		t.Errorf("object name should become the title, got %q", results[0].Meta.Title)
	}
	if results[0].Meta.Source != "markdown-file/attribution.txt" {
		t.Errorf("unexpected source %q", results[0].Meta.Source)
	}
}

func mustEmbed(t *testing.T, text string) []float32 {
	t.Helper()
	vecs, err := (&fakeEmbedder{}).Embed(context.Background(), []string{text})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	return vecs[0]
}
