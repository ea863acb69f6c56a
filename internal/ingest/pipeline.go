// Package ingest implements the document ingestion pipeline: fetch,
// annotate, chunk, embed, ensure the collection, bulk-insert. One invocation
// is all-or-nothing: every stage buffers its results and the index write
// happens once at the end, so a failure anywhere leaves the index untouched.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/grimaldi89/martechito/internal/catalog"
	"github.com/grimaldi89/martechito/internal/embeddings"
	"github.com/grimaldi89/martechito/internal/faults"
	"github.com/grimaldi89/martechito/internal/index"
	"github.com/grimaldi89/martechito/internal/objectstore"
)

// Pipeline turns document descriptors into embedded, indexed chunks.
type Pipeline struct {
	loader   *Loader
	objects  objectstore.Store
	splitter *Splitter
	embedder embeddings.Embedder
	manager  *index.Manager
	store    *index.Store

	// OnDocument, when set, is called once per document as it is loaded.
	// Used by the CLI for progress reporting.
	OnDocument func(source string)
}

// New creates an ingestion pipeline over the given collaborators.
func New(loader *Loader, objects objectstore.Store, splitter *Splitter,
	embedder embeddings.Embedder, manager *index.Manager, store *index.Store) *Pipeline {
	return &Pipeline{
		loader:   loader,
		objects:  objects,
		splitter: splitter,
		embedder: embedder,
		manager:  manager,
		store:    store,
	}
}

// IngestDescriptors fetches, chunks, embeds and indexes every descriptor.
// Returns the number of chunks indexed. A failure for any single descriptor
// aborts the whole batch before anything reaches the index.
func (p *Pipeline) IngestDescriptors(ctx context.Context, descriptors []catalog.Descriptor) (int, error) {
	if len(descriptors) == 0 {
		return 0, nil
	}

	now := time.Now()
	docs := make([]Document, 0, len(descriptors))
	for _, d := range descriptors {
		doc, err := p.loader.Fetch(ctx, d.URL)
		if err != nil {
			return 0, err
		}
		docs = append(docs, Annotate(doc, d, now))
		if p.OnDocument != nil {
			p.OnDocument(d.URL)
		}
	}
	log.Printf("ingest: loaded %d documents", len(docs))

	return p.indexDocuments(ctx, docs)
}

// IngestObject loads one object from the object store, chunks, embeds and
// indexes it. Returns the number of chunks indexed.
func (p *Pipeline) IngestObject(ctx context.Context, bucket, object string) (int, error) {
	data, err := p.objects.Fetch(ctx, bucket, object)
	if err != nil {
		return 0, err
	}

	doc := Document{
		Content: string(data),
		Meta: index.Meta{
			Title:  object,
			Source: bucket + "/" + object,
			Date:   time.Now().Format("2006-01-02"),
		},
	}
	if p.OnDocument != nil {
		p.OnDocument(doc.Meta.Source)
	}

	return p.indexDocuments(ctx, []Document{doc})
}

// indexDocuments runs the shared chunk → embed → ensure → insert tail of
// both ingestion paths.
func (p *Pipeline) indexDocuments(ctx context.Context, docs []Document) (int, error) {
	var chunks []Chunk
	for _, doc := range docs {
		pieces := p.splitter.Split(doc.Content)
		for seq, text := range pieces {
			chunks = append(chunks, Chunk{Text: text, Seq: seq, Meta: doc.Meta})
		}
	}
	if len(chunks) == 0 {
		log.Printf("ingest: no chunks produced, nothing to index")
		return 0, nil
	}
	log.Printf("ingest: split %d documents into %d chunks", len(docs), len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, faults.Upstream("embed chunks",
			fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks)))
	}

	if err := p.manager.Ensure(ctx); err != nil {
		return 0, err
	}

	points := make([]index.Point, len(chunks))
	for i, c := range chunks {
		points[i] = index.Point{
			ID:     chunkID(c),
			Text:   c.Text,
			Vector: vectors[i],
			Meta:   c.Meta,
		}
	}
	if err := p.store.Add(ctx, points); err != nil {
		return 0, err
	}

	log.Printf("ingest: indexed %d chunks into %s", len(points), p.manager.Name())
	return len(points), nil
}

// chunkID is content-addressed: the same source, position and text always
// map to the same ID, so re-ingesting unchanged content upserts in place
// instead of duplicating.
func chunkID(c Chunk) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", c.Meta.Source, c.Seq, c.Text)))
	return hex.EncodeToString(h[:16])
}
