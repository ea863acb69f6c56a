package ingest

import (
	"time"

	"github.com/grimaldi89/martechito/internal/catalog"
	"github.com/grimaldi89/martechito/internal/index"
)

// Document is raw fetched content plus its metadata. Created by the loader
// and never mutated after annotation.
type Document struct {
	Content string
	Meta    index.Meta
}

// Chunk is one bounded segment of a document, identified by its parent's
// source and its sequence position.
type Chunk struct {
	Text string
	Seq  int
	Meta index.Meta
}

// Annotate attaches the descriptor's subject/tool and the ingestion date to
// a loaded document. Kept as a separate step after the generic fetch so the
// loader stays metadata-agnostic.
func Annotate(doc Document, d catalog.Descriptor, now time.Time) Document {
	doc.Meta.Subject = d.Subject
	doc.Meta.Tool = d.Tool
	doc.Meta.Date = now.Format("2006-01-02")
	return doc
}
