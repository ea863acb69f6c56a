package index

// Meta holds the chunk metadata carried through ingestion and surfaced with
// retrieval results. Title and Source feed the citation block.
type Meta struct {
	Title   string
	Source  string
	Subject string
	Tool    string
	Date    string
}

// Point is one indexed chunk: its text, its embedding and its metadata.
type Point struct {
	ID     string
	Text   string
	Vector []float32
	Meta   Meta
}

// Result pairs an indexed chunk with its similarity to a query. Embedding is
// included so re-ranking strategies can compare results to each other.
type Result struct {
	ID         string
	Text       string
	Meta       Meta
	Similarity float32
	Embedding  []float32
}

func metaToMap(m Meta) map[string]string {
	return map[string]string{
		"title":   m.Title,
		"source":  m.Source,
		"subject": m.Subject,
		"tool":    m.Tool,
		"date":    m.Date,
	}
}

func mapToMeta(m map[string]string) Meta {
	return Meta{
		Title:   m["title"],
		Source:  m["source"],
		Subject: m["subject"],
		Tool:    m["tool"],
		Date:    m["date"],
	}
}
