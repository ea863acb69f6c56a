// Package catalog reads the document descriptor catalog: the structured
// list of {url, subject, tool} rows that batch ingestion works from. The
// catalog is SQLite-backed; the dataset and table names come from
// configuration.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/grimaldi89/martechito/internal/faults"
)

// Descriptor identifies one document to ingest. Immutable once read.
type Descriptor struct {
	URL     string `json:"url"`
	Subject string `json:"subject"`
	Tool    string `json:"tool"`
}

// Catalog wraps a SQLite database holding document descriptors.
type Catalog struct {
	db    *sql.DB
	table string
}

// identRe restricts dataset/table names to safe SQL identifiers, since they
// are interpolated into statements.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open creates or opens the catalog database at path. The dataset and table
// names combine into the physical table name, mirroring the dataset.table
// addressing of the upstream warehouse the descriptors are mirrored from.
func Open(path, dataset, table string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, faults.Upstream("open catalog", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, faults.Upstream("open catalog", err)
	}

	c, err := newCatalog(db, dataset, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// OpenMemory creates an in-memory catalog (useful for testing).
func OpenMemory(dataset, table string) (*Catalog, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, faults.Upstream("open catalog", err)
	}
	c, err := newCatalog(db, dataset, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func newCatalog(db *sql.DB, dataset, table string) (*Catalog, error) {
	if !identRe.MatchString(dataset) || !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog dataset/table identifier %q.%q", dataset, table)
	}

	c := &Catalog{db: db, table: dataset + "_" + table}
	if err := c.migrate(); err != nil {
		return nil, faults.Upstream("migrate catalog", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	_, err := c.db.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    url TEXT PRIMARY KEY,
    subject TEXT NOT NULL DEFAULT '',
    tool TEXT NOT NULL DEFAULT ''
);`, c.table))
	return err
}

// List returns every descriptor in the catalog.
func (c *Catalog) List(ctx context.Context) ([]Descriptor, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT url, subject, tool FROM %s ORDER BY url", c.table))
	if err != nil {
		return nil, faults.Upstream("query catalog", err)
	}
	defer rows.Close()

	var descriptors []Descriptor
	for rows.Next() {
		var d Descriptor
		if err := rows.Scan(&d.URL, &d.Subject, &d.Tool); err != nil {
			return nil, faults.Upstream("query catalog", err)
		}
		descriptors = append(descriptors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Upstream("query catalog", err)
	}
	return descriptors, nil
}

// Put inserts or replaces a descriptor. Used by the seed command and tests.
func (c *Catalog) Put(ctx context.Context, d Descriptor) error {
	_, err := c.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (url, subject, tool) VALUES (?, ?, ?)", c.table),
		d.URL, d.Subject, d.Tool)
	if err != nil {
		return faults.Upstream("write catalog", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }
