// Package index wraps chromem-go with the two roles the rest of the system
// needs: a collection manager (idempotent ensure-if-absent with a fixed
// dimension and distance metric) and a point store (bulk insert plus
// similarity search).
package index

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/grimaldi89/martechito/internal/faults"
)

// Metric is the only distance metric the system uses.
const Metric = "cosine"

// OpenDB opens (or creates) a persistent chromem database at path.
func OpenDB(path string) (*chromem.DB, error) {
	db, err := chromem.NewPersistentDB(path, true)
	if err != nil {
		return nil, faults.Upstream("open vector index", err)
	}
	return db, nil
}

// MemoryDB returns an in-memory chromem database, used by tests.
func MemoryDB() *chromem.DB {
	return chromem.NewDB()
}

// Manager owns the lifecycle of one named collection. The dimension is fixed
// at construction; Ensure never changes an existing collection.
type Manager struct {
	db        *chromem.DB
	name      string
	dimension int
	embedFunc chromem.EmbeddingFunc
}

// NewManager creates a collection manager for the named collection.
func NewManager(db *chromem.DB, name string, dimension int, embedFunc chromem.EmbeddingFunc) *Manager {
	return &Manager{
		db:        db,
		name:      name,
		dimension: dimension,
		embedFunc: embedFunc,
	}
}

// Ensure creates the collection if it does not exist. An already existing
// collection is success, not an error, so repeated ingestion invocations are
// safe. Concurrent creators within one process are serialized by chromem;
// cross-process races are out of scope.
func (m *Manager) Ensure(ctx context.Context) error {
	metadata := map[string]string{
		"dimension": strconv.Itoa(m.dimension),
		"distance":  Metric,
	}
	if _, err := m.db.GetOrCreateCollection(m.name, metadata, m.embedFunc); err != nil {
		return faults.Upstream("ensure collection", err)
	}
	return nil
}

// Exists reports whether the collection currently exists.
func (m *Manager) Exists() bool {
	return m.db.GetCollection(m.name, m.embedFunc) != nil
}

// Dimension returns the declared embedding dimension of the collection.
func (m *Manager) Dimension() int { return m.dimension }

// Name returns the collection name.
func (m *Manager) Name() string { return m.name }

// collection returns the underlying collection, which must have been
// ensured first.
func (m *Manager) collection() (*chromem.Collection, error) {
	col := m.db.GetCollection(m.name, m.embedFunc)
	if col == nil {
		return nil, fmt.Errorf("collection %q does not exist", m.name)
	}
	return col, nil
}
