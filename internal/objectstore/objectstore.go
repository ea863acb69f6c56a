// Package objectstore abstracts the external object store that single-object
// ingestion loads from. The production collaborator lives outside this
// system; FS implements the same contract over a local directory tree for
// development and tests.
package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grimaldi89/martechito/internal/faults"
)

// Store fetches raw object bytes by container and object identifier.
type Store interface {
	Fetch(ctx context.Context, bucket, object string) ([]byte, error)
}

// FS is a filesystem-backed Store rooted at root/project, laid out as
// root/project/<bucket>/<object>.
type FS struct {
	base string
}

// NewFS creates a filesystem object store for the given project.
func NewFS(root, project string) *FS {
	return &FS{base: filepath.Join(root, project)}
}

func (s *FS) Fetch(ctx context.Context, bucket, object string) ([]byte, error) {
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("bucket and object are required")
	}

	path := filepath.Join(s.base, bucket, filepath.FromSlash(object))
	if rel, err := filepath.Rel(s.base, path); err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("object path %q escapes the store root", object)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Upstream(fmt.Sprintf("fetch object %s/%s", bucket, object), err)
	}
	return data, nil
}
