// Package faults defines the small set of typed failures that cross
// component boundaries: fatal configuration problems and failures of
// external collaborators (embedding service, generation service, vector
// index, catalog, object store). The HTTP layer maps these to responses;
// everything else wraps with fmt.Errorf as usual.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError reports one or more missing or invalid startup settings.
// It is fatal: the process must not begin serving.
type ConfigError struct {
	Missing []string
	Reason  string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("configuration error: missing required settings: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// UpstreamError marks a failure from an external collaborator. Op names the
// failing operation (e.g. "embed chunks", "fetch document") so the boundary
// can surface which stage broke without parsing messages.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError. Returns nil for a nil err.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}

// AsUpstream unwraps err to an UpstreamError, if it is one.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
