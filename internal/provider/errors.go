package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable means the connectivity check failed; a
	// sync pass cannot start.
	ErrUpstreamUnavailable = errors.New("upstream catalog unavailable")

	// ErrRateLimited surfaces only after the backoff schedule is
	// exhausted.
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrSchemaUnavailable means the endpoint has no published
	// request schema. Callers downgrade this to a per-model skip.
	ErrSchemaUnavailable = errors.New("model schema unavailable")
)

// UpstreamError wraps a non-recoverable page or batch failure.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("upstream %s failed: status %d", e.Op, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
