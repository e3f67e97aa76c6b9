package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports that a selector or category token resolved to
// nothing.
var ErrNotFound = errors.New("not found")

// AmbiguousError reports a selector that matched more than one
// candidate. It is always surfaced to the caller for explicit choice,
// never auto-resolved.
type AmbiguousError struct {
	Token      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("selector %q is ambiguous, matches: %s",
		e.Token, strings.Join(e.Candidates, ", "))
}

// UploadError reports a failed upload. Transient means every allowed
// attempt failed on a retryable error; otherwise the upload was
// rejected outright and never retried.
type UploadError struct {
	Path      string
	Transient bool
	Attempts  int
	Err       error
}

func (e *UploadError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("upload of %s failed (%s, %d attempt(s)): %v",
		e.Path, kind, e.Attempts, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// InconsistentStateError reports a local record referencing remote
// state that is no longer resolvable (e.g. a file tracked under an
// account whose credential is gone). It is surfaced, not auto-healed,
// so user-visible history is never silently dropped.
type InconsistentStateError struct {
	Reason string
}

func (e *InconsistentStateError) Error() string {
	return "inconsistent state: " + e.Reason
}
