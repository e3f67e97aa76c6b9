// Package transport defines the capability interface the core uses to
// talk to the hosting service. No hosting-specific logic lives in the
// core; implementations are plugins under this directory.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofileup/gofileup/internal/model"
)

// ErrRemoteNotFound reports that the remote side no longer has the
// requested content. Deletion treats it as success for idempotence.
var ErrRemoteNotFound = errors.New("remote content not found")

// ProgressFunc is invoked with the bytes sent so far and the total.
type ProgressFunc func(sent, total int64)

// UploadResult is returned after a confirmed successful upload.
type UploadResult struct {
	RemoteID     string
	DownloadLink string
	FolderID     string
	FolderCode   string
	AccountID    string // set when the upload minted a guest session
	Duration     time.Duration
	Speed        float64 // bytes per second
}

// Client is the hosting-service capability consumed by the core.
type Client interface {
	// CreateAccount provisions a fresh guest account.
	CreateAccount(ctx context.Context) (*model.AccountCredential, error)

	// CreateFolder creates a remote folder and returns its id and
	// share code.
	CreateFolder(ctx context.Context, name string, cred *model.AccountCredential) (folderID, folderCode string, err error)

	// Upload transfers one file into folderID ("" for the default
	// destination) and reports progress as bytes go out.
	Upload(ctx context.Context, path, folderID string, cred *model.AccountCredential, progress ProgressFunc) (*UploadResult, error)

	// DeleteRemote removes remote content by id. Returns
	// ErrRemoteNotFound when the content is already gone.
	DeleteRemote(ctx context.Context, remoteID string, cred *model.AccountCredential) error
}

// StatusError is a rejection carrying the HTTP status code of the
// response (or the service's envelope status when the HTTP layer
// succeeded).
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("remote error %d: %s", e.Code, e.Status)
	}
	return fmt.Sprintf("remote error %d", e.Code)
}

// IsRetryable classifies an error for the retry policy: server-side
// (5xx) rejections and transport-level network failures are transient;
// everything else is permanent and must not be retried.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	var ne net.Error
	return errors.As(err, &ne)
}
