package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/store"
	"github.com/gofileup/gofileup/internal/transport"
	"github.com/gofileup/gofileup/internal/transport/gofile"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 2 * time.Second
)

// uploadPhase is the state of one upload's retry loop.
type uploadPhase int

const (
	phaseAttempting uploadPhase = iota
	phaseBackoff
	phaseSucceeded
	phaseExhausted
)

// UploadOptions tunes one upload call.
type UploadOptions struct {
	// DryRun resolves credentials and the category without creating
	// anything remotely and without transferring or persisting.
	DryRun bool

	// Progress receives transfer progress callbacks.
	Progress transport.ProgressFunc
}

// Orchestrator drives uploads end to end: resolve the destination,
// transfer with bounded retry, and persist the confirmed result.
type Orchestrator struct {
	store    *store.Store
	client   transport.Client
	resolver *Resolver
	accounts *AccountManager
	log      *zap.SugaredLogger

	maxAttempts    int
	initialBackoff time.Duration
}

// NewOrchestrator creates an upload orchestrator.
func NewOrchestrator(st *store.Store, client transport.Client, resolver *Resolver, accounts *AccountManager, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		store:          st,
		client:         client,
		resolver:       resolver,
		accounts:       accounts,
		log:            log,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
	}
}

// Upload transfers one file, categorized by categoryToken ("" for
// uncategorized). The returned record is persisted unless opts.DryRun
// is set, in which case it previews the outcome without any mutation.
func (o *Orchestrator) Upload(ctx context.Context, path, categoryToken string, opts UploadOptions) (*model.FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &model.UploadError{Path: path, Attempts: 0, Err: err}
	}
	if info.IsDir() {
		return nil, &model.UploadError{Path: path, Attempts: 0, Err: fmt.Errorf("is a directory")}
	}

	if opts.DryRun {
		return o.dryRun(ctx, path, categoryToken, info.Size())
	}

	cred, err := o.accounts.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	var mapping *model.CategoryMapping
	if categoryToken != "" {
		mapping, err = o.resolver.Resolve(ctx, categoryToken, true)
		if err != nil {
			return nil, err
		}
	}

	folderID := ""
	if mapping != nil {
		folderID = mapping.FolderID
	}

	result, attempts, err := o.attempt(ctx, path, folderID, cred, opts.Progress)
	if err != nil {
		return nil, &model.UploadError{
			Path:      path,
			Transient: transport.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded),
			Attempts:  attempts,
			Err:       err,
		}
	}

	rec := &model.FileRecord{
		ID:           result.RemoteID,
		Name:         filepath.Base(path),
		Size:         info.Size(),
		MimeType:     gofile.MimeType(path),
		UploadedAt:   time.Now().UTC(),
		Duration:     result.Duration,
		Speed:        result.Speed,
		DownloadLink: result.DownloadLink,
		FolderID:     result.FolderID,
		FolderCode:   result.FolderCode,
		AccountID:    cred.AccountID,
	}
	if mapping != nil {
		rec.Category = mapping.Name
		rec.FolderCode = mapping.FolderCode
	}

	if err := o.store.SaveFile(ctx, rec); err != nil {
		return nil, err
	}
	o.log.Infow("upload tracked",
		"file", rec.Name, "id", rec.ID, "category", rec.Category, "attempts", attempts)
	return rec, nil
}

// dryRun walks the resolution path read-only: it reports the stored
// credential and category mapping as they stand, creating neither.
func (o *Orchestrator) dryRun(ctx context.Context, path, categoryToken string, size int64) (*model.FileRecord, error) {
	rec := &model.FileRecord{
		Name:     filepath.Base(path),
		Size:     size,
		MimeType: gofile.MimeType(path),
	}

	cred, err := o.accounts.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cred != nil {
		rec.AccountID = cred.AccountID
	}

	if categoryToken != "" {
		mapping, err := o.resolver.Resolve(ctx, categoryToken, false)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		if mapping != nil {
			rec.Category = mapping.Name
			rec.FolderID = mapping.FolderID
			rec.FolderCode = mapping.FolderCode
		} else if !IsPattern(categoryToken) {
			// A missing literal category would be created on the real
			// run; preview it under its would-be name.
			rec.Category = categoryToken
		}
	}
	return rec, nil
}

// attempt runs the bounded retry loop for one transfer. Only transient
// failures (network errors, server-side rejections) are retried, with
// a doubling delay between attempts.
func (o *Orchestrator) attempt(ctx context.Context, path, folderID string, cred *model.AccountCredential, progress transport.ProgressFunc) (*transport.UploadResult, int, error) {
	var (
		phase   = phaseAttempting
		attempt = 0
		delay   = o.initialBackoff
		lastErr error
		result  *transport.UploadResult
	)

	for {
		switch phase {
		case phaseAttempting:
			attempt++
			res, err := o.client.Upload(ctx, path, folderID, cred, progress)
			if err == nil {
				result = res
				phase = phaseSucceeded
				break
			}
			lastErr = err
			if !transport.IsRetryable(err) || attempt >= o.maxAttempts {
				phase = phaseExhausted
				break
			}
			o.log.Warnw("upload attempt failed, retrying",
				"file", filepath.Base(path), "attempt", attempt, "delay", delay, "error", err)
			phase = phaseBackoff

		case phaseBackoff:
			select {
			case <-ctx.Done():
				return nil, attempt, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			phase = phaseAttempting

		case phaseSucceeded:
			return result, attempt, nil

		case phaseExhausted:
			return nil, attempt, lastErr
		}
	}
}

// BatchOutcome is the per-file result of a batch upload.
type BatchOutcome struct {
	Path   string
	Record *model.FileRecord
	Err    error
}

// BatchResult summarizes an UploadBatch call.
type BatchResult struct {
	BatchID  string
	Outcomes []BatchOutcome
}

// Succeeded returns the number of files uploaded and tracked.
func (r *BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// UploadBatch uploads files serially. The category is resolved once up
// front so an ambiguous or invalid token aborts before any transfer;
// individual file failures are recorded and the batch continues, but a
// cancelled context stops it.
func (o *Orchestrator) UploadBatch(ctx context.Context, paths []string, categoryToken string, opts UploadOptions) (*BatchResult, error) {
	if categoryToken != "" && !opts.DryRun {
		if _, err := o.resolver.Resolve(ctx, categoryToken, true); err != nil {
			return nil, err
		}
	}

	result := &BatchResult{BatchID: uuid.New().String()}
	o.log.Infow("batch upload started",
		"batch_id", result.BatchID, "files", len(paths), "category", categoryToken)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			o.log.Warnw("batch upload interrupted",
				"batch_id", result.BatchID, "completed", len(result.Outcomes), "error", err)
			return result, err
		}
		rec, err := o.Upload(ctx, p, categoryToken, opts)
		result.Outcomes = append(result.Outcomes, BatchOutcome{Path: p, Record: rec, Err: err})
		if err != nil {
			o.log.Errorw("batch upload failed for file",
				"batch_id", result.BatchID, "file", p, "error", err)
		}
	}
	o.log.Infow("batch upload finished",
		"batch_id", result.BatchID, "succeeded", result.Succeeded(), "failed", len(result.Outcomes)-result.Succeeded())
	return result, nil
}
