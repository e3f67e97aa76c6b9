// Package model defines the domain types tracked by gofileup: uploaded
// files, category-to-folder mappings, and the reusable guest credential.
package model

import (
	"math"
	"time"
)

// ExpiryPeriod is the window after which hosted content is expected to
// become unavailable on the remote service. Fixed at build time; the
// expiry of every tracked file is recomputed from it, never stored.
const ExpiryPeriod = 10 * 24 * time.Hour

// ExpiringSoonDays is the number of remaining whole days at or below
// which a file counts as expiring soon.
const ExpiringSoonDays = 4

// ExpiryState classifies a tracked file against ExpiryPeriod.
type ExpiryState string

const (
	ExpiryHealthy      ExpiryState = "healthy"
	ExpiryExpiringSoon ExpiryState = "expiring"
	ExpiryExpired      ExpiryState = "expired"
)

// FileRecord is one tracked upload. A record exists only after the
// remote upload was confirmed successful; it is never mutated in place,
// only created and deleted.
type FileRecord struct {
	ID           string        `json:"id"` // server-assigned, immutable
	Name         string        `json:"name"`
	Size         int64         `json:"size"`
	MimeType     string        `json:"mime_type"`
	UploadedAt   time.Time     `json:"uploaded_at"`
	Duration     time.Duration `json:"upload_duration"`
	Speed        float64       `json:"upload_speed"` // bytes per second
	DownloadLink string        `json:"download_link"`
	FolderID     string        `json:"folder_id"`
	FolderCode   string        `json:"folder_code,omitempty"`
	Category     string        `json:"category,omitempty"` // empty = uncategorized
	AccountID    string        `json:"account_id,omitempty"`
}

// ExpiresAt returns the computed expiry instant.
func (f *FileRecord) ExpiresAt() time.Time {
	return f.UploadedAt.Add(ExpiryPeriod)
}

// RemainingDays returns the whole days left before expiry, floored.
// Negative once the expiry instant is more than a day past.
func (f *FileRecord) RemainingDays(now time.Time) int {
	return RemainingDays(f.UploadedAt, now)
}

// Expiry classifies the record at the given instant.
func (f *FileRecord) Expiry(now time.Time) ExpiryState {
	return ClassifyExpiry(f.UploadedAt, now)
}

// RemainingDays computes floor((uploadedAt + ExpiryPeriod - now) / 24h).
func RemainingDays(uploadedAt, now time.Time) int {
	left := uploadedAt.Add(ExpiryPeriod).Sub(now)
	return int(math.Floor(left.Hours() / 24))
}

// ClassifyExpiry maps an upload timestamp to exactly one expiry state.
// remaining <= 0 is expired, 1..ExpiringSoonDays is expiring soon,
// everything above is healthy; the three states partition every
// timestamp.
func ClassifyExpiry(uploadedAt, now time.Time) ExpiryState {
	switch d := RemainingDays(uploadedAt, now); {
	case d <= 0:
		return ExpiryExpired
	case d <= ExpiringSoonDays:
		return ExpiryExpiringSoon
	default:
		return ExpiryHealthy
	}
}

// CategoryMapping binds a category name (case-sensitive, unique) to a
// remote folder. A mapping may outlive its files, and files may outlive
// the mapping; neither direction cascades.
type CategoryMapping struct {
	Name       string    `json:"name"`
	FolderID   string    `json:"folder_id"`
	FolderCode string    `json:"folder_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AccountCredential is the single reusable guest account for the local
// store. Created lazily on first upload, replaced wholesale on reset.
type AccountCredential struct {
	AccountID string `json:"account_id"`
	Token     string `json:"token"`
}
