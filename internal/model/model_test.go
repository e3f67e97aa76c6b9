package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyExpiry(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		uploadedAt time.Time
		want       ExpiryState
	}{
		{"fresh upload", now, ExpiryHealthy},
		{"five days old", now.AddDate(0, 0, -5), ExpiryHealthy},
		{"six days old", now.AddDate(0, 0, -6), ExpiryExpiringSoon},
		{"nine days old", now.AddDate(0, 0, -9), ExpiryExpiringSoon},
		// Under a whole day left still floors to 0 remaining days.
		{"hours before expiry", now.Add(-ExpiryPeriod).Add(time.Hour), ExpiryExpired},
		{"exactly ten days", now.Add(-ExpiryPeriod), ExpiryExpired},
		{"long expired", now.AddDate(0, 0, -30), ExpiryExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyExpiry(tt.uploadedAt, now))
		})
	}
}

func TestRemainingDaysFloor(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// 9.5 days left floors to 9 whole days.
	uploaded := now.Add(-12 * time.Hour)
	assert.Equal(t, 9, RemainingDays(uploaded, now))

	// Half a day past expiry floors to -1.
	uploaded = now.Add(-ExpiryPeriod).Add(-12 * time.Hour)
	assert.Equal(t, -1, RemainingDays(uploaded, now))
}

func TestExpiryStatesPartition(t *testing.T) {
	// Every timestamp must land in exactly one state; sweep across the
	// window in 6h steps.
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	for h := 0; h <= 12*24; h += 6 {
		uploaded := now.Add(-time.Duration(h) * time.Hour)
		state := ClassifyExpiry(uploaded, now)
		switch state {
		case ExpiryHealthy, ExpiryExpiringSoon, ExpiryExpired:
		default:
			t.Fatalf("unclassified state %q at %dh", state, h)
		}
	}
}

func TestFileRecordExpiresAt(t *testing.T) {
	uploaded := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &FileRecord{UploadedAt: uploaded}
	assert.Equal(t, uploaded.AddDate(0, 0, 10), f.ExpiresAt())
}
