package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gofileup/gofileup/internal/model"
)

func TestCombineEmptyMatchesAll(t *testing.T) {
	f := &model.FileRecord{Name: "anything"}
	assert.True(t, Combine()(f))
}

func TestCombineAllMustMatch(t *testing.T) {
	f := &model.FileRecord{Name: "Report.pdf", Size: 2048}

	assert.True(t, Combine(Search("report"), LargerThan(1000))(f))
	assert.False(t, Combine(Search("report"), LargerThan(5000))(f))
}

func TestSearchCaseInsensitive(t *testing.T) {
	f := &model.FileRecord{Name: "Holiday-Video.MP4"}
	assert.True(t, Search("video")(f))
	assert.True(t, Search("HOLIDAY")(f))
	assert.False(t, Search("work")(f))
}

func TestDatePredicates(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	onDay := &model.FileRecord{UploadedAt: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)}
	before := &model.FileRecord{UploadedAt: time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)}
	after := &model.FileRecord{UploadedAt: time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)}

	since := SinceDate(day)
	assert.True(t, since(onDay), "boundary day is included")
	assert.False(t, since(before))
	assert.True(t, since(after))

	bef := BeforeDate(day)
	assert.False(t, bef(onDay), "boundary day is excluded")
	assert.True(t, bef(before))
	assert.False(t, bef(after))
}

func TestSizePredicatesAreStrict(t *testing.T) {
	f := &model.FileRecord{Size: 1000}
	assert.False(t, LargerThan(1000)(f))
	assert.False(t, SmallerThan(1000)(f))
	assert.True(t, LargerThan(999)(f))
	assert.True(t, SmallerThan(1001)(f))
}

func TestCategoryPredicate(t *testing.T) {
	labeled := &model.FileRecord{Category: "Videos"}
	unlabeled := &model.FileRecord{}

	assert.True(t, Category("videos")(labeled))
	assert.False(t, Category("Videos")(unlabeled))
	assert.True(t, Category("")(unlabeled))
	assert.False(t, Category("")(labeled))
}

func TestExpiryPredicatesMutuallyExclusive(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	expired := Expired(now)
	expiring := ExpiringSoon(now)

	for h := 0; h <= 12*24; h += 6 {
		f := &model.FileRecord{UploadedAt: now.Add(-time.Duration(h) * time.Hour)}
		assert.False(t, expired(f) && expiring(f),
			"file %dh old matched both expiry predicates", h)
	}

	assert.True(t, expired(&model.FileRecord{UploadedAt: now.AddDate(0, 0, -11)}))
	assert.True(t, expiring(&model.FileRecord{UploadedAt: now.AddDate(0, 0, -7)}))
	assert.False(t, expired(&model.FileRecord{UploadedAt: now}))
	assert.False(t, expiring(&model.FileRecord{UploadedAt: now}))
}
