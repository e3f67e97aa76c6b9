package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofileup/gofileup/internal/model"
)

func seedCategories(t *testing.T, st interface {
	SaveCategory(ctx context.Context, c *model.CategoryMapping) error
}, names ...string) {
	t.Helper()
	for i, n := range names {
		require.NoError(t, st.SaveCategory(context.Background(), &model.CategoryMapping{
			Name:      n,
			FolderID:  "folder-" + n,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestResolveExactMatch(t *testing.T) {
	st, client, _, resolver := newTestEngine(t)
	seedCategories(t, st, "Videos", "VideoClips")

	m, err := resolver.Resolve(context.Background(), "Videos", false)
	require.NoError(t, err)
	assert.Equal(t, "Videos", m.Name)
	assert.Equal(t, 0, client.folders, "existing category creates nothing")
}

func TestResolveExactIsCaseSensitive(t *testing.T) {
	st, _, _, resolver := newTestEngine(t)
	seedCategories(t, st, "Videos")

	_, err := resolver.Resolve(context.Background(), "videos", false)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolveCreatesMissingLiteral(t *testing.T) {
	st, client, _, resolver := newTestEngine(t)

	m, err := resolver.Resolve(context.Background(), "Music", true)
	require.NoError(t, err)
	assert.Equal(t, "Music", m.Name)
	assert.Equal(t, 1, client.folders)
	assert.Equal(t, 1, client.accounts, "creation provisions the guest account")

	// Now persisted; a second resolve reuses the mapping.
	m2, err := resolver.Resolve(context.Background(), "Music", true)
	require.NoError(t, err)
	assert.Equal(t, m.FolderID, m2.FolderID)
	assert.Equal(t, 1, client.folders)

	stored, err := st.CategoryByName(context.Background(), "Music")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestResolveWildcardSingleMatch(t *testing.T) {
	st, client, _, resolver := newTestEngine(t)
	seedCategories(t, st, "Videos", "Docs")

	m, err := resolver.Resolve(context.Background(), "Vid*", true)
	require.NoError(t, err)
	assert.Equal(t, "Videos", m.Name)
	assert.Equal(t, 0, client.folders, "patterns never create categories")
}

func TestResolveWildcardAmbiguous(t *testing.T) {
	st, _, _, resolver := newTestEngine(t)
	seedCategories(t, st, "Videos", "VideoClips")

	_, err := resolver.Resolve(context.Background(), "Video*", true)
	var amb *model.AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.ElementsMatch(t, []string{"Videos", "VideoClips"}, amb.Candidates)
}

func TestResolveWildcardNoMatch(t *testing.T) {
	st, client, _, resolver := newTestEngine(t)
	seedCategories(t, st, "Docs")

	_, err := resolver.Resolve(context.Background(), "Video*", true)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 0, client.folders)
}

func TestMatchCategoriesInvalidPattern(t *testing.T) {
	_, err := MatchCategories("[", []string{"a"})
	assert.Error(t, err)
}

func TestResolveMissingLiteralWithoutCreate(t *testing.T) {
	_, client, _, resolver := newTestEngine(t)

	_, err := resolver.Resolve(context.Background(), "Music", false)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 0, client.folders)
	assert.Equal(t, 0, client.accounts)
}
