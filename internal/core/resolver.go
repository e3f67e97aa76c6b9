package core

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/store"
	"github.com/gofileup/gofileup/internal/transport"
)

// IsPattern reports whether a category token contains wildcard
// metacharacters. Patterns only select existing categories; they never
// create one.
func IsPattern(token string) bool {
	return strings.ContainsAny(token, "*?[")
}

// MatchCategories returns the category names the token selects.
// A literal token matches exactly (case-sensitive); a pattern is
// evaluated with shell-style wildcard rules. An invalid pattern is an
// error, not an empty result.
func MatchCategories(token string, names []string) ([]string, error) {
	if !IsPattern(token) {
		for _, n := range names {
			if n == token {
				return []string{n}, nil
			}
		}
		return nil, nil
	}
	// Validate the pattern up front so a malformed one is reported
	// instead of silently matching nothing.
	if _, err := path.Match(token, ""); err != nil {
		return nil, fmt.Errorf("invalid category pattern %q: %w", token, err)
	}
	var matched []string
	for _, n := range names {
		ok, _ := path.Match(token, n)
		if ok {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// Resolver maps category tokens to folder mappings, creating remote
// folders for new literal names when asked to.
type Resolver struct {
	store    *store.Store
	client   transport.Client
	accounts *AccountManager
	log      *zap.SugaredLogger
}

// NewResolver creates a category resolver.
func NewResolver(st *store.Store, client transport.Client, accounts *AccountManager, log *zap.SugaredLogger) *Resolver {
	return &Resolver{store: st, client: client, accounts: accounts, log: log}
}

// Resolve turns a category token into exactly one mapping.
//
// A literal token resolves to its exact mapping; if absent and
// createIfMissing is set, a remote folder is created and the mapping
// stored. A wildcard token selects among existing mappings only:
// zero matches is model.ErrNotFound, multiple matches is a
// model.AmbiguousError for the caller to disambiguate.
func (r *Resolver) Resolve(ctx context.Context, token string, createIfMissing bool) (*model.CategoryMapping, error) {
	if token == "" {
		return nil, fmt.Errorf("category token must not be empty")
	}

	if !IsPattern(token) {
		mapping, err := r.store.CategoryByName(ctx, token)
		if err != nil {
			return nil, err
		}
		if mapping != nil {
			return mapping, nil
		}
		if !createIfMissing {
			return nil, fmt.Errorf("category %q: %w", token, model.ErrNotFound)
		}
		return r.create(ctx, token)
	}

	cats, err := r.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cats))
	byName := make(map[string]*model.CategoryMapping, len(cats))
	for i, c := range cats {
		names[i] = c.Name
		byName[c.Name] = c
	}

	matched, err := MatchCategories(token, names)
	if err != nil {
		return nil, err
	}
	switch len(matched) {
	case 0:
		return nil, fmt.Errorf("category pattern %q: %w", token, model.ErrNotFound)
	case 1:
		return byName[matched[0]], nil
	default:
		return nil, &model.AmbiguousError{Token: token, Candidates: matched}
	}
}

func (r *Resolver) create(ctx context.Context, name string) (*model.CategoryMapping, error) {
	cred, err := r.accounts.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	folderID, folderCode, err := r.client.CreateFolder(ctx, name, cred)
	if err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}

	mapping := &model.CategoryMapping{
		Name:       name,
		FolderID:   folderID,
		FolderCode: folderCode,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.store.SaveCategory(ctx, mapping); err != nil {
		return nil, err
	}
	r.log.Infow("category created", "name", name, "folder_id", folderID)
	return mapping, nil
}
