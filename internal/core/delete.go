package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/store"
	"github.com/gofileup/gofileup/internal/transport"
)

// DeletionCoordinator removes tracked files remote-first: the remote
// copy goes before the local record, so a failure leaves the record in
// place rather than orphaning live remote content.
type DeletionCoordinator struct {
	store  *store.Store
	client transport.Client
	log    *zap.SugaredLogger
}

// NewDeletionCoordinator creates a deletion coordinator.
func NewDeletionCoordinator(st *store.Store, client transport.Client, log *zap.SugaredLogger) *DeletionCoordinator {
	return &DeletionCoordinator{store: st, client: client, log: log}
}

// DeleteResult summarizes a deletion run.
type DeleteResult struct {
	Deleted []*model.FileRecord
	Failed  []*model.FileRecord
	Errors  []error
}

// PurgePreview reports what a purge would remove.
type PurgePreview struct {
	Files     []*model.FileRecord
	TotalSize int64
}

// FindBySelector resolves a deletion selector to tracked files.
// Resolution order: exact id, then exact name, then wildcard pattern.
// An exact name hitting several files is ambiguous and surfaced; a
// pattern deliberately selects every match.
func (dc *DeletionCoordinator) FindBySelector(ctx context.Context, selector string) ([]*model.FileRecord, error) {
	if f, err := dc.store.FileByID(ctx, selector); err != nil {
		return nil, err
	} else if f != nil {
		return []*model.FileRecord{f}, nil
	}

	if !IsPattern(selector) {
		files, err := dc.store.FilesByName(ctx, selector)
		if err != nil {
			return nil, err
		}
		switch len(files) {
		case 0:
			return nil, fmt.Errorf("file %q: %w", selector, model.ErrNotFound)
		case 1:
			return files, nil
		default:
			ids := make([]string, len(files))
			for i, f := range files {
				ids[i] = f.ID
			}
			return nil, &model.AmbiguousError{Token: selector, Candidates: ids}
		}
	}

	all, err := dc.store.AllFiles(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := matchFiles(selector, all)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("pattern %q: %w", selector, model.ErrNotFound)
	}
	return matched, nil
}

func matchFiles(pattern string, files []*model.FileRecord) ([]*model.FileRecord, error) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	// MatchCategories implements plain wildcard matching over names;
	// reuse it rather than duplicating pattern validation.
	matchedNames, err := MatchCategories(pattern, names)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(matchedNames))
	for _, n := range matchedNames {
		set[n] = true
	}
	var matched []*model.FileRecord
	for _, f := range files {
		if set[f.Name] {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// Delete removes the files a selector resolves to. With force set, the
// remote copy is left alone and only the local records go.
func (dc *DeletionCoordinator) Delete(ctx context.Context, selector string, force bool) (*DeleteResult, error) {
	files, err := dc.FindBySelector(ctx, selector)
	if err != nil {
		return nil, err
	}
	return dc.deleteAll(ctx, files, force), nil
}

func (dc *DeletionCoordinator) deleteAll(ctx context.Context, files []*model.FileRecord, force bool) *DeleteResult {
	res := &DeleteResult{}
	for _, f := range files {
		if err := dc.deleteOne(ctx, f, force); err != nil {
			res.Failed = append(res.Failed, f)
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", f.Name, err))
			dc.log.Errorw("delete failed", "file", f.Name, "id", f.ID, "error", err)
			continue
		}
		res.Deleted = append(res.Deleted, f)
	}
	return res
}

// deleteOne removes remote content then the local record. A remote
// not-found counts as success so re-running a partial delete
// converges. Any other remote failure keeps the record.
func (dc *DeletionCoordinator) deleteOne(ctx context.Context, f *model.FileRecord, force bool) error {
	if !force {
		cred, err := dc.store.Credential(ctx)
		if err != nil {
			return err
		}
		if cred == nil {
			return &model.InconsistentStateError{
				Reason: fmt.Sprintf("file %s is tracked but no credential is stored; use force to drop the local record", f.ID),
			}
		}
		if err := dc.client.DeleteRemote(ctx, f.ID, cred); err != nil {
			if !errors.Is(err, transport.ErrRemoteNotFound) {
				return err
			}
			dc.log.Infow("remote content already gone", "id", f.ID)
		}
	}

	existed, err := dc.store.DeleteFile(ctx, f.ID)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("record %s: %w", f.ID, model.ErrNotFound)
	}
	return nil
}

// PreviewPurge reports which tracked files the predicates select,
// without mutating anything.
func (dc *DeletionCoordinator) PreviewPurge(ctx context.Context, preds ...Predicate) (*PurgePreview, error) {
	all, err := dc.store.AllFiles(ctx)
	if err != nil {
		return nil, err
	}
	match := Combine(preds...)

	preview := &PurgePreview{}
	for _, f := range all {
		if match(f) {
			preview.Files = append(preview.Files, f)
			preview.TotalSize += f.Size
		}
	}
	return preview, nil
}

// ExecutePurge deletes a previously previewed set of files.
func (dc *DeletionCoordinator) ExecutePurge(ctx context.Context, files []*model.FileRecord, force bool) *DeleteResult {
	return dc.deleteAll(ctx, files, force)
}

// PurgeCategory previews a purge of every file labeled with the
// category, matched case-insensitively. It works off the file labels
// alone, so files keeping a label whose mapping was removed are still
// found.
func (dc *DeletionCoordinator) PurgeCategory(ctx context.Context, name string) (*PurgePreview, error) {
	return dc.PreviewPurge(ctx, Category(name))
}

// RemoveCategory deletes a category mapping by exact name. Files
// labeled with the category are never touched; the label simply stops
// resolving to a folder.
func (dc *DeletionCoordinator) RemoveCategory(ctx context.Context, name string) error {
	existed, err := dc.store.RemoveCategory(ctx, name)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("category %q: %w", name, model.ErrNotFound)
	}
	dc.log.Infow("category mapping removed", "name", name)
	return nil
}

// OrphanedFiles returns tracked files labeled with a category that no
// longer has a mapping. Comparison is exact, matching how mappings are
// keyed.
func (dc *DeletionCoordinator) OrphanedFiles(ctx context.Context) ([]*model.FileRecord, error) {
	cats, err := dc.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.Name] = true
	}

	all, err := dc.store.AllFiles(ctx)
	if err != nil {
		return nil, err
	}
	var orphaned []*model.FileRecord
	for _, f := range all {
		if f.Category != "" && !known[f.Category] {
			orphaned = append(orphaned, f)
		}
	}
	return orphaned, nil
}
