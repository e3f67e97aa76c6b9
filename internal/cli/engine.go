// Package cli wiring: engine construction and command implementations.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/gofileup/gofileup/internal/config"
	"github.com/gofileup/gofileup/internal/core"
	"github.com/gofileup/gofileup/internal/logging"
	"github.com/gofileup/gofileup/internal/model"
	"github.com/gofileup/gofileup/internal/parse"
	"github.com/gofileup/gofileup/internal/store"
	"github.com/gofileup/gofileup/internal/transport"
	"github.com/gofileup/gofileup/internal/transport/gofile"
)

// Engine holds the wired core components.
type Engine struct {
	Store    *store.Store
	Client   transport.Client
	Accounts *core.AccountManager
	Resolver *core.Resolver
	Uploads  *core.Orchestrator
	Deletes  *core.DeletionCoordinator
	Query    *core.QueryEngine
	Log      *zap.SugaredLogger
	Config   *config.Config
}

var engine *Engine

// InitEngine loads config and wires the components.
func InitEngine() (*Engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if quiet {
		level = "error"
	}
	log, err := logging.New(level, cfg.Log.Format, cfg.Log.OutputPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Init(context.Background()); err != nil {
		st.Close()
		return nil, err
	}

	client := gofile.New()
	accounts := core.NewAccountManager(st, client, log)
	resolver := core.NewResolver(st, client, accounts, log)

	return &Engine{
		Store:    st,
		Client:   client,
		Accounts: accounts,
		Resolver: resolver,
		Uploads:  core.NewOrchestrator(st, client, resolver, accounts, log),
		Deletes:  core.NewDeletionCoordinator(st, client, log),
		Query:    core.NewQueryEngine(st),
		Log:      log,
		Config:   cfg,
	}, nil
}

// GetEngine returns the engine, initializing if needed.
func GetEngine() (*Engine, error) {
	if engine != nil {
		return engine, nil
	}
	var err error
	engine, err = InitEngine()
	return engine, err
}

// ConfirmAction prompts the user for confirmation.
func ConfirmAction(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// --- Command Implementations ---

// RunUpload uploads each file serially and reports per-file results.
func RunUpload(ctx context.Context, paths []string, category string, dryRun bool) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	opts := core.UploadOptions{DryRun: dryRun}
	if !quiet && !dryRun {
		opts.Progress = progressPrinter()
	}

	result, err := e.Uploads.UploadBatch(ctx, paths, category, opts)
	if err != nil {
		return err
	}

	for _, out := range result.Outcomes {
		if out.Err != nil {
			fmt.Printf("✗ %s: %v\n", out.Path, out.Err)
			continue
		}
		if dryRun {
			fmt.Printf("[DRY-RUN] Would upload %s (%s)", out.Record.Name, humanize.IBytes(uint64(out.Record.Size)))
			if out.Record.Category != "" {
				fmt.Printf(" to category %q", out.Record.Category)
			}
			fmt.Println()
			continue
		}
		fmt.Printf("✓ %s\n", out.Record.Name)
		fmt.Printf("  Link:     %s\n", out.Record.DownloadLink)
		fmt.Printf("  Size:     %s\n", humanize.IBytes(uint64(out.Record.Size)))
		if out.Record.Category != "" {
			fmt.Printf("  Category: %s\n", out.Record.Category)
		}
		fmt.Printf("  Expires:  %s (%d days)\n",
			out.Record.ExpiresAt().Format("2006-01-02"),
			out.Record.RemainingDays(time.Now().UTC()))
	}

	failed := len(result.Outcomes) - result.Succeeded()
	if failed > 0 && !dryRun {
		return fmt.Errorf("%d of %d uploads failed", failed, len(result.Outcomes))
	}
	return nil
}

func progressPrinter() transport.ProgressFunc {
	var lastPct int = -1
	return func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := int(sent * 100 / total)
		if pct != lastPct {
			lastPct = pct
			fmt.Printf("\r  %3d%% (%s / %s)", pct,
				humanize.IBytes(uint64(sent)), humanize.IBytes(uint64(total)))
			if pct == 100 {
				fmt.Println()
			}
		}
	}
}

// RunList prints one page of tracked files after applying the ls
// filter flags.
func RunList(ctx context.Context) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	preds, err := buildPredicates(lsCategory, lsSearch, lsSince, lsBefore,
		lsLargerThan, lsSmallerThan, lsExpired, lsExpiring)
	if err != nil {
		return err
	}

	field, err := core.ParseSortField(lsSort)
	if err != nil {
		return err
	}
	order, err := core.ParseSortOrder(lsOrder)
	if err != nil {
		return err
	}

	files, total, err := e.Query.Query(ctx, preds, field, order, lsPage, lsPerPage)
	if err != nil {
		return err
	}

	if total == 0 {
		fmt.Println("No tracked files.")
		return nil
	}

	now := time.Now().UTC()
	fmt.Printf("%-24s %-10s %-12s %-12s %-8s %s\n",
		"Name", "Size", "Uploaded", "Category", "Expiry", "Link")
	fmt.Println(strings.Repeat("─", 100))
	for _, f := range files {
		name := f.Name
		if len(name) > 23 {
			name = name[:20] + "..."
		}
		cat := f.Category
		if cat == "" {
			cat = "-"
		}
		fmt.Printf("%-24s %-10s %-12s %-12s %-8s %s\n",
			name,
			humanize.IBytes(uint64(f.Size)),
			f.UploadedAt.Format("2006-01-02"),
			cat,
			expiryLabel(f, now),
			f.DownloadLink)
	}

	if lsPerPage > 0 && total > len(files) {
		pages := (total + lsPerPage - 1) / lsPerPage
		fmt.Printf("\nPage %d of %d (%d files)\n", lsPage, pages, total)
	} else {
		fmt.Printf("\n%d file(s)\n", total)
	}
	return nil
}

func expiryLabel(f *model.FileRecord, now time.Time) string {
	switch f.Expiry(now) {
	case model.ExpiryExpired:
		return "expired"
	case model.ExpiryExpiringSoon:
		return fmt.Sprintf("%dd left!", f.RemainingDays(now))
	default:
		return fmt.Sprintf("%dd", f.RemainingDays(now))
	}
}

func buildPredicates(category, search, since, before, largerThan, smallerThan string, expired, expiring bool) ([]core.Predicate, error) {
	var preds []core.Predicate
	if category != "" {
		preds = append(preds, core.Category(category))
	}
	if search != "" {
		preds = append(preds, core.Search(search))
	}
	if since != "" {
		day, err := parse.Date(since)
		if err != nil {
			return nil, err
		}
		preds = append(preds, core.SinceDate(day))
	}
	if before != "" {
		day, err := parse.Date(before)
		if err != nil {
			return nil, err
		}
		preds = append(preds, core.BeforeDate(day))
	}
	if largerThan != "" {
		n, err := parse.Size(largerThan)
		if err != nil {
			return nil, err
		}
		preds = append(preds, core.LargerThan(n))
	}
	if smallerThan != "" {
		n, err := parse.Size(smallerThan)
		if err != nil {
			return nil, err
		}
		preds = append(preds, core.SmallerThan(n))
	}
	now := time.Now().UTC()
	if expired {
		preds = append(preds, core.Expired(now))
	}
	if expiring {
		preds = append(preds, core.ExpiringSoon(now))
	}
	return preds, nil
}

// RunRemove deletes the files a selector resolves to.
func RunRemove(ctx context.Context, selector string, force, yes bool) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	files, err := e.Deletes.FindBySelector(ctx, selector)
	if err != nil {
		var amb *model.AmbiguousError
		if errors.As(err, &amb) {
			fmt.Printf("%q matches several files; delete by id:\n", selector)
			for _, id := range amb.Candidates {
				fmt.Printf("  %s\n", id)
			}
		}
		return err
	}

	if !yes {
		fmt.Printf("About to delete %d file(s):\n", len(files))
		for _, f := range files {
			fmt.Printf("  %s (%s)\n", f.Name, f.ID)
		}
		if force {
			fmt.Println("Remote copies will be left in place (--force).")
		}
		if !ConfirmAction("Proceed?") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	res, err := e.Deletes.Delete(ctx, selector, force)
	if err != nil {
		return err
	}
	return reportDeleteResult(res)
}

// RunPurge bulk-deletes files selected by the purge flags, previewing
// first.
func RunPurge(ctx context.Context) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	var preview *core.PurgePreview
	switch {
	case purgeOrphaned:
		orphaned, err := e.Deletes.OrphanedFiles(ctx)
		if err != nil {
			return err
		}
		preview = &core.PurgePreview{Files: orphaned}
		for _, f := range orphaned {
			preview.TotalSize += f.Size
		}
	case purgeCategory != "":
		preview, err = e.Deletes.PurgeCategory(ctx, purgeCategory)
		if err != nil {
			return err
		}
	default:
		var preds []core.Predicate
		if purgeExpired {
			preds = append(preds, core.Expired(time.Now().UTC()))
		}
		if purgeBefore != "" {
			day, err := parse.Date(purgeBefore)
			if err != nil {
				return err
			}
			preds = append(preds, core.BeforeDate(day))
		}
		if len(preds) == 0 {
			return fmt.Errorf("purge needs a selection: --category, --orphaned, --expired, or --before")
		}
		preview, err = e.Deletes.PreviewPurge(ctx, preds...)
		if err != nil {
			return err
		}
	}

	if len(preview.Files) == 0 {
		fmt.Println("Nothing to purge.")
		return nil
	}

	fmt.Printf("Purge preview: %d file(s), %s\n",
		len(preview.Files), humanize.IBytes(uint64(preview.TotalSize)))
	if !quiet {
		for _, f := range preview.Files {
			fmt.Printf("  %s (%s)\n", f.Name, f.ID)
		}
	}

	if !purgeYes && !ConfirmAction("Permanently delete these files?") {
		fmt.Println("Cancelled.")
		return nil
	}

	res := e.Deletes.ExecutePurge(ctx, preview.Files, purgeForce)
	return reportDeleteResult(res)
}

func reportDeleteResult(res *core.DeleteResult) error {
	for _, f := range res.Deleted {
		fmt.Printf("✓ Deleted %s\n", f.Name)
	}
	for i, f := range res.Failed {
		fmt.Printf("✗ %s: %v\n", f.Name, res.Errors[i])
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d deletions failed", len(res.Failed), len(res.Deleted)+len(res.Failed))
	}
	return nil
}

// RunCategoryList prints every mapping with its tracked file count.
func RunCategoryList(ctx context.Context) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	cats, err := e.Store.Categories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Println("No categories.")
		return nil
	}

	fmt.Printf("%-20s %-24s %-10s %s\n", "Name", "Folder ID", "Code", "Files")
	fmt.Println(strings.Repeat("─", 66))
	for _, c := range cats {
		files, err := e.Store.FilesByCategory(ctx, c.Name)
		if err != nil {
			return err
		}
		code := c.FolderCode
		if code == "" {
			code = "-"
		}
		fmt.Printf("%-20s %-24s %-10s %d\n", c.Name, c.FolderID, code, len(files))
	}
	return nil
}

// RunCategoryRemove removes one mapping; files keep their label.
func RunCategoryRemove(ctx context.Context, name string) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	files, err := e.Store.FilesByCategory(ctx, name)
	if err != nil {
		return err
	}
	if err := e.Deletes.RemoveCategory(ctx, name); err != nil {
		return err
	}

	fmt.Printf("✓ Removed category %q\n", name)
	if len(files) > 0 {
		fmt.Printf("  %d file(s) keep the label; find them with 'purge --orphaned' if unwanted\n", len(files))
	}
	return nil
}

// RunCategoryExport writes mappings to stdout in import format.
func RunCategoryExport(ctx context.Context) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	cats, err := e.Store.Categories(ctx)
	if err != nil {
		return err
	}
	return core.ExportCategories(os.Stdout, cats)
}

// RunCategoryImport loads mappings from an export file.
func RunCategoryImport(ctx context.Context, path string) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	mappings, err := core.ImportCategories(f)
	if err != nil {
		return err
	}
	for _, m := range mappings {
		if err := e.Store.SaveCategory(ctx, m); err != nil {
			return err
		}
	}
	fmt.Printf("✓ Imported %d categories\n", len(mappings))
	return nil
}

// RunAccountShow prints the stored credential.
func RunAccountShow(ctx context.Context) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	cred, err := e.Accounts.Current(ctx)
	if err != nil {
		return err
	}
	if cred == nil {
		fmt.Println("No guest account yet; one is created on first upload.")
		return nil
	}
	fmt.Printf("Account ID: %s\n", cred.AccountID)
	fmt.Printf("Token:      %s\n", cred.Token)
	return nil
}

// RunAccountImport stores an externally obtained token.
func RunAccountImport(ctx context.Context, accountID, token string) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	if err := e.Accounts.Import(ctx, accountID, token); err != nil {
		return err
	}
	fmt.Println("✓ Credential imported")
	return nil
}

// RunAccountReset forgets the stored credential after confirmation.
func RunAccountReset(ctx context.Context) error {
	e, err := GetEngine()
	if err != nil {
		return err
	}

	fmt.Println("Files uploaded under the current account stay tracked but")
	fmt.Println("can no longer be deleted remotely without re-importing its token.")
	if !ConfirmAction("Reset the guest account?") {
		fmt.Println("Cancelled.")
		return nil
	}
	if err := e.Accounts.Reset(ctx); err != nil {
		return err
	}
	fmt.Println("✓ Credential reset")
	return nil
}
