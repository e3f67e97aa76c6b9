// Package cli implements the gofileup command-line interface.
// Built with cobra; all destructive actions require confirmation
// unless --yes is passed.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	quiet   bool
	cfgFile string

	// upload flags
	uploadCategory string
	uploadDryRun   bool

	// ls flags
	lsCategory    string
	lsSearch      string
	lsSince       string
	lsBefore      string
	lsLargerThan  string
	lsSmallerThan string
	lsExpired     bool
	lsExpiring    bool
	lsSort        string
	lsOrder       string
	lsPage        int
	lsPerPage     int

	// rm flags
	rmForce bool
	rmYes   bool

	// purge flags
	purgeCategory string
	purgeOrphaned bool
	purgeExpired  bool
	purgeBefore   string
	purgeForce    bool
	purgeYes      bool

	// account import flags
	importAccountID string
)

// rootCmd is the base command for gofileup.
var rootCmd = &cobra.Command{
	Use:   "gofileup",
	Short: "Upload files to GoFile and track them locally",
	Long: `gofileup uploads files to GoFile.io and keeps a local record of
every upload: download link, category, size, and how long until the
hosted copy expires.

Categories map to remote folders and are created on first use. All
tracking lives in a local SQLite database; nothing runs in the
background.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Use alternate config file")

	uploadCmd.Flags().StringVarP(&uploadCategory, "category", "c", "", "Category for the uploaded files")
	uploadCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "Show what would be done without uploading")

	lsCmd.Flags().StringVar(&lsCategory, "category", "", "Only files in this category")
	lsCmd.Flags().StringVar(&lsSearch, "search", "", "Only files whose name contains this term")
	lsCmd.Flags().StringVar(&lsSince, "since", "", "Only files uploaded on or after this date (YYYY-MM-DD)")
	lsCmd.Flags().StringVar(&lsBefore, "before", "", "Only files uploaded before this date (YYYY-MM-DD)")
	lsCmd.Flags().StringVar(&lsLargerThan, "larger-than", "", "Only files larger than this size (e.g. 100MB)")
	lsCmd.Flags().StringVar(&lsSmallerThan, "smaller-than", "", "Only files smaller than this size")
	lsCmd.Flags().BoolVar(&lsExpired, "expired", false, "Only expired files")
	lsCmd.Flags().BoolVar(&lsExpiring, "expiring", false, "Only files expiring soon")
	lsCmd.Flags().StringVar(&lsSort, "sort", "date", "Sort field: name, size, date, expiry, category, link")
	lsCmd.Flags().StringVar(&lsOrder, "order", "asc", "Sort order: asc or desc")
	lsCmd.Flags().IntVar(&lsPage, "page", 1, "Page number (1-based)")
	lsCmd.Flags().IntVar(&lsPerPage, "per-page", 20, "Files per page (0 = all)")

	rmCmd.Flags().BoolVar(&rmForce, "force", false, "Drop the local record without touching the remote copy")
	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "Skip confirmation")

	purgeCmd.Flags().StringVar(&purgeCategory, "category", "", "Purge every file in this category")
	purgeCmd.Flags().BoolVar(&purgeOrphaned, "orphaned", false, "Purge files whose category mapping is gone")
	purgeCmd.Flags().BoolVar(&purgeExpired, "expired", false, "Purge expired files")
	purgeCmd.Flags().StringVar(&purgeBefore, "before", "", "Purge files uploaded before this date (YYYY-MM-DD)")
	purgeCmd.Flags().BoolVar(&purgeForce, "force", false, "Drop local records without touching remote copies")
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "Skip confirmation")

	accountImportCmd.Flags().StringVar(&importAccountID, "account-id", "", "Account id the token belongs to")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(accountCmd)

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryRemoveCmd)
	categoryCmd.AddCommand(categoryExportCmd)
	categoryCmd.AddCommand(categoryImportCmd)

	accountCmd.AddCommand(accountShowCmd)
	accountCmd.AddCommand(accountImportCmd)
	accountCmd.AddCommand(accountResetCmd)
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files and track the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunUpload(cmd.Context(), args, uploadCategory, uploadDryRun)
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tracked files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunList(cmd.Context())
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id|name|pattern>",
	Short: "Delete a tracked file remotely and locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRemove(cmd.Context(), args[0], rmForce, rmYes)
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Bulk-delete tracked files matching filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunPurge(cmd.Context())
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage category-to-folder mappings",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List category mappings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCategoryList(cmd.Context())
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a category mapping (files keep their label)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCategoryRemove(cmd.Context(), args[0])
	},
}

var categoryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write category mappings to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCategoryExport(cmd.Context())
	},
}

var categoryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load category mappings from an export file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCategoryImport(cmd.Context(), args[0])
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the guest account credential",
}

var accountShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunAccountShow(cmd.Context())
	},
}

var accountImportCmd = &cobra.Command{
	Use:   "import <token>",
	Short: "Replace the stored credential with an existing token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunAccountImport(cmd.Context(), importAccountID, args[0])
	},
}

var accountResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunAccountReset(cmd.Context())
	},
}
