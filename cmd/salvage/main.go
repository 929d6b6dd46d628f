package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"salvage-go/internal/app"
	"salvage-go/internal/config"
	"salvage-go/internal/salvage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, salvage.ErrProjectsDirNotFound) {
			fmt.Fprintf(os.Stderr, "No Claude projects found: %v\n", err)
			fmt.Fprintln(os.Stderr, "Use --claude-dir or set claude_dir in the config file.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when it does not
// exist, and applies the --claude-dir override.
func loadConfig(cmd *cobra.Command) (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	if dir, _ := cmd.Flags().GetString("claude-dir"); dir != "" {
		cfg.ClaudeDir = dir
	}
	return cfg, defaults, nil
}

// newApp creates a SalvageApp from cfg. The caller must defer app.Close().
func newApp(cfg *config.Config, command, params string, confirm salvage.Confirmer) (*app.SalvageApp, error) {
	a, err := app.NewSalvageApp(cfg, command, params, confirm)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// resolveProject looks the project up and, when several match and the user
// is at a terminal, asks which one was meant.
func resolveProject(a *app.SalvageApp, prompter *app.Prompter, query string) (string, error) {
	dir, err := a.FindProject(query)
	var ambiguous *salvage.AmbiguousProjectError
	switch {
	case err == nil:
		return dir, nil
	case errors.Is(err, salvage.ErrProjectNotFound):
		return "", fmt.Errorf("%w (use 'salvage projects' to list them)", err)
	case !errors.As(err, &ambiguous) || !prompter.Interactive():
		return "", err
	}

	fmt.Printf("Multiple projects match '%s':\n", query)
	for i, c := range ambiguous.Candidates {
		fmt.Printf("  %d. %s\n", i+1, salvage.ProjectName(filepath.Base(c)))
	}
	answer, err := prompter.Ask("Select project")
	if err != nil {
		return "", err
	}
	indices, cancelled, err := app.ParseSelection(answer, len(ambiguous.Candidates))
	if err != nil || cancelled || len(indices) != 1 {
		return "", fmt.Errorf("invalid project selection %q", answer)
	}
	return ambiguous.Candidates[indices[0]], nil
}

var rootCmd = &cobra.Command{
	Use:           "salvage",
	Short:         "Recover files from Claude Code conversation logs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		projectsDir, err := cfg.ProjectsDir()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Claude Dir:         %s\n", cfg.ClaudeDir)
		fmt.Printf("Projects Dir:       %s\n", projectsDir)
		fmt.Printf("Log Dir:            %s\n", cfg.LogDir)
		fmt.Printf("Target Dir:         %s\n", cfg.Recovery.TargetDir)
		fmt.Printf("Preserve Structure: %t\n", cfg.Recovery.PreserveStructure)
		fmt.Printf("Backups:            %t\n", cfg.Recovery.Backups)
		fmt.Printf("Scan Limit:         %d\n", cfg.Scan.Limit)
		if len(cfg.Scan.Ignore) > 0 {
			fmt.Printf("Ignore:             %s\n", strings.Join(cfg.Scan.Ignore, ", "))
		}
		return nil
	},
}

// projects command
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects and their recoverable files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, "projects", "", nil)
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.Projects()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No Claude Code projects found.")
			fmt.Printf("Looked in: %s\n", a.ProjectsDir())
			return nil
		}

		printProjects(os.Stdout, summaries)
		fmt.Println()
		fmt.Println("Use 'salvage scan <project>' to see recoverable files.")
		fmt.Println("Use 'salvage recover <project>' to recover them.")
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan PROJECT",
	Short: "List the recoverable files of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("type") {
			cfg.Scan.FileType, _ = cmd.Flags().GetString("type")
		}
		if cmd.Flags().Changed("limit") {
			cfg.Scan.Limit, _ = cmd.Flags().GetInt("limit")
		}
		preview, _ := cmd.Flags().GetBool("preview")

		prompter := app.NewTerminalPrompter(os.Stdin, os.Stdout)
		a, err := newApp(cfg, "scan", args[0], nil)
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := resolveProject(a, prompter, args[0])
		if err != nil {
			return err
		}
		files, err := a.Files(dir, cfg.Scan.FileType)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			if cfg.Scan.FileType != "" {
				fmt.Printf("No %s files found in this project.\n", cfg.Scan.FileType)
			} else {
				fmt.Println("No recoverable files found in this project.")
			}
			return nil
		}

		printScanSummary(os.Stdout, files)
		shown := files
		if cfg.Scan.Limit > 0 && len(shown) > cfg.Scan.Limit {
			shown = shown[:cfg.Scan.Limit]
		}
		printFiles(os.Stdout, shown, preview)
		if len(files) > len(shown) {
			fmt.Printf("... and %d more files\n", len(files)-len(shown))
		}

		fmt.Println()
		fmt.Println("Use 'salvage recover <project>' to recover files.")
		fmt.Println("Use 'salvage recover <project> --interactive' to choose specific files.")
		if !preview {
			fmt.Println("Use 'salvage scan <project> --preview' to see content previews.")
		}
		return nil
	},
}

// recover command
var recoverCmd = &cobra.Command{
	Use:   "recover PROJECT",
	Short: "Recover the files of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if noBackups, _ := cmd.Flags().GetBool("no-backups"); noBackups {
			cfg.Recovery.Backups = false
		}
		interactive, _ := cmd.Flags().GetBool("interactive")
		preview, _ := cmd.Flags().GetBool("preview")
		selection, _ := cmd.Flags().GetString("select")

		prompter := app.NewTerminalPrompter(os.Stdin, os.Stdout)
		a, err := newApp(cfg, "recover", args[0], prompter)
		if err != nil {
			return err
		}
		defer a.Close()

		opts, err := recoveryOptions(cmd, a)
		if err != nil {
			return err
		}

		dir, err := resolveProject(a, prompter, args[0])
		if err != nil {
			return err
		}
		files, err := a.Files(dir, "")
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No recoverable files found in this project.")
			return nil
		}

		switch {
		case selection != "":
			files, err = selectFiles(files, selection)
		case interactive:
			files, err = chooseFiles(prompter, files)
		}
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No files selected for recovery.")
			return nil
		}

		if preview {
			printPreview(os.Stdout, a.Preview(files, opts))
			return nil
		}

		if !opts.Force && !interactive {
			question := fmt.Sprintf("Recover %d files (%s) to %s?", len(files), totalSize(files), describeTarget(opts))
			if !prompter.Confirm(question) {
				fmt.Println("Recovery cancelled.")
				if !prompter.Interactive() {
					fmt.Println("Use --force to recover without a terminal.")
				}
				return nil
			}
		}

		fmt.Println("Starting recovery...")
		report := a.Recover(files, opts)
		printReport(os.Stdout, report)
		if report.Failed > report.Declined {
			return fmt.Errorf("%d files could not be recovered", report.Failed-report.Declined)
		}
		return nil
	},
}

// recoveryOptions applies the recover flags on top of the configured defaults.
func recoveryOptions(cmd *cobra.Command, a *app.SalvageApp) (salvage.RecoveryOptions, error) {
	opts, err := a.RecoveryOptions()
	if err != nil {
		return opts, err
	}
	if cmd.Flags().Changed("target") {
		target, _ := cmd.Flags().GetString("target")
		if opts.TargetDir, err = config.ExpandHome(target); err != nil {
			return opts, err
		}
	}
	if inPlace, _ := cmd.Flags().GetBool("in-place"); inPlace {
		if cmd.Flags().Changed("target") {
			return opts, errors.New("--in-place and --target cannot be combined")
		}
		opts.TargetDir = ""
	}
	if flat, _ := cmd.Flags().GetBool("flat"); flat {
		opts.PreserveStructure = false
	}
	if force, _ := cmd.Flags().GetBool("force"); force {
		opts.Force = true
	}
	return opts, nil
}

// selectFiles applies a --select expression without prompting.
func selectFiles(files []salvage.FileEvent, expr string) ([]salvage.FileEvent, error) {
	indices, cancelled, err := app.ParseSelection(expr, len(files))
	if err != nil {
		return nil, err
	}
	if cancelled {
		return nil, nil
	}
	return pick(files, indices), nil
}

// chooseFiles lists the files and asks until the answer parses or the user
// cancels.
func chooseFiles(prompter *app.Prompter, files []salvage.FileEvent) ([]salvage.FileEvent, error) {
	if !prompter.Interactive() {
		return nil, errors.New("--interactive needs a terminal; use --select instead")
	}
	fmt.Println("Select files to recover:")
	fmt.Println("  (numbers separated by commas, ranges like 3-5, 'all' for all files, or 'q' to quit)")
	fmt.Println()
	printSelectionList(os.Stdout, files)
	fmt.Println()

	for {
		answer, err := prompter.Ask("Select files")
		if err != nil {
			return nil, err
		}
		indices, cancelled, err := app.ParseSelection(answer, len(files))
		if err != nil {
			fmt.Printf("%v\n", err)
			continue
		}
		if cancelled {
			fmt.Println("Selection cancelled.")
			return nil, nil
		}
		return pick(files, indices), nil
	}
}

func pick(files []salvage.FileEvent, indices []int) []salvage.FileEvent {
	out := make([]salvage.FileEvent, len(indices))
	for i, idx := range indices {
		out[i] = files[idx]
	}
	return out
}

func init() {
	rootCmd.PersistentFlags().String("claude-dir", "", "Path to the .claude directory (default from config: ~/.claude)")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(projectsCmd)

	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntP("limit", "l", config.DefaultLimit, "Maximum number of files to show (0 for all)")
	scanCmd.Flags().BoolP("preview", "p", false, "Show the first line of each file")
	scanCmd.Flags().StringP("type", "t", "", "Only show files of this type (Python, Go, ...)")

	rootCmd.AddCommand(recoverCmd)
	recoverCmd.Flags().StringP("target", "t", "", "Target directory (default from config: ./recovered-files)")
	recoverCmd.Flags().Bool("in-place", false, "Write files back to their original paths")
	recoverCmd.Flags().Bool("flat", false, "Write every file directly into the target directory")
	recoverCmd.Flags().BoolP("force", "f", false, "Overwrite existing files without asking")
	recoverCmd.Flags().Bool("no-backups", false, "Do not keep .backup copies of overwritten files")
	recoverCmd.Flags().BoolP("preview", "p", false, "Show what would be recovered without writing anything")
	recoverCmd.Flags().BoolP("interactive", "i", false, "Choose which files to recover")
	recoverCmd.Flags().String("select", "", "Recover only these files, e.g. 1,3,5-7 or all")
}
