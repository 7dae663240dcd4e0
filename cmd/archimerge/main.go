// Package main provides the archimerge binary entry point. Archimerge copies
// diagram views, together with every element and relationship they reference,
// from one Archi model file into another while preserving folder organization
// and avoiding duplicate identifiers.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archimerge/core/internal/config"
	"github.com/archimerge/core/internal/container"
	"github.com/archimerge/core/internal/merge"
	"github.com/archimerge/core/internal/models"
	"github.com/archimerge/core/internal/parser"
	"github.com/archimerge/core/internal/selection"
)

const (
	version = "0.1.0"
	appName = "archimerge"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	views      []string
	selectExpr string
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "archimerge SOURCE TARGET",
		Short: "Copy diagram views between Archi model files",
		Long: `Archimerge compares two Archi model files and copies selected diagram
views from the source into the target. Every element and relationship a view
references is copied along with it, placed under its original folder path;
content already present in the target is never duplicated or overwritten.

Both plain .archimate files and archive-wrapped models are supported. Views
are picked interactively by number, by name via --view, or with a selection
expression via --select.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.views, "view", "v", nil, "Name of a view to copy (repeatable)")
	cmd.Flags().StringVar(&opts.selectExpr, "select", "", `Selection expression, e.g. "1,3,5-7" or "all"`)
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Policy config file (YAML)")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, version)
		},
	})

	return cmd
}

func run(cmd *cobra.Command, sourcePath, targetPath string, opts *options) error {
	configureLogging(opts.verbose)
	out := cmd.OutOrStdout()

	policy, err := loadPolicy(opts.configPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "-+ Analyzing Archi files")
	fmt.Fprintf(out, " +- Source: %s\n", sourcePath)
	fmt.Fprintf(out, " +- Target: %s\n", targetPath)

	source, _, err := loadModelFile(sourcePath)
	if err != nil {
		return err
	}
	target, targetDesc, err := loadModelFile(targetPath)
	if err != nil {
		return err
	}

	missing := merge.MissingViews(source, target)
	if len(missing) == 0 {
		fmt.Fprintln(out, "No new views to copy from source to target.")
		return nil
	}

	fmt.Fprintln(out, "\nViews in source that don't exist in target:")
	for i, view := range missing {
		fmt.Fprintf(out, "[%d] %s (in folder: %s)\n", i+1, view.Name, view.FolderPath)
	}

	indices, err := resolveSelection(cmd, opts, missing)
	if err != nil {
		return err
	}
	if len(indices) == 0 {
		fmt.Fprintln(out, "No views selected for copying.")
		return nil
	}

	var total models.MergeCounts
	for _, idx := range indices {
		view := missing[idx-1]
		fmt.Fprintf(out, "Creating view %s\n", view.Name)
		counts, err := merge.MergeView(source, target, view.ID, policy)
		if err != nil {
			return err
		}
		total.Add(counts)
	}

	serialized, err := merge.Serialize(target.Doc)
	if err != nil {
		return fmt.Errorf("serialize target document: %w", err)
	}
	if err := targetDesc.Write(serialized); err != nil {
		return fmt.Errorf("write target file: %w", err)
	}

	fmt.Fprintln(out, "Successfully imported views and elements into target file.")
	fmt.Fprintf(out, "Successfully copied:\n%s\n", total.Summary())
	return nil
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadPolicy(configPath string) (merge.Policy, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return merge.Policy{}, err
		}
	}

	return merge.Policy{
		MatchFoldersByID: cfg.FolderMatch == config.MatchByID,
		FallbackFolder:   cfg.FallbackFolder,
		Labels:           cfg.Labels,
	}, nil
}

func loadModelFile(path string) (*models.Model, *container.Descriptor, error) {
	desc, err := container.Detect(path)
	if err != nil {
		return nil, nil, err
	}

	text, err := desc.Read()
	if err != nil {
		return nil, nil, err
	}

	model, err := parser.LoadModel(text)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return model, desc, nil
}

// resolveSelection turns flags or interactive input into 1-based candidate
// positions. Name flags take precedence over a selection expression.
func resolveSelection(cmd *cobra.Command, opts *options, missing []models.MissingView) ([]int, error) {
	if len(opts.views) > 0 {
		return selection.ByNames(opts.views, missing), nil
	}
	if opts.selectExpr != "" {
		return selection.Parse(opts.selectExpr, len(missing))
	}

	fmt.Fprint(cmd.OutOrStdout(), "\nEnter view numbers to copy (e.g., 1,3,5-7 or 'all' for all views): ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	return selection.Parse(strings.TrimSpace(line), len(missing))
}
