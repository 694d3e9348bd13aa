package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/leca/multi-image-host/internal/client"
	"github.com/leca/multi-image-host/internal/progress"
	"github.com/leca/multi-image-host/internal/provider"
	"github.com/leca/multi-image-host/internal/results"
	"github.com/spf13/cobra"
)

var (
	providerFlag string
	filterFlag   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files one at a time through the gateway",
	Long: `Uploads each file in order to the selected provider. The first failure
stops the batch; files after it are not sent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&providerFlag, "provider", "p", string(provider.FreeImage), "freeimage, imgbb or gofile")
	uploadCmd.Flags().StringVar(&filterFlag, "filter", results.FilterAll, "show results for all or one provider")
}

// runUpload is the main entry point for the upload command
func runUpload(cmd *cobra.Command, args []string) error {
	id, ok := provider.ParseID(providerFlag)
	if !ok {
		return fmt.Errorf("unknown provider %q", providerFlag)
	}
	if err := checkFilter(filterFlag); err != nil {
		return err
	}

	store, err := results.NewSQLiteStore("")
	if err != nil {
		return fmt.Errorf("open result list: %w", err)
	}
	defer store.Close()

	c := client.New(serverURL, nil, slog.Default())
	out := cmd.OutOrStdout()

	runErr := uploadBatch(cmd.Context(), out, cmd.ErrOrStderr(), c, store, id, args)
	if err := printSummary(cmd.Context(), out, store, filterFlag); err != nil {
		return err
	}
	return runErr
}

func checkFilter(filter string) error {
	if filter == results.FilterAll {
		return nil
	}
	if _, ok := provider.ParseID(filter); !ok {
		return fmt.Errorf("unknown filter %q", filter)
	}
	return nil
}

// uploadBatch sends paths in order through id, drawing one bar per file on
// errOut and one status line per file on out.
func uploadBatch(ctx context.Context, out, errOut io.Writer, c *client.Client, store results.Store, id provider.ID, paths []string) error {
	files := make([]client.File, 0, len(paths))
	items := make([]progress.Item, 0, len(paths))
	for _, path := range paths {
		f, err := client.FromPath(path)
		if err != nil {
			return err
		}
		files = append(files, f)
		items = append(items, progress.Item{Name: f.Name, Size: f.Size})
	}

	tracker := progress.NewTracker(errOut, items)
	batch := &client.Batch{
		Client:   c,
		Provider: id,
		Store:    store,
		Progress: tracker.Update,
	}

	report, err := batch.Run(ctx, files)
	if report == nil {
		return err
	}

	for _, e := range report.Results {
		printUploadSuccess(out, e)
	}
	if report.Failure != nil {
		tracker.Abandon(report.Failure.Index)
		color.New(color.FgRed).Fprintf(out, "✗ %s: %s\n", report.Failure.File, report.Failure.Message)
		for _, name := range report.Skipped {
			color.New(color.FgYellow).Fprintf(out, "- %s: not attempted\n", name)
		}
		return fmt.Errorf("batch stopped after %d of %d files", len(report.Results), len(files))
	}
	return err
}

// printUploadSuccess displays a success line
func printUploadSuccess(out io.Writer, e *results.Entry) {
	color.New(color.FgGreen).Fprintf(out, "✓ %s → %s\n", e.FileName, e.Result.Image.URL)
}

func printSummary(ctx context.Context, out io.Writer, store results.Store, filter string) error {
	entries, err := store.List(ctx, filter)
	if err != nil {
		return err
	}
	total, err := store.Count(ctx, results.FilterAll)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	fmt.Fprintf(out, "\n%d of %d results (filter: %s)\n", len(entries), total, filter)
	for _, e := range entries {
		img := e.Result.Image
		fmt.Fprintf(out, "  %-9s %-28s %9s  %s\n", e.Provider, e.FileName, humanize.Bytes(uint64(img.Size)), img.URL)
	}
	return nil
}
