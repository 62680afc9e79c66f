package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mapio "github.com/matzehuels/wardley/pkg/io"
)

// layoutCommand creates the layout command for computing pixel coordinates.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		metaPath string
		noCache  bool
		refresh  bool
		canvas   canvasFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [map]",
		Short: "Compute pixel coordinates for a map and its meta overlay",
		Long: `Compute pixel coordinates for a map and its meta overlay.

Every element is placed from its evolution (x) and visibility (y), then
shifted by the drag offset recorded for it in the overlay. Overlay records
that match nothing in the map are reported as orphans; remove them with
'wardley meta prune'.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], metaPath, output, canvas, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: <input>.layout.json)`)
	cmd.Flags().StringVarP(&metaPath, "meta", "m", "", "meta overlay file (overrides a document's overlay)")
	_ = cmd.RegisterFlagCompletionFunc("meta", completeMetaFile)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	canvas.register(cmd)

	return cmd
}

// runLayout loads the map, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, metaPath, output string, canvas canvasFlags, noCache, refresh bool) error {
	src, err := readSource(input, metaPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.layoutOptions(canvas)
	opts.Text, opts.Overlay, opts.Refresh = src.text, src.overlay, refresh

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = outputPath(input, ".layout.json")
	}
	if output == "-" {
		return mapio.WriteLayout(res.Layout, stdout)
	}
	if err := mapio.ExportLayout(res.Layout, output); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Stats.ElementCount+len(res.Map.Anchors), res.Stats.LinkCount, res.Stats.FlowCount,
		res.CacheInfo.CompileHit && res.CacheInfo.LayoutHit)
	if n := len(res.Layout.Orphans); n > 0 {
		printWarning("%d overlay records match nothing in the map", n)
		printNewline()
		printNextStep("Remove them", appName+" meta prune "+input)
	}
	return nil
}
