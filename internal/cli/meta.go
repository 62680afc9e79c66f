package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wardley/pkg/meta"
)

// metaCommand creates the meta overlay command group.
func (c *CLI) metaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Inspect and clean up the meta overlay",
	}

	cmd.AddCommand(c.metaShowCommand())
	cmd.AddCommand(c.metaPruneCommand())

	return cmd
}

// metaShowCommand creates the "meta show" subcommand.
func (c *CLI) metaShowCommand() *cobra.Command {
	var metaPath string

	cmd := &cobra.Command{
		Use:               "show [map]",
		Short:             "List overlay records and what they position",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMetaShow(cmd.Context(), args[0], metaPath)
		},
	}

	cmd.Flags().StringVarP(&metaPath, "meta", "m", "", "meta overlay file")
	_ = cmd.RegisterFlagCompletionFunc("meta", completeMetaFile)

	return cmd
}

func (c *CLI) runMetaShow(ctx context.Context, input, metaPath string) error {
	src, err := readSource(input, metaPath)
	if err != nil {
		return err
	}
	o, err := meta.Parse(src.overlay)
	if err != nil {
		return err
	}
	if o.Len() == 0 {
		printInfo("Overlay is empty")
		return nil
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.layoutOptions(canvasFlags{})
	opts.Text, opts.Overlay = src.text, src.overlay
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	orphan := make(map[string]bool, len(res.Layout.Orphans))
	for _, id := range res.Layout.Orphans {
		orphan[id] = true
	}

	rows := make([][]string, 0, o.Len())
	for _, r := range o.Records() {
		status := "ok"
		if orphan[r.Name] {
			status = "orphan"
		}
		p := r.Point()
		rows = append(rows, []string{r.Name, formatFloat(p.X), formatFloat(p.Y), status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "X", "Y", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if rows[row][3] == "orphan" {
				return base.Foreground(colorYellow)
			}
			if col == 0 {
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		})

	fmt.Fprintln(stdout, t.Render())
	printStats(res.Stats.ElementCount+len(res.Map.Anchors), res.Stats.LinkCount, res.Stats.FlowCount, res.CacheInfo.CompileHit)
	return nil
}

// metaPruneCommand creates the "meta prune" subcommand.
func (c *CLI) metaPruneCommand() *cobra.Command {
	var (
		metaPath string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "prune [map]",
		Short: "Remove overlay records that match nothing in the map",
		Long: `Remove overlay records that match nothing in the map.

Records go stale when elements are renamed or deleted. Layout keeps them
and reports them as orphans; prune is the only operation that removes them.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMetaPrune(cmd.Context(), args[0], metaPath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&metaPath, "meta", "m", "", "meta overlay file")
	_ = cmd.RegisterFlagCompletionFunc("meta", completeMetaFile)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphaned records without removing them")

	return cmd
}

func (c *CLI) runMetaPrune(ctx context.Context, input, metaPath string, dryRun bool) error {
	src, err := readSource(input, metaPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.layoutOptions(canvasFlags{})
	opts.Text, opts.Overlay = src.text, src.overlay
	overlay, removed, err := runner.Prune(ctx, opts)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		printInfo("No orphaned records")
		return nil
	}
	for _, id := range removed {
		printDetail("%s", id)
	}
	if dryRun {
		printInfo("%d orphaned records (dry run)", len(removed))
		return nil
	}

	path, err := src.saveOverlay(overlay)
	if err != nil {
		return err
	}
	printSuccess("Removed %d orphaned records", len(removed))
	printFile(path)
	return nil
}
