package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wardley/pkg/position"
)

// moveCommand creates the move command, the scripted form of a drag.
func (c *CLI) moveCommand() *cobra.Command {
	var metaPath string

	cmd := &cobra.Command{
		Use:   "move [map] [id] [x] [y]",
		Short: "Record a drag offset for an element in the meta overlay",
		Long: `Record a drag offset for an element in the meta overlay.

The offset is in pixels relative to the element's computed position. The
record for id is replaced or appended; every other record is kept as is.
Label and flow label offsets use the ids element_text_<id> and
flow_text_<start>_<end>. An element may also be named as written in the
map, e.g. "Cup of Tea".

With a document file the overlay is written back into the document;
otherwise it goes to --meta (default: <map>.meta.json).`,
		Args:              cobra.ExactArgs(4),
		ValidArgsFunction: completeMoveArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[2], args[3])
			if err != nil {
				return err
			}
			return c.runMove(cmd.Context(), args[0], metaPath, args[1], p)
		},
	}

	cmd.Flags().StringVarP(&metaPath, "meta", "m", "", "meta overlay file")
	_ = cmd.RegisterFlagCompletionFunc("meta", completeMetaFile)

	return cmd
}

func (c *CLI) runMove(ctx context.Context, input, metaPath, id string, p position.Point) error {
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

	// A display name such as "Cup of Tea" stands for its element id.
	m, err := runner.Compile(ctx, opts)
	if err != nil {
		return err
	}
	if _, ok := m.Lookup(id); !ok {
		if n, ok := m.ByName(id); ok {
			id = n.ID
		}
	}

	overlay, err := runner.Move(ctx, opts, id, p)
	if err != nil {
		return err
	}

	// The overlay accepts any id; warn when this one positions nothing.
	opts.Overlay = overlay
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	path, err := src.saveOverlay(overlay)
	if err != nil {
		return err
	}
	if path == "-" {
		return nil
	}

	printSuccess("Moved %s by (%g, %g)", StyleHighlight.Render(id), p.X, p.Y)
	printFile(path)
	for _, orphan := range res.Layout.Orphans {
		if orphan == id {
			printWarning("%s matches nothing in the map", id)
		}
	}
	return nil
}

// parsePoint parses two pixel coordinates.
func parsePoint(xs, ys string) (position.Point, error) {
	x, y, err := parsePair(xs, ys)
	if err != nil {
		return position.Point{}, err
	}
	return position.Point{X: x, Y: y}, nil
}
