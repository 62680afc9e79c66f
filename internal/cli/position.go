package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/position"
)

// positionCommand creates the position command for coordinate conversion.
func (c *CLI) positionCommand() *cobra.Command {
	var (
		inverse bool
		canvas  canvasFlags
	)

	cmd := &cobra.Command{
		Use:   "position [maturity] [visibility]",
		Short: "Convert semantic coordinates to pixels, or back with --inverse",
		Long: `Convert semantic coordinates to pixels, or back with --inverse.

Maturity runs left to right along the evolution axis and visibility bottom
to top along the value chain, both nominally in [0, 1]. Values outside that
range are converted without clamping.

  wardley position 0.43 0.35            # -> x=215 y=390
  wardley position --inverse 215 390    # -> maturity=0.43 visibility=0.35`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parsePair(args[0], args[1])
			if err != nil {
				return err
			}
			opts := c.layoutOptions(canvas)
			if err := errors.ValidateCanvas(opts.Width, opts.Height); err != nil {
				return err
			}
			cv := opts.Canvas()
			if inverse {
				mat, vis := cv.Semantic(position.Point{X: a, Y: b})
				printKeyValue("maturity", formatFloat(mat))
				printKeyValue("visibility", formatFloat(vis))
				return nil
			}
			p := cv.Place(a, b)
			printKeyValue("x", formatFloat(p.X))
			printKeyValue("y", formatFloat(p.Y))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&inverse, "inverse", "i", false, "convert pixels to maturity and visibility")
	canvas.register(cmd)

	return cmd
}

func parsePair(as, bs string) (float64, float64, error) {
	a, err := strconv.ParseFloat(as, 64)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeNumeric, "invalid number %q", as)
	}
	b, err := strconv.ParseFloat(bs, 64)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeNumeric, "invalid number %q", bs)
	}
	return a, b, nil
}

// formatFloat trims float noise such as 390.00000000000006.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 32)
}
