package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mapio "github.com/matzehuels/wardley/pkg/io"
	"github.com/matzehuels/wardley/pkg/pipeline"
)

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "compile [map]",
		Short: "Compile map notation to the map model JSON",
		Long: `Compile map notation to the map model JSON.

The input is a notation file, a document file ({"text": ..., "meta": ...})
or "-" for stdin. The output holds every element, anchor, link, method and
annotation with its source line, ready for any renderer.

Errors name their kind and line, e.g.

  NUMERIC_ERROR: line 3: invalid visibility "abc"`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(cmd.Context(), args[0], output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: <input>.json)`)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompile even if cached")

	return cmd
}

func (c *CLI) runCompile(ctx context.Context, input, output string, noCache, refresh bool) error {
	src, err := readSource(input, "")
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	m, cacheHit, err := runner.CompileWithCacheInfo(ctx, pipeline.Options{Text: src.text, Refresh: refresh, Logger: c.Logger})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compiled %d elements", len(m.Elements)))

	if output == "" {
		output = outputPath(input, ".json")
		if src.doc != nil {
			output = outputPath(input, ".map.json")
		}
	}
	if output == "-" {
		return mapio.WriteMap(m, stdout)
	}
	if err := mapio.ExportMap(m, output); err != nil {
		return err
	}

	printSuccess("Compiled %s", StyleValue.Render(m.Title))
	printFile(output)
	printStats(len(m.Elements)+len(m.Anchors), len(m.Links), len(m.FlowLinks()), cacheHit)
	printNewline()
	printNextStep("Lay out", appName+" layout "+input)
	return nil
}
