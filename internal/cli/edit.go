package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		metaPath string
		canvas   canvasFlags
	)

	cmd := &cobra.Command{
		Use:   "edit [map]",
		Short: "Drag map elements in the terminal and record their offsets",
		Long: `Drag map elements in the terminal and record their offsets.

Select an element with tab and grab it with enter, or press the mouse on
it. Move it with the arrow keys or the mouse and drop it with enter or by
releasing the button. Each drop is written to the meta overlay; the map
text is never changed. Unsaved moves are saved on quit.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], metaPath, canvas)
		},
	}

	cmd.Flags().StringVarP(&metaPath, "meta", "m", "", "meta overlay file (default: the document's overlay or <map>.meta.json)")
	_ = cmd.RegisterFlagCompletionFunc("meta", completeMetaFile)
	canvas.register(cmd)

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, input, metaPath string, canvas canvasFlags) error {
	if input == "-" {
		return fmt.Errorf("edit needs a file, not stdin")
	}
	src, err := readSource(input, metaPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// The editor owns the terminal; keep the log quiet while it runs.
	quiet := log.New(io.Discard)
	runner.Logger = quiet
	opts := c.layoutOptions(canvas)
	opts.Text, opts.Overlay, opts.Logger = src.text, src.overlay, quiet

	m, err := newEditorModel(ctx, runner, opts, src.saveOverlay)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("run editor: %w", err)
	}

	em, ok := final.(editorModel)
	if !ok || !em.dirty {
		printInfo("No changes")
		return nil
	}
	path, err := src.saveOverlay(em.opts.Overlay)
	if err != nil {
		return err
	}
	printSuccess("Saved overlay")
	printFile(path)
	return nil
}
