package cli

import (
	"bytes"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wardley/pkg/compiler"
	mapio "github.com/matzehuels/wardley/pkg/io"
	"github.com/matzehuels/wardley/pkg/meta"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wardley.

  $ source <(wardley completion bash)
  $ wardley completion zsh > "${fpath[1]}/_wardley"
  $ wardley completion fish | source
  PS> wardley completion powershell | Out-String | Invoke-Expression

Completions include element ids for "wardley move <map>", read from the
map itself.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, true)
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeMapFile completes the single map argument with file names.
func completeMapFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveDefault
}

// completeMoveArgs completes "move [map] [id]": a file, then the ids the
// map declares, including label ids.
func completeMoveArgs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return nil, cobra.ShellCompDirectiveDefault
	case 1:
		ids, err := elementIDs(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []string
		for _, id := range ids {
			if strings.HasPrefix(id, toComplete) {
				out = append(out, id)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeMetaFile restricts --meta completion to JSON files.
func completeMetaFile(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// elementIDs compiles the map at path and returns its element and label
// ids in sorted order.
func elementIDs(path string) ([]string, error) {
	if path == "-" {
		return nil, nil
	}
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if isDocument(data) {
		doc, err := mapio.ReadDocument(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		text = doc.Text
	}
	m, err := compiler.Compile(text)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, n := range m.Nodes() {
		ids = append(ids, n.ID, meta.LabelKey(n.ID))
	}
	sort.Strings(ids)
	return ids, nil
}
