package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/internal/config"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/store"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for bash, zsh, fish or powershell.

Besides commands and flags, the scripts complete the values of --source,
--pause-mode, --view and --format, and archived trajectory ids for --id,
"archive show" and "archive delete".`,
		Example: `  source <(tokenviz completion bash)
  tokenviz completion zsh > "${fpath[1]}/_tokenviz"
  tokenviz completion fish > ~/.config/fish/completions/tokenviz.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}

// flagValues lists the fixed values of enumerated flags.
var flagValues = map[string][]string{
	"source":     {config.SourceSynthetic, config.SourceHTTP, config.SourceFile},
	"pause-mode": {"finish-step", "freeze"},
	"view":       {viewScene, viewChain},
	"format":     {render.FormatSVG, render.FormatPNG, render.FormatPDF, render.FormatJSON, render.FormatDOT},
}

// registerCompletions attaches value completion to every command under root
// that defines one of the enumerated flags or --id.
func (c *CLI) registerCompletions(root *cobra.Command) {
	for _, cmd := range append([]*cobra.Command{root}, allSubcommands(root)...) {
		for name, values := range flagValues {
			if cmd.Flags().Lookup(name) != nil {
				_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
			}
		}
		if cmd.Flags().Lookup("id") != nil {
			_ = cmd.RegisterFlagCompletionFunc("id", c.completeArchiveIDs)
		}
	}
}

func allSubcommands(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, sub := range cmd.Commands() {
		out = append(out, sub)
		out = append(out, allSubcommands(sub)...)
	}
	return out
}

// completeArchiveIDs offers the ids of archived trajectories that start with
// toComplete, described by their input text.
func (c *CLI) completeArchiveIDs(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := c.loadConfig(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := c.config().OpenStore(ctx)
	if err != nil || st == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer st.Close()

	lister, ok := st.(store.Lister)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	list, err := lister.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, t := range list {
		if strings.HasPrefix(t.ID, toComplete) {
			ids = append(ids, fmt.Sprintf("%s\t%s", t.ID, truncate(t.Input, 40)))
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
