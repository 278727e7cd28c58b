package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/store"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// archiveCommand creates the archive management command.
func (c *CLI) archiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect and prune archived trajectories",
	}

	cmd.AddCommand(c.archiveListCommand())
	cmd.AddCommand(c.archiveShowCommand())
	cmd.AddCommand(c.archiveDeleteCommand())
	cmd.AddCommand(c.archivePruneCommand())

	return cmd
}

// withArchive opens the configured store for the duration of fn.
func (c *CLI) withArchive(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.config().OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	if st == nil {
		return errors.New(errors.ErrCodeUnsupported, "no archive configured (store.backend = none)")
	}
	defer st.Close()
	return fn(st)
}

// archiveLocation describes where st keeps its data, for status lines.
func archiveLocation(st store.Store) string {
	if fs, ok := st.(*store.FileStore); ok {
		return fs.Path()
	}
	return fmt.Sprintf("%T", st)
}

// archiveListCommand creates the "archive list" subcommand.
func (c *CLI) archiveListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived trajectories, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(cmd.Context(), func(st store.Store) error {
				lister, ok := st.(store.Lister)
				if !ok {
					return errors.New(errors.ErrCodeUnsupported, "%s cannot be listed", archiveLocation(st))
				}
				list, err := lister.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("Archive is empty")
					printDetail("Location: %s", archiveLocation(st))
					return nil
				}
				fmt.Println(archiveTable(list).Render())
				printDetail("%d trajectories in %s", len(list), archiveLocation(st))
				return nil
			})
		},
	}
}

func archiveTable(list []*store.Trajectory) *table.Table {
	rows := make([][]string, len(list))
	for i, t := range list {
		rows[i] = []string{
			t.ID,
			truncate(t.Input, 40),
			t.Source,
			strconv.Itoa(len(t.Tokens)),
			t.CreatedAt.Local().Format(time.DateTime),
		}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Input", "Source", "Tokens", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleNumber
			case col >= 2:
				return StyleDim
			}
			return StyleValue
		})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// archiveShowCommand creates the "archive show" subcommand.
func (c *CLI) archiveShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived trajectory",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.completeArchiveIDs(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(cmd.Context(), func(st store.Store) error {
				t, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(t)
				}
				outputs := len(trajectory.OutputIndices(t.Tokens))
				printKeyValue("ID", t.ID)
				printKeyValue("Input", t.Input)
				printKeyValue("Source", t.Source)
				printKeyValue("Created", t.CreatedAt.Local().Format(time.DateTime))
				printKeyValue("Tokens", statsLine(len(t.Tokens), outputs))
				printNewline()
				printNextStep("Animate it", fmt.Sprintf("%s play --id %s", appName, t.ID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored document as JSON")
	return cmd
}

// archiveDeleteCommand creates the "archive delete" subcommand.
func (c *CLI) archiveDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>...",
		Short:             "Delete archived trajectories",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeArchiveIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(cmd.Context(), func(st store.Store) error {
				for _, id := range args {
					if err := errors.ValidateID(id); err != nil {
						return err
					}
					if err := st.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				printSuccess("Deleted %d trajectories", len(args))
				return nil
			})
		},
	}
}

// archivePruneCommand creates the "archive prune" subcommand.
func (c *CLI) archivePruneCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete trajectories older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--older-than must be positive")
			}
			return c.withArchive(cmd.Context(), func(st store.Store) error {
				pruner, ok := st.(store.Pruner)
				if !ok {
					return errors.New(errors.ErrCodeUnsupported, "%s cannot be pruned", archiveLocation(st))
				}
				n, err := pruner.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				if n == 0 {
					printWarning("Nothing older than %s", olderThan)
					return nil
				}
				printSuccess("Pruned %d trajectories", n)
				printDetail("Location: %s", archiveLocation(st))
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum age to prune")
	return cmd
}
