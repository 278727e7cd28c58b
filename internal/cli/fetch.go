package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/store"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		flags   sourceFlags
		output  string
		archive bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [text...]",
		Short: "Fetch a token stream and save it as JSON",
		Long: `Fetch the token stream for the given text and write it in the visualize
response format. The output can be replayed later with --file.`,
		Example: `  tokenviz fetch "The quick brown fox" -o fox.json
  tokenviz fetch --api-url http://localhost:8080 hello world`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), &flags, joinArgs(args), output, archive)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&archive, "archive", false, "also save the stream to the trajectory archive")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, flags *sourceFlags, input, output string, archive bool) error {
	s, err := c.loadStream(ctx, flags, input)
	if err != nil {
		return err
	}

	if archive {
		if err := c.archiveStream(ctx, s); err != nil {
			return err
		}
	}

	if output == "" {
		return writeResponse(os.Stdout, s)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := writeResponse(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	printSuccess("Saved token stream")
	printStats(len(s.Tokens), s.outputCount(), s.Cached)
	printFile(output)
	return nil
}

func writeResponse(w io.Writer, s *stream) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.response())
}

// archiveStream saves s to the configured archive and sets its id.
func (c *CLI) archiveStream(ctx context.Context, s *stream) error {
	st, err := c.config().OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	if st == nil {
		loggerFromContext(ctx).Warn("no archive configured, skipping")
		return nil
	}
	defer st.Close()

	t := store.NewTrajectory(s.Input, s.Source, s.Tokens)
	if s.ID != "" {
		t.ID = s.ID
	}
	if err := st.Put(ctx, t); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	s.ID = t.ID
	loggerFromContext(ctx).Info("archived trajectory", "id", t.ID)
	return nil
}
