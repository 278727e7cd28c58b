package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/internal/config"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/sink"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/session"
)

// playOpts holds flag values for the play command.
type playOpts struct {
	speed     float64
	pauseMode string
	headless  bool
	paused    bool
}

// playCommand creates the play command.
func (c *CLI) playCommand() *cobra.Command {
	var flags sourceFlags
	opts := playOpts{}

	cmd := &cobra.Command{
		Use:   "play [text...]",
		Short: "Animate a token stream in the terminal",
		Long: `Animate a token stream: before each output token appears, the labels on
screen gather on its vector, then the vector grows from the previous anchor
to the token's destination.

Without text the player starts at the prompt. Press i to submit new text at
any time; the current animation keeps playing until the new stream arrives.

With --headless no terminal UI is started. Every frame is written to stdout
as one line of JSON, stepping the animation without wall-clock pacing.`,
		Example: `  tokenviz play "The quick brown fox"
  tokenviz play --file fox.json --speed 2
  tokenviz play --id 0b4e7a3c --pause-mode freeze
  tokenviz play "Hello" --headless | jq .state.phase`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pbOpts, err := c.playbackOptions(cmd, opts)
			if err != nil {
				return err
			}
			input := joinArgs(args)
			if opts.headless {
				s, err := c.loadStream(cmd.Context(), &flags, input)
				if err != nil {
					return err
				}
				return runHeadless(os.Stdout, s, pbOpts)
			}
			return c.runPlayer(cmd.Context(), &flags, input, pbOpts, !opts.paused)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&opts.speed, "speed", 0, "speed multiplier (default from config)")
	cmd.Flags().StringVar(&opts.pauseMode, "pause-mode", "", "pause behavior: finish-step or freeze (default from config)")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "write frames as JSON lines instead of starting the player")
	cmd.Flags().BoolVar(&opts.paused, "paused", false, "start paused")

	return cmd
}

// playbackOptions merges the playback config with the flags.
func (c *CLI) playbackOptions(cmd *cobra.Command, opts playOpts) (playback.Options, error) {
	cfg := *c.config()
	if cmd.Flags().Changed("speed") {
		if err := errors.ValidateSpeed(opts.speed); err != nil {
			return playback.Options{}, err
		}
		cfg.Playback.Speed = opts.speed
	}
	if opts.pauseMode != "" {
		cfg.Playback.PauseMode = opts.pauseMode
	}
	pb, err := cfg.PlaybackOptions()
	if err != nil {
		return playback.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "playback options")
	}
	return pb, nil
}

// runHeadless steps the whole animation and writes every frame.
func runHeadless(w io.Writer, s *stream, opts playback.Options) error {
	bw := bufio.NewWriter(w)
	var writeErr error
	emit := func(f playback.Frame) {
		if writeErr != nil {
			return
		}
		data, err := sink.RenderJSON(f, sink.WithJSONCompact(), sink.WithJSONSession(s.ID))
		if err == nil {
			_, err = fmt.Fprintf(bw, "%s\n", data)
		}
		writeErr = err
	}

	d := playback.NewDriver(playback.New(s.Tokens, opts), emit, nil)
	emit(d.Frame())
	d.Play()
	for d.State().Playing && writeErr == nil {
		d.Step()
	}
	if writeErr != nil {
		return writeErr
	}
	return bw.Flush()
}

// runPlayer starts the interactive player.
func (c *CLI) runPlayer(ctx context.Context, flags *sourceFlags, input string, pbOpts playback.Options, autoplay bool) error {
	logger := loggerFromContext(ctx)
	cfg, err := flags.apply(*c.config())
	if err != nil {
		return err
	}

	respCache, err := c.openCache(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer respCache.Close()

	src, err := cfg.OpenSource(flags.file, respCache, logger)
	if err != nil {
		return err
	}

	archive, err := cfg.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	if archive != nil {
		defer archive.Close()
	}

	notify := newFrameNotifier()
	mgr := session.NewManager(src, session.Options{
		Playback: pbOpts,
		Autoplay: autoplay && cfg.Playback.Autoplay,
		Archive:  archive,
	}, notify.sink, logger)
	defer mgr.Close()

	switch {
	case flags.id != "":
		if _, err := mgr.Replay(ctx, flags.id); err != nil {
			return err
		}
	case input != "":
		if _, err := mgr.Submit(ctx, input); err != nil {
			return err
		}
	case cfg.Client.Source == config.SourceFile:
		s, err := c.loadStream(ctx, flags, "")
		if err != nil {
			return err
		}
		if _, err := mgr.Load(s.Input, s.Tokens); err != nil {
			return err
		}
	}

	// The player owns the terminal; keep log output out of the frame.
	prevLevel := c.Logger.GetLevel()
	c.Logger.SetLevel(max(prevLevel, log.WarnLevel))
	defer c.Logger.SetLevel(prevLevel)

	p := tea.NewProgram(NewPlayerModel(ctx, mgr, notify), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
