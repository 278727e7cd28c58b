package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/internal/config"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/source"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// =============================================================================
// Source Flags
// =============================================================================

// sourceFlags selects where a command gets its token stream.
type sourceFlags struct {
	source  string
	apiURL  string
	file    string
	id      string
	noCache bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "token source: synthetic, http or file (default from config)")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "visualize API base URL for the http source")
	cmd.Flags().StringVar(&f.file, "file", "", "saved visualize response to replay (implies --source file)")
	cmd.Flags().StringVar(&f.id, "id", "", "load an archived trajectory instead of fetching")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the response cache")
}

// apply overlays the flags on a copy of cfg.
func (f *sourceFlags) apply(cfg config.Config) (config.Config, error) {
	if f.file != "" {
		cfg.Client.Source = config.SourceFile
	}
	if f.source != "" {
		cfg.Client.Source = f.source
	}
	if f.apiURL != "" {
		cfg.Client.APIURL = f.apiURL
		if f.source == "" && f.file == "" {
			cfg.Client.Source = config.SourceHTTP
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// =============================================================================
// Token Loading
// =============================================================================

// stream is a token stream with its provenance.
type stream struct {
	ID        string
	Input     string
	Source    string
	Tokens    []trajectory.TokenVector
	Malformed int
	Cached    bool
}

// loadStream resolves the flags and input to a token stream: an archived
// trajectory for --id, otherwise a fetch from the configured source.
func (c *CLI) loadStream(ctx context.Context, f *sourceFlags, input string) (*stream, error) {
	if f.id != "" {
		return c.loadArchived(ctx, f.id)
	}

	cfg, err := f.apply(*c.config())
	if err != nil {
		return nil, err
	}

	// The file source carries its own stream; the input is optional.
	if cfg.Client.Source == config.SourceFile && input == "" {
		if f.file == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "the file source needs --file")
		}
		res, err := source.NewFile(f.file).Load()
		if err != nil {
			return nil, err
		}
		return fromResult(res, "", "file"), nil
	}
	if input == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input text must not be empty")
	}

	respCache, err := c.openCache(ctx, f.noCache)
	if err != nil {
		return nil, err
	}
	defer respCache.Close()

	src, err := cfg.OpenSource(f.file, respCache, c.Logger)
	if err != nil {
		return nil, err
	}

	if h, ok := src.(*source.HTTP); ok && cfg.Client.Prewarm {
		_ = h.Prewarm(ctx)
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Fetching tokens from %s...", src.Name()))
	spinner.Start()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	res, err := src.Fetch(ctx, input)
	spinner.Stop()
	if spinner.Cancelled() {
		return nil, context.Cause(ctx)
	}
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Fetched %d tokens", len(res.Tokens)))
	if res.Malformed > 0 {
		logger.Warn("malformed token records placed at the previous anchor", "count", res.Malformed)
	}
	return fromResult(res, input, src.Name()), nil
}

func (c *CLI) loadArchived(ctx context.Context, id string) (*stream, error) {
	st, err := c.config().OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no archive configured (store.backend = none)")
	}
	defer st.Close()

	t, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &stream{ID: t.ID, Input: t.Input, Source: t.Source, Tokens: t.Tokens}, nil
}

func fromResult(res *source.Result, input, name string) *stream {
	return &stream{
		ID:        res.ID,
		Input:     input,
		Source:    name,
		Tokens:    res.Tokens,
		Malformed: res.Malformed,
		Cached:    res.Cached,
	}
}

// outputCount is the number of output tokens in s.
func (s *stream) outputCount() int {
	return len(trajectory.OutputIndices(s.Tokens))
}

// response is the wire form of s, as written by fetch and read by the file
// source.
func (s *stream) response() *source.Response {
	return &source.Response{ID: s.ID, Tokens: trajectory.ToRecords(s.Tokens)}
}
