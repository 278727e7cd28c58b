package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/buildinfo"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/server"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/source"
)

// serveOpts holds flag values for the serve command.
type serveOpts struct {
	host      string
	port      int
	cors      []string
	seed      uint64
	noCache   bool
	noArchive bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the visualize HTTP API",
		Long: `Run the visualize HTTP API backed by the synthetic token generator.

Routes:
  GET  /health
  GET  /external/health/gpt-3d-visualizer
  POST /api/visualize
  GET  /api/trajectories/{id}
  GET  /api/trajectories/{id}/render`,
		Example: `  tokenviz serve
  tokenviz serve --port 9000 --cors http://localhost:5173
  PORT=9000 tokenviz serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (default from config)")
	cmd.Flags().StringSliceVar(&opts.cors, "cors", nil, "allowed CORS origins, * for any")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "synthetic generator seed (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&opts.noArchive, "no-archive", false, "do not archive generated trajectories")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg := c.config()

	sc := cfg.ServerConfig(buildinfo.Read().Version)
	if opts.host != "" {
		sc.Host = opts.host
	}
	if opts.port != 0 {
		sc.Port = opts.port
	}
	if cmd.Flags().Changed("cors") {
		sc.CORSOrigins = opts.cors
	}
	seed := cfg.Server.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.seed
	}

	respCache, err := c.openCache(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer respCache.Close()

	srvOpts := []server.Option{server.WithCache(respCache), server.WithLogger(logger)}
	if !opts.noArchive {
		st, err := cfg.OpenStore(ctx)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		if st != nil {
			defer st.Close()
			srvOpts = append(srvOpts, server.WithStore(st))
		}
	}

	srv := server.New(sc, source.NewSynthetic(seed), srvOpts...)
	printInfo("%s %s listening on %s", StyleTitle.Render(sc.Service), StyleDim.Render(sc.Version), StyleLink.Render("http://"+sc.Addr()))
	return srv.ListenAndServe(ctx)
}
