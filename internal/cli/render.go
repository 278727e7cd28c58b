package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/camera"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/nodelink"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/sink"
)

const (
	viewScene = "scene" // projected 3D vectors and labels
	viewChain = "chain" // token chain as a Graphviz digraph
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple outputs)
	view      string   // "scene" or "chain"
	formats   []string // output formats: svg, png, pdf, json, dot
	step      int      // settled output tokens; negative for all
	everyStep bool     // one file per step from 0 to all
	width     float64  // viewport width in pixels
	height    float64  // viewport height in pixels
	scale     float64  // PNG scale factor
	azimuth   float64  // camera orbit from the default, degrees
	polar     float64  // camera tilt from the default, degrees
	zoom      float64  // camera distance factor
	noAxes    bool     // hide the axes
	hud       bool     // draw the playback status line
	detailed  bool     // annotate the chain with destinations and lengths
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      sourceFlags
		formatsStr string
	)
	opts := renderOpts{
		view:   viewScene,
		step:   -1,
		width:  sink.DefaultWidth,
		height: sink.DefaultHeight,
		scale:  2,
		zoom:   1,
	}

	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Render a snapshot of a token stream",
		Long: `Render a token stream with a number of output tokens settled.

Scene views project the vectors and labels through an orbit camera; chain
views draw the stream as a Graphviz digraph. PNG and PDF need rsvg-convert
for scenes.`,
		Example: `  tokenviz render "Hello, world!" -o hello.svg
  tokenviz render --file fox.json -f svg,png --step 3
  tokenviz render --id 0b4e7a3c --view chain --detailed -f svg
  tokenviz render "Hello" --every-step -o frames/hello`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.view != viewScene && opts.view != viewChain {
				return fmt.Errorf("invalid view: %s (must be %s or %s)", opts.view, viewScene, viewChain)
			}
			s, err := c.loadStream(cmd.Context(), &flags, joinArgs(args))
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), s, &opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.view, "view", opts.view, "view: scene (default), chain")
	cmd.Flags().IntVar(&opts.step, "step", opts.step, "settled output tokens (default all)")
	cmd.Flags().BoolVar(&opts.everyStep, "every-step", false, "write one file per step")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().Float64Var(&opts.azimuth, "azimuth", 0, "orbit the camera around the Y axis (degrees)")
	cmd.Flags().Float64Var(&opts.polar, "polar", 0, "tilt the camera (degrees, positive looks from lower)")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", opts.zoom, "camera distance factor (below 1 moves closer)")
	cmd.Flags().BoolVar(&opts.noAxes, "no-axes", false, "hide the axes")
	cmd.Flags().BoolVar(&opts.hud, "hud", false, "draw the playback status line")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show destinations and lengths (chain view)")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// basePath strips a known format extension from output. An empty output
// becomes "trajectory".
func basePath(output string) string {
	if output == "" {
		return "trajectory"
	}
	ext := filepath.Ext(output)
	if render.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// cam returns the default camera moved by the orbit flags.
func (o *renderOpts) cam() camera.Camera {
	cam := camera.Default()
	cam.Orbit(o.azimuth*math.Pi/180, o.polar*math.Pi/180)
	cam.Zoom(o.zoom)
	return cam
}

func runRender(ctx context.Context, s *stream, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	seq := playback.New(s.Tokens, playback.DefaultOptions())

	steps := []int{opts.step}
	if opts.step < 0 {
		steps[0] = seq.Total()
	}
	if opts.everyStep {
		steps = steps[:0]
		for i := 0; i <= seq.Total(); i++ {
			steps = append(steps, i)
		}
	}

	base := basePath(opts.output)
	var written []string
	for _, step := range steps {
		if err := seq.Seek(step); err != nil {
			return err
		}
		frame := seq.Frame()
		for _, format := range opts.formats {
			data, err := renderFrame(ctx, s, frame, format, opts)
			if errors.Is(err, errSkipFormat) {
				logger.Debugf("Skipping %s/%s (unsupported combination)", opts.view, format)
				continue
			}
			if err != nil {
				return fmt.Errorf("%s/%s: %w", opts.view, format, err)
			}

			path := outputPath(opts, base, format, step)
			if err := writeFile(path, data); err != nil {
				return err
			}
			logger.Debugf("Generated %s: %d bytes", path, len(data))
			written = append(written, path)
		}
	}

	printSuccess("Rendered %d file(s)", len(written))
	printStats(len(s.Tokens), s.outputCount(), s.Cached)
	for _, p := range written {
		printFile(p)
	}
	if s.ID != "" && !opts.everyStep {
		printNewline()
		printNextStep("Animate it", fmt.Sprintf("%s play --id %s", appName, s.ID))
	}
	return nil
}

// outputPath names the file for one format and step. A single output with a
// single format is written exactly where -o points.
func outputPath(opts *renderOpts, base, format string, step int) string {
	switch {
	case opts.everyStep:
		return fmt.Sprintf("%s_%03d.%s", base, step, format)
	case len(opts.formats) == 1 && opts.output != "":
		return opts.output
	default:
		return base + "." + format
	}
}

// errSkipFormat marks a format the view cannot produce.
var errSkipFormat = fmt.Errorf("skip unsupported format")

// renderFrame dispatches on view and format.
func renderFrame(ctx context.Context, s *stream, frame playback.Frame, format string, opts *renderOpts) ([]byte, error) {
	if format == render.FormatDOT {
		return []byte(nodelink.ToDOT(s.Tokens, nodelink.Options{Detailed: opts.detailed})), nil
	}
	if opts.view == viewChain {
		return renderChain(ctx, s, format, opts)
	}

	switch format {
	case render.FormatJSON:
		return sink.RenderJSON(frame, sink.WithJSONTokens(s.Tokens), sink.WithJSONSession(s.ID))
	case render.FormatPNG:
		return render.ToPNG(ctx, sceneSVG(frame, opts), opts.scale)
	case render.FormatPDF:
		return render.ToPDF(ctx, sceneSVG(frame, opts))
	default:
		return sceneSVG(frame, opts), nil
	}
}

func sceneSVG(frame playback.Frame, opts *renderOpts) []byte {
	svgOpts := []sink.SVGOption{
		sink.WithCamera(opts.cam()),
		sink.WithSize(opts.width, opts.height),
	}
	if opts.noAxes {
		svgOpts = append(svgOpts, sink.WithoutAxes())
	}
	if opts.hud {
		svgOpts = append(svgOpts, sink.WithHUD())
	}
	return sink.RenderSVG(frame, svgOpts...)
}

// renderChain draws the whole stream; the step does not apply.
func renderChain(ctx context.Context, s *stream, format string, opts *renderOpts) ([]byte, error) {
	dot := nodelink.ToDOT(s.Tokens, nodelink.Options{Detailed: opts.detailed})
	switch format {
	case render.FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case render.FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case render.FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	default:
		return nil, errSkipFormat
	}
}

// writeFile writes data to path, creating parent directories. "-" writes
// to stdout.
func writeFile(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
