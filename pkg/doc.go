// Package pkg holds the libraries behind tokenviz, a 3D visualizer for
// language-model token streams.
//
// # Overview
//
// A token stream is a sequence of tokens, each with a destination point in
// 3D space and an input/output flag. tokenviz draws every token as a vector
// from the previous anchor to its destination, merges the labels of tokens
// that share a point, and animates how output tokens appear: the labels on
// screen gather on the next vector, then the vector grows to its end.
//
// The pkg directory is organized by concern:
//
//  1. [trajectory] - Token vectors, segments and merged label placement
//  2. [playback] - The gather/grow sequencer and its ticking driver
//  3. [session] - The live session: submit, replay and supersede streams
//  4. [source] - Token sources (synthetic, HTTP visualize API, saved file)
//  5. [render] - Scene sinks (SVG, JSON, terminal text) and Graphviz chains
//  6. [server] - The visualize HTTP API
//  7. [cache], [store] - Response caching and the trajectory archive
//
// # Architecture
//
// The typical data flow:
//
//	input text
//	     ↓
//	[source] (fetch or generate records, decode, count malformed)
//	     ↓
//	[trajectory] (segments + labels)
//	     ↓
//	[playback] (gather → grow, one output token per cycle)
//	     ↓
//	[render/sink] (SVG, JSON lines, terminal canvas)
//
// # Quick Start
//
// Generate a stream and render it with every output token settled:
//
//	import (
//	    "context"
//	    "github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
//	    "github.com/JaceDashS/gpt-3d-visualizer/pkg/render/sink"
//	    "github.com/JaceDashS/gpt-3d-visualizer/pkg/source"
//	)
//
//	res, _ := source.NewSynthetic(42).Fetch(context.Background(), "Hello, world!")
//	seq := playback.New(res.Tokens, playback.DefaultOptions())
//	_ = seq.Seek(seq.Total())
//	svg := sink.RenderSVG(seq.Frame())
//
// # Testing
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/playback/...    # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [trajectory]: https://pkg.go.dev/github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory
// [playback]: https://pkg.go.dev/github.com/JaceDashS/gpt-3d-visualizer/pkg/playback
// [session]: https://pkg.go.dev/github.com/JaceDashS/gpt-3d-visualizer/pkg/session
// [source]: https://pkg.go.dev/github.com/JaceDashS/gpt-3d-visualizer/pkg/source
// [render]: https://pkg.go.dev/github.com/JaceDashS/gpt-3d-visualizer/pkg/render
// [server]: https://pkg.go.dev/github.com/JaceDashS/gpt-3d-visualizer/pkg/server
// [cache]: https://pkg.go.dev/github.com/JaceDashS/gpt-3d-visualizer/pkg/cache
// [store]: https://pkg.go.dev/github.com/JaceDashS/gpt-3d-visualizer/pkg/store
package pkg
