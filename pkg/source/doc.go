// Package source provides token-vector sources.
//
// A [Source] turns prompt text into an ordered token stream with a 3D
// destination per token. The whole stream is delivered at once or the fetch
// fails; there is no partial delivery.
//
// Implementations:
//   - [Synthetic]: deterministic placeholder generator, used by the server
//   - [HTTP]: client for a visualize server (POST /api/visualize)
//   - [File]: a saved visualize response, for offline playback
//
// # Wire format
//
//	{"tokens": [{"token": "cat", "destination": [0.4, -1.2, 2.0], "is_input": false}]}
//
// Records with malformed destinations are kept and counted; see
// [trajectory.FromRecords].
package source
