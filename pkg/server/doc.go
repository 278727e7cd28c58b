// Package server exposes token trajectories over HTTP.
//
// # Routes
//
//	GET  /health                              liveness, {"status":"healthy",...}
//	GET  /external/health/gpt-3d-visualizer   same body, used by clients to prewarm
//	POST /api/visualize                       {"input_text": "..."} -> {"id", "tokens"}
//	GET  /api/trajectories/{id}               archived response
//	GET  /api/trajectories/{id}/render        snapshot (?format=svg|png|pdf|json|dot&step=n)
//
// Responses to /api/visualize are cached by input through a [cache.Cache]
// and archived in a [store.Store] when one is configured. Errors are JSON:
//
//	{"error": {"code": "INVALID_INPUT", "message": "input is empty"}}
//
// # Middleware
//
// Every request passes through chi's request ID and panic recovery, a CORS
// filter for the configured origins, and an access log built on
// httpsnoop's response metrics.
package server
