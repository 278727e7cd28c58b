package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/cache"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/nodelink"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/render/sink"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/source"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/store"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

// Cache status header on /api/visualize responses.
const cacheHeader = "X-Cache"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, source.HealthStatus{
		Status:  "healthy",
		Service: s.cfg.Service,
		Version: s.cfg.Version,
	})
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	var req source.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, s.logger, badRequest("request body exceeds %d bytes", maxBodyBytes))
			return
		}
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}
	text, err := errors.NormalizeInput(req.InputText)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	ctx := r.Context()
	key := cache.VisualizeKey(s.src.Name(), text)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		w.Header().Set(cacheHeader, "HIT")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	} else if err != nil {
		s.logger.Warn("cache get failed", "err", err)
	}

	res, err := s.src.Fetch(ctx, text)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	// An id that failed to archive is not cached, so a later hit never hands
	// out an id the trajectory endpoints cannot resolve.
	id, cacheable := uuid.NewString(), true
	if s.store != nil {
		t := store.NewTrajectory(text, s.src.Name(), res.Tokens)
		if err := s.store.Put(ctx, t); err != nil {
			s.logger.Warn("archive failed", "err", err)
			cacheable = false
		} else {
			id = t.ID
		}
	}

	resp := source.Response{ID: id, Tokens: trajectory.ToRecords(res.Tokens)}
	data, err := json.Marshal(resp)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if cacheable {
		if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache set failed", "err", err)
		}
	}

	w.Header().Set(cacheHeader, "MISS")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) loadTrajectory(r *http.Request) (*store.Trajectory, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, notFound("trajectory archive is disabled")
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTrajectory(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, source.Response{ID: t.ID, Tokens: trajectory.ToRecords(t.Tokens)})
}

var contentTypes = map[string]string{
	render.FormatSVG:  "image/svg+xml",
	render.FormatPNG:  "image/png",
	render.FormatPDF:  "application/pdf",
	render.FormatJSON: "application/json",
	render.FormatDOT:  "text/vnd.graphviz",
}

// handleRender draws an archived trajectory with the first step outputs
// settled, or all of them when step is absent.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTrajectory(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	if err := render.ValidateFormat(format); err != nil {
		writeError(w, s.logger, err)
		return
	}

	seq := playback.New(t.Tokens, playback.DefaultOptions())
	step := seq.Total()
	if v := q.Get("step"); v != "" {
		if step, err = strconv.Atoi(v); err != nil {
			writeError(w, s.logger, badRequest("step must be an integer, got %q", v))
			return
		}
	}
	if err := seq.Seek(step); err != nil {
		writeError(w, s.logger, err)
		return
	}
	frame := seq.Frame()

	var out []byte
	switch format {
	case render.FormatSVG:
		out = sink.RenderSVG(frame, sink.WithHUD())
	case render.FormatPNG:
		out, err = render.ToPNG(r.Context(), sink.RenderSVG(frame), 2)
	case render.FormatPDF:
		out, err = render.ToPDF(r.Context(), sink.RenderSVG(frame))
	case render.FormatJSON:
		out, err = sink.RenderJSON(frame, sink.WithJSONTokens(t.Tokens), sink.WithJSONSession(t.ID))
	case render.FormatDOT:
		out = []byte(nodelink.ToDOT(t.Tokens, nodelink.Options{Detailed: true}))
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(out)
}
