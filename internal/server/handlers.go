package server

import (
	_ "embed"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/astlens/pkg/cache"
	apperrors "github.com/matzehuels/astlens/pkg/errors"
	"github.com/matzehuels/astlens/pkg/interact"
	"github.com/matzehuels/astlens/pkg/pipeline"
	"github.com/matzehuels/astlens/pkg/render"
	"github.com/matzehuels/astlens/pkg/render/svg"
	"github.com/matzehuels/astlens/pkg/tree"
	"github.com/matzehuels/astlens/pkg/viewer"
	"github.com/matzehuels/astlens/pkg/viewport"
)

//go:embed index.html
var indexHTML []byte

// viewState is returned by every request that changes a viewer.
type viewState struct {
	ID     string  `json:"id"`
	Nodes  int     `json:"nodes"`
	Scale  float64 `json:"scale"`
	PanX   float64 `json:"panX"`
	PanY   float64 `json:"panY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Redraw bool    `json:"redraw"`
	Frames int     `json:"frames"`
}

// resizeRequest is the body of POST /api/sessions/{id}/resize.
type resizeRequest struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PixelRatio float64 `json:"pixelRatio"`
}

func (s *Server) state(sess *session, redraw bool) viewState {
	vp := sess.v.Viewport()
	px, py := vp.Pan()
	size, _ := sess.v.Size()
	nodes := 0
	if res := sess.v.Layout(); !res.Empty() {
		nodes = res.Len()
	}
	return viewState{
		ID:     sess.id,
		Nodes:  nodes,
		Scale:  vp.Scale(),
		PanX:   px,
		PanY:   py,
		Width:  size.W,
		Height: size.H,
		Redraw: redraw,
		Frames: sess.v.Frames(),
	}
}

// =============================================================================
// Page and health
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.Sessions()})
}

func (s *Server) handlePreload(w http.ResponseWriter, r *http.Request) {
	if s.preload == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, s.preload)
}

// =============================================================================
// Sessions
// =============================================================================

// handleCreateSession builds a viewer for the posted analysis document.
// The initial size comes from the width, height and pixelRatio query
// parameters, falling back to the configured size.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var a tree.Analysis
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, s.logger, err)
		return
	}

	width, height, ratio, err := s.initialSize(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	v, err := viewer.New(
		func(w, h int) (render.Surface, error) { return svg.New(w, h), nil },
		viewer.WithSize(width, height, ratio),
		viewer.WithLayout(s.opts.Layout),
		viewer.WithRenderer(s.opts.Renderer()),
		viewer.WithFitMargin(s.opts.FitMargin),
		viewer.WithViewport(viewport.WithScaleRange(s.opts.MinScale, s.opts.MaxScale)),
	)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	sess := newSession(v, nil, s.ttl)
	keys := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "session:"+sess.id+":")
	sess.runner = pipeline.NewRunner(s.cache, keys, s.logger)

	root := sess.runner.Build(r.Context(), a)
	v.SetTree(root)

	if err := s.sessions.add(sess); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.logger.Info("session created", "id", sess.id, "nodes", tree.Count(root), "live", s.Sessions())
	writeJSON(w, http.StatusCreated, s.state(sess, true))
}

func (s *Server) initialSize(r *http.Request) (w, h, ratio float64, err error) {
	w, h, ratio = viewer.DefaultWidth, viewer.DefaultHeight, s.opts.PixelRatio
	if s.opts.IsFrame() {
		w, h = s.opts.Width, s.opts.Height
	}
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"width", &w}, {"height", &h}, {"pixelRatio", &ratio}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return 0, 0, 0, apperrors.Wrap(apperrors.ErrCodeInvalidInput, perr, "invalid %s %q", p.name, raw)
		}
		*p.dst = v
	}
	return w, h, ratio, apperrors.ValidateSurfaceSize(w, h, ratio)
}

// withSession looks up the session named in the URL and runs fn with its
// lock held.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session)) {
	sess, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		writeJSON(w, http.StatusOK, s.state(sess, false))
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateSessionID(id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if !s.sessions.remove(id) {
		writeError(w, s.logger, apperrors.New(apperrors.ErrCodeSessionNotFound, "session %s not found", id))
		return
	}
	s.logger.Info("session closed", "id", id, "live", s.Sessions())
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Frames and interaction
// =============================================================================

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		surface, ok := sess.v.Surface().(*svg.Surface)
		if !ok {
			writeError(w, s.logger, apperrors.New(apperrors.ErrCodeInternal, "session surface is not svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(surface.Bytes())
	})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var e interact.Event
	if err := decodeJSON(w, r, &e); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.withSession(w, r, func(sess *session) {
		redraw := sess.v.Handle(e)
		writeJSON(w, http.StatusOK, s.state(sess, redraw))
	})
}

// handleCommand runs one of the toolbar commands: fit, zoom-in, zoom-out.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")
	var run func(*viewer.Viewer)
	switch command {
	case "fit":
		run = (*viewer.Viewer).Fit
	case "zoom-in":
		run = (*viewer.Viewer).ZoomIn
	case "zoom-out":
		run = (*viewer.Viewer).ZoomOut
	default:
		writeError(w, s.logger, apperrors.New(apperrors.ErrCodeNotFound, "unknown command %q", command))
		return
	}
	s.withSession(w, r, func(sess *session) {
		run(sess.v)
		writeJSON(w, http.StatusOK, s.state(sess, true))
	})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.PixelRatio == 0 {
		req.PixelRatio = 1
	}
	s.withSession(w, r, func(sess *session) {
		if err := sess.v.Resize(req.Width, req.Height, req.PixelRatio); err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, s.state(sess, true))
	})
}

// handleExport renders the session's current view in one output format.
// Frame formats (svg, png, pdf) show exactly what the viewer shows.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.withSession(w, r, func(sess *session) {
		size, ratio := sess.v.Size()
		state := sess.v.Viewport().State()

		opts := s.opts
		opts.Formats = []string{format}
		opts.Width, opts.Height, opts.PixelRatio = size.W, size.H, ratio
		opts.Viewport = &state

		artifacts, hit, err := sess.runner.RenderWithCacheInfo(r.Context(), sess.v.Layout(), opts)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		w.Header().Set("Content-Type", contentType(format))
		w.Header().Set("Content-Disposition", `attachment; filename="view.`+pipeline.Extension(format)+`"`)
		w.Header().Set("X-Cache", cacheStatus(hit))
		_, _ = w.Write(artifacts[format])
	})
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG, pipeline.FormatDOT:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
