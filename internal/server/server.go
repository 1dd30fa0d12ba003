// Package server exposes the transformation pipeline over HTTP.
//
// Routes:
//
//	POST /v1/transform  body: DOT text; query: skip_kinds, skip_names,
//	                    frequent_deps, legend, format (dot|json|svg|png)
//	GET  /healthz
//
// Each recoverable parse warning is returned as one X-Cmakegraph-Warnings
// response header.
//
// Errors are returned as JSON {"code": ..., "message": ...}: 400 for
// problems with the request or its description, 500 otherwise.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cmakegraph/pkg/cache"
	"github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/observability"
	"github.com/matzehuels/cmakegraph/pkg/pipeline"
	"github.com/matzehuels/cmakegraph/pkg/render"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

const (
	defaultMaxBodyBytes = 8 << 20
	defaultCacheEntries = 256
	shutdownTimeout     = 5 * time.Second
	warningsHeader      = "X-Cmakegraph-Warnings"
)

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
}

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	// Renderer renders svg/png responses. Defaults to one backed by an
	// in-memory cache.
	Renderer *render.Renderer
	// MaxBodyBytes limits request bodies. Defaults to 8 MiB.
	MaxBodyBytes int64
}

// Server handles transform requests. Each request runs its own pipeline.
type Server struct {
	logger   *log.Logger
	renderer *render.Renderer
	maxBody  int64
}

// New creates a Server, filling unset options with defaults.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer(cache.NewMemoryCache(defaultCacheEntries), nil, opts.Logger)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Server{logger: opts.Logger, renderer: opts.Renderer, maxBody: opts.MaxBodyBytes}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/transform", s.transform)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// observe reports every request to the registered HTTP hooks.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) transform(w http.ResponseWriter, r *http.Request) {
	opts, format, err := parseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	res, err := pipeline.Run(r.Context(), string(body), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := pipeline.Artifact(r.Context(), res, format, s.renderer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	for _, warn := range res.Warnings {
		w.Header().Add(warningsHeader, headerLine.Replace(warn.Message))
	}
	_, _ = w.Write(out)
}

// headerLine keeps a warning message on a single header line.
var headerLine = strings.NewReplacer("\r", " ", "\n", " ")

// parseQuery reads pipeline options from the query string. List parameters
// may be repeated or comma-separated.
func parseQuery(r *http.Request) (pipeline.Options, string, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		SkipKinds: splitList(q["skip_kinds"]),
		SkipNames: splitList(q["skip_names"]),
	}
	if v := q.Get("frequent_deps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, "", errors.New(errors.ErrCodeInvalidInput, "frequent_deps: %q is not an integer", v)
		}
		opts.FrequentThreshold = n
	}
	if v := q.Get("legend"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, "", errors.New(errors.ErrCodeInvalidInput, "legend: %q is not a boolean", v)
		}
		opts.Legend = b
	}
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, "", err
	}
	if err := opts.Validate(); err != nil {
		return opts, "", err
	}
	return opts, format, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.IsInputError(err) {
		status = http.StatusBadRequest
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("transform failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
	} else {
		s.logger.Debug("rejected request", "code", code, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: errors.UserMessage(err)})
}
