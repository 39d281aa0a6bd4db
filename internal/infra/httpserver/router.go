package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appanalyses "github.com/bryanwahyu/analysis-gateway/internal/application/analyses"
	"github.com/bryanwahyu/analysis-gateway/internal/application/normalize"
	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/analysis-gateway/internal/infra/relay"
	"github.com/bryanwahyu/analysis-gateway/internal/logger"
	"github.com/bryanwahyu/analysis-gateway/internal/middleware"
)

const (
	defaultMaxBodyBytes   = 8 << 20
	defaultMaxUploadBytes = 64 << 20
	// multipart parts beyond this spill to temp files
	multipartMemory = 32 << 20
)

// Forwarder performs the server-side hop of a relay request.
type Forwarder interface {
	Forward(ctx context.Context, target string, body []byte) (json.RawMessage, error)
}

type Options struct {
	AllowedOrigins []string
	AllowedHosts   []string
	MaxBodyBytes   int64
	// MaxUploadBytes caps /v1/analyses/{id}/run bodies, which carry raw
	// photos before they are downscaled.
	MaxUploadBytes int64
	RateLimiter    *middleware.RateLimiter
	Sessions       map[string]analysis.Session
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	svc  *appanalyses.Service
	fwd  Forwarder
	opts Options
}

func NewRouter(svc *appanalyses.Service, fwd Forwarder, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, fwd: fwd, opts: opts}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Group(func(rt chi.Router) {
		rt.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
			MaxAge:         300,
		}))
		rt.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
		rt.Options("/relay", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		rt.Post("/relay", r.handleRelay)
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.Sessions))
		rt.Get("/analyses", r.wrap(r.handleCatalog))
		rt.Post("/analyses/{id}/run", r.wrap(r.handleRun))
		rt.Get("/triggers", r.wrap(r.handleTriggers))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		}
	}
}

func statusFor(err error) int {
	var rre *analysis.RemoteReportedError
	var mbe *http.MaxBytesError
	switch {
	case errors.Is(err, analysis.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrEncodingFailed),
		errors.Is(err, analysis.ErrMissingRequiredInput),
		errors.Is(err, analysis.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrPayloadTooLarge), errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &rre):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, analysis.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// POST /relay
// Body: {"targetUrl": "<url>", ...fields forwarded as-is}
func (r *Router) handleRelay(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, r.opts.MaxBodyBytes))
	if err != nil {
		middleware.IncrementRelaysRejected()
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read request body"})
		return
	}

	target, rest, err := relay.SplitRelayBody(body)
	if err != nil {
		middleware.IncrementRelaysRejected()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := middleware.ValidateTargetURL(target, r.opts.AllowedHosts); err != nil {
		middleware.IncrementRelaysRejected()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	middleware.IncrementRelays()
	raw, err := r.fwd.Forward(req.Context(), target, rest)
	if err != nil {
		middleware.IncrementRelaysFailed()
		logger.Log.WithFields(logrus.Fields{
			"target_host": hostOf(target),
			"request_id":  chimw.GetReqID(req.Context()),
		}).WithError(err).Error("relay failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "upstream request failed",
			"details": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// GET /v1/analyses
func (r *Router) handleCatalog(w http.ResponseWriter, req *http.Request) error {
	writeJSON(w, http.StatusOK, r.svc.Catalog())
	return nil
}

// POST /v1/analyses/{id}/run?filter=&sort=desc
// Body: {"extraInputs": {...}} or multipart with an optional "file" part.
func (r *Router) handleRun(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrBadRequest, err)
	}
	session, ok := middleware.SessionFromContext(req.Context())
	if !ok {
		return fmt.Errorf("%w: no session", analysis.ErrBadRequest)
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes)
	extra, upload, err := r.readRunInput(req)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	cmd := appanalyses.TriggerCommand{
		AnalysisID:  analysis.ID(id),
		Session:     session,
		ExtraInputs: extra,
		File:        upload,
		View: normalize.DeriveInput{
			Filter:   middleware.SanitizeString(q.Get("filter")),
			SortDesc: strings.EqualFold(q.Get("sort"), "desc"),
		},
	}

	middleware.IncrementTriggers()
	res, err := r.svc.Trigger(req.Context(), cmd)
	if err != nil {
		middleware.IncrementTriggersFailed()
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

func (r *Router) readRunInput(req *http.Request) (map[string]any, *appanalyses.Upload, error) {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(req)
	}

	var body struct {
		ExtraInputs map[string]any `json:"extraInputs"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, nil, fmt.Errorf("%w: request body too large", analysis.ErrPayloadTooLarge)
		}
		return nil, nil, fmt.Errorf("%w: invalid JSON body: %v", analysis.ErrBadRequest, err)
	}
	for k, v := range body.ExtraInputs {
		if s, ok := v.(string); ok {
			body.ExtraInputs[k] = middleware.SanitizeString(s)
		}
	}
	return body.ExtraInputs, nil, nil
}

func readMultipart(req *http.Request) (map[string]any, *appanalyses.Upload, error) {
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, nil, fmt.Errorf("%w: request body too large", analysis.ErrPayloadTooLarge)
		}
		return nil, nil, fmt.Errorf("%w: invalid multipart body: %v", analysis.ErrBadRequest, err)
	}

	extra := make(map[string]any, len(req.MultipartForm.Value))
	for k, vs := range req.MultipartForm.Value {
		if len(vs) > 0 {
			extra[k] = middleware.SanitizeString(vs[0])
		}
	}

	f, hdr, err := req.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return extra, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", analysis.ErrBadRequest, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read file: %v", analysis.ErrEncodingFailed, err)
	}
	return extra, &appanalyses.Upload{Name: hdr.Filename, Data: data}, nil
}

// GET /v1/triggers?limit=20
func (r *Router) handleTriggers(w http.ResponseWriter, req *http.Request) error {
	session, ok := middleware.SessionFromContext(req.Context())
	if !ok {
		return fmt.Errorf("%w: no session", analysis.ErrBadRequest)
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), session.UserID, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("writing response failed")
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
