// Package sandbox is an in-process fake of the nyris API. It serves a
// generated catalog, honors the X-Options header and records every request,
// for end-to-end tests and local development.
package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nyris/nyris-go/internal/domain/feedback"
	"github.com/nyris/nyris-go/internal/domain/matching/filter"
	"github.com/nyris/nyris-go/internal/domain/matching/option"
	"github.com/nyris/nyris-go/internal/domain/matching/xoptions"
	"github.com/nyris/nyris-go/internal/domain/response"
	logpkg "github.com/nyris/nyris-go/internal/logger"
	"github.com/nyris/nyris-go/internal/metrics"
	"github.com/nyris/nyris-go/internal/transport/endpoint"
	"github.com/nyris/nyris-go/internal/transport/header"
	"github.com/nyris/nyris-go/internal/transport/request"
)

const (
	maxBodyBytes             = 32 << 20
	defaultCategoryPredicted = 3

	codeUnauthorized = "unauthorized"
	codeBadRequest   = "bad_request"
	codeNotFound     = "not_found"
	codeInjected     = "injected_failure"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Config configures the sandbox server.
type Config struct {
	APIKeys     []string // empty disables authentication
	CatalogSize int
	Logger      *zap.Logger
	Metrics     *metrics.HTTP // optional
}

// Server implements the API routes.
type Server struct {
	catalog  *Catalog
	recorder *Recorder
	apiKeys  []string
	logger   *zap.Logger
	metrics  *metrics.HTTP

	mu         sync.Mutex
	failCount  int
	failStatus int
}

// NewServer creates a sandbox server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.CatalogSize
	if size <= 0 {
		size = 100
	}
	return &Server{
		catalog:  NewCatalog(size),
		recorder: &Recorder{},
		apiKeys:  cfg.APIKeys,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

// Recorder returns the request recorder.
func (s *Server) Recorder() *Recorder { return s.recorder }

// Catalog returns the served catalog.
func (s *Server) Catalog() *Catalog { return s.catalog }

// FailNext answers the next n authenticated requests with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCount, s.failStatus = n, status
}

func (s *Server) takeFailure() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCount == 0 {
		return 0, false
	}
	s.failCount--
	return s.failStatus, true
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}
	r.Use(APIKeyMiddleware(s.apiKeys))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.recordMiddleware)
		r.Post("/"+endpoint.PathMatch, s.handleMatch)
		r.Post("/"+endpoint.PathMatchHeadered, s.handleMatchHeadered)
		r.Post("/"+endpoint.PathMatchVector, s.handleMatchVector)
		r.Post("/"+endpoint.PathRegions, s.handleRegions)
		r.Post("/"+endpoint.PathText, s.handleText)
		r.Post("/"+endpoint.PathNotFound+"/{requestID}", s.handleNotFound)
		r.Get("/"+endpoint.PathRecommend+"/{sku}", s.handleRecommend)
		r.Post("/"+endpoint.PathFeedback, s.handleFeedback)
	})
	return r
}

type exchangeKey struct{}

// recordMiddleware records the exchange and injects configured failures.
func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ex := &Exchange{
			Method:      r.Method,
			Path:        r.URL.Path,
			Options:     r.Header.Get(xoptions.HeaderName),
			APIKey:      r.Header.Get(header.APIKey),
			ClientID:    r.Header.Get(header.ClientID),
			UserAgent:   r.UserAgent(),
			Accept:      r.Header.Get("Accept"),
			Language:    r.Header.Get("Accept-Language"),
			ContentType: r.Header.Get("Content-Type"),
		}
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			ex.Status = ww.Status()
			s.recorder.addExchange(*ex)
		}()

		if status, ok := s.takeFailure(); ok {
			writeError(ww, status, codeInjected, "injected failure")
			return
		}

		r.Body = http.MaxBytesReader(ww, r.Body, maxBodyBytes)
		ctx := context.WithValue(r.Context(), exchangeKey{}, ex)
		ctx = logpkg.With(ctx, zap.String("client_id", ex.ClientID))
		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func exchangeFrom(r *http.Request) *Exchange {
	if ex, ok := r.Context().Value(exchangeKey{}).(*Exchange); ok {
		return ex
	}
	return &Exchange{}
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.options(w, r)
	if !ok {
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var filters []filter.Filter
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart body")
			return
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "missing image part")
			return
		}
		size, _ := io.Copy(io.Discard, f)
		_ = f.Close()
		exchangeFrom(r).BodySize = int(size)
		filters = parseFilters(r.MultipartForm.Value)
		exchangeFrom(r).Filters = filters
	} else if !s.readImage(w, r) {
		return
	}

	offers := s.catalog.Top(s.catalog.Size())
	offers = applyFilters(offers, filters)
	writeJSON(w, http.StatusOK, s.result(opts, offers, uuid.NewString()))
}

func (s *Server) handleMatchHeadered(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.options(w, r)
	if !ok || !s.readImage(w, r) {
		return
	}
	res := s.result(opts, s.catalog.Top(s.catalog.Size()), "")
	w.Header().Set(response.RequestIDHeader, uuid.NewString())
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMatchVector(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.options(w, r)
	if !ok {
		return
	}
	var payload struct {
		B64 string `json:"b64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid json body")
		return
	}
	vec, err := request.DecodeVector(payload.B64)
	if err != nil || len(vec) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid vector")
		return
	}
	exchangeFrom(r).BodySize = 4 * len(vec)
	writeJSON(w, http.StatusOK, s.result(opts, s.catalog.Top(s.catalog.Size()), uuid.NewString()))
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.options(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil || len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "keywords are required")
		return
	}
	exchangeFrom(r).BodySize = len(body)
	offers := s.catalog.Search(string(body), opts.Limit)
	writeJSON(w, http.StatusOK, s.result(opts, offers, uuid.NewString()))
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	sku, err := url.PathUnescape(chi.URLParam(r, "sku"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid sku")
		return
	}
	offers, ok := s.catalog.Similar(sku, option.DefaultLimit)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("unknown sku %q", sku))
		return
	}
	writeJSON(w, http.StatusOK, response.OfferResponse{
		RequestID:           uuid.NewString(),
		PredictedCategories: map[string]float32{},
		Offers:              offers,
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if !s.readImage(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, response.ObjectList{Regions: []response.DetectedObject{
		{Confidence: 0.92, Region: response.Region{Left: 0.1, Top: 0.15, Right: 0.6, Bottom: 0.8}},
		{Confidence: 0.41, Region: response.Region{Left: 0.55, Top: 0.2, Right: 0.95, Bottom: 0.5}},
	}})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var ev feedback.Request
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid json body")
		return
	}
	switch ev.Event {
	case feedback.KindClick, feedback.KindConversion, feedback.KindFeedback, feedback.KindRegion:
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("unknown event %q", ev.Event))
		return
	}
	if _, err := time.Parse(feedback.TimestampLayout, ev.Timestamp); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid timestamp")
		return
	}
	s.recorder.addEvent(ev)
	logpkg.FromContext(r.Context()).Debug("feedback received",
		zap.String("event", string(ev.Event)),
		zap.String("request_id", ev.RequestID),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request id")
		return
	}
	s.recorder.addNotFound(id)
	w.WriteHeader(http.StatusNoContent)
}

// options parses X-Options. It answers 400 itself on failure.
func (s *Server) options(w http.ResponseWriter, r *http.Request) (option.Set, bool) {
	opts, err := xoptions.Parse(r.Header.Get(xoptions.HeaderName))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return option.Set{}, false
	}
	return opts, true
}

// readImage drains a raw image body. It answers 400 itself when empty.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) bool {
	n, err := io.Copy(io.Discard, r.Body)
	if err != nil || n == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "image body is required")
		return false
	}
	exchangeFrom(r).BodySize = int(n)
	return true
}

// result trims offers to the requested limit and adds predicted categories
// when asked for.
func (s *Server) result(opts option.Set, offers []response.Offer, requestID string) response.OfferResponse {
	limit := opts.Limit
	if opts.Similarity.Enabled && opts.Similarity.HasLimit() {
		limit = min(limit, opts.Similarity.Limit)
	}
	offers = offers[:min(limit, len(offers))]

	categories := map[string]float32{}
	if opts.CategoryPrediction.Enabled {
		n := defaultCategoryPredicted
		if opts.CategoryPrediction.HasLimit() {
			n = opts.CategoryPrediction.Limit
		}
		categories = Categories(offers, n)
	}
	return response.OfferResponse{
		RequestID:           requestID,
		SessionID:           uuid.NewString(),
		PredictedCategories: categories,
		Offers:              offers,
	}
}

// parseFilters reads filters[i].filterType / filters[i].filterValues[j]
// fields back into filters, stopping at the first missing index.
func parseFilters(form map[string][]string) []filter.Filter {
	var out []filter.Filter
	for i := 0; ; i++ {
		typ, ok := form[fmt.Sprintf("filters[%d].filterType", i)]
		if !ok || len(typ) == 0 {
			return out
		}
		f := filter.Filter{Type: typ[0]}
		for j := 0; ; j++ {
			v, ok := form[fmt.Sprintf("filters[%d].filterValues[%d]", i, j)]
			if !ok || len(v) == 0 {
				break
			}
			f.Values = append(f.Values, v[0])
		}
		out = append(out, f)
	}
}

// applyFilters keeps offers matching every filter. An offer matches a
// filter when its brand, category or keywords hold one of the values.
func applyFilters(offers []response.Offer, filters []filter.Filter) []response.Offer {
	if len(filters) == 0 {
		return offers
	}
	var out []response.Offer
	for _, o := range offers {
		if matchesFilters(o, filters) {
			out = append(out, o)
		}
	}
	return out
}

func matchesFilters(o response.Offer, filters []filter.Filter) bool {
	attrs := append([]string{o.Brand}, o.Categories...)
	attrs = append(attrs, o.Keywords...)
	for _, f := range filters {
		hit := false
		for _, v := range f.Values {
			for _, a := range attrs {
				if strings.EqualFold(a, v) {
					hit = true
				}
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("options", r.Header.Get(xoptions.HeaderName)),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

