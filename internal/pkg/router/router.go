package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/skillbridge/internal/pkg/config"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/jwt"
	"github.com/shandysiswandi/skillbridge/internal/pkg/uid"
	"github.com/shandysiswandi/skillbridge/internal/pkg/validator"
)

const defaultBodyLimit int64 = 64 << 10

type errorResponse struct {
	Message string            `json:"message" example:"example string message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message" example:"example string message"`
	Data    any            `json:"data" swaggertype:"object"`
	Meta    map[string]any `json:"meta,omitempty" swaggertype:"object"`
}

// Handler is the application-style handler used by this router.
//
// It returns a response payload (that will be JSON encoded) or an error.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	// Config provides runtime configuration values.
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// JWT validates and parses authentication tokens.
	JWT jwt.JWT
	// Instrument provides tracing and metrics helpers.
	Instrument instrument.Instrumentation
}

// RouteOption customizes a single endpoint.
type RouteOption func(*route)

type route struct {
	public    bool
	bodyLimit int64
	mws       []Middleware
}

// Public lets the endpoint through without a bearer token.
func Public() RouteOption {
	return func(r *route) { r.public = true }
}

// BodyLimit caps the JSON body DecodeBody accepts for the endpoint.
func BodyLimit(n int64) RouteOption {
	return func(r *route) {
		if n > 0 {
			r.bodyLimit = n
		}
	}
}

// Use appends endpoint-specific middleware after authentication.
func Use(mws ...Middleware) RouteOption {
	return func(r *route) { r.mws = append(r.mws, mws...) }
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
// Every endpoint requires a valid bearer token unless registered with Public.
type Router struct {
	hr        *httprouter.Router
	mws       []Middleware
	auth      Middleware
	bodyLimit int64
}

// NewRouter builds the default application router with standard middleware.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	name := "SkillBridge"
	bodyLimit := defaultBodyLimit
	if cfg.Config != nil {
		if n := cfg.Config.GetString("app.name"); n != "" {
			name = n
		}
		if n := cfg.Config.GetInt64("app.server.http.max_body_bytes"); n > 0 {
			bodyLimit = n
		}
	}

	hr.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, map[string]string{"message": "Welcome to " + name + " API"}, http.StatusOK)
	})
	hr.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, map[string]string{"message": "ok"}, http.StatusOK)
	})

	return &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP(trustedProxies(cfg.Config)),
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
			middlewareMaintenance(cfg.Config),
		},
		auth:      middlewareAuthentication(cfg.JWT),
		bodyLimit: bodyLimit,
	}
}

// GET registers a GET endpoint using the application Handler signature.
func (r *Router) GET(path string, h Handler, opts ...RouteOption) {
	r.endpoint(http.MethodGet, path, h, opts...)
}

// POST registers a POST endpoint using the application Handler signature.
func (r *Router) POST(path string, h Handler, opts ...RouteOption) {
	r.endpoint(http.MethodPost, path, h, opts...)
}

func (r *Router) endpoint(method, path string, h Handler, opts ...RouteOption) {
	rt := route{bodyLimit: r.bodyLimit}
	for _, opt := range opts {
		opt(&rt)
	}

	mws := append([]Middleware{}, r.mws...)
	if !rt.public {
		mws = append(mws, r.auth)
	}
	mws = append(mws, rt.mws...)

	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, re *http.Request) {
		resp, err := h(&Request{Request: re, bodyLimit: rt.bodyLimit})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			writeError(re.Context(), w, err)
			return
		}
		writeSuccess(w, resp)
	}), mws...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

// writeError renders err as the error envelope. Errors that are not a
// *goerror.Error never leak their text.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unhandled endpoint error", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg()}
	fields := gerr.Fields()
	if wait := fields[goerror.FieldRetryAfter]; wait != "" {
		w.Header().Set("Retry-After", wait)
	}

	var verr validator.V10ValidationError
	if errors.As(err, &verr) || len(fields) > 0 {
		resp.Error = make(map[string]string, len(verr)+len(fields))
		for k, v := range verr.Values() {
			resp.Error[k] = v
		}
		for k, v := range fields {
			resp.Error[k] = v
		}
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func writeSuccess(w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}
	if code == http.StatusNoContent || resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out := successResponse{Message: "request has been successfully", Data: resp}
	if m, ok := resp.(interface{ Message() string }); ok {
		out.Message = m.Message()
	}
	if m, ok := resp.(interface{ Meta() map[string]any }); ok {
		out.Meta = m.Meta()
	}

	writeJSON(w, out, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
