package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ws-flare/ws-flare-graphql/internal/service/auth"
	"github.com/ws-flare/ws-flare-graphql/internal/ws"
)

// HealthCheck probes one dependency for /healthz.
type HealthCheck func(context.Context) error

// Router wires HTTP endpoints to the GraphQL schema and the job feed.
type Router struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	auth      auth.Service
	schema    *graphql.Schema
	hub       *ws.Hub
	upgrader  websocket.Upgrader
	limiter   RateLimiter
	rateLimit int
	checks    map[string]HealthCheck
	started   time.Time
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitWebsocket = 30
	healthCheckTimeout = 2 * time.Second
	maxQueryBytes      = 1 << 20
)

// NewRouter assembles routes with dependencies. rateLimit caps GraphQL
// requests per caller per minute; zero disables the cap.
func NewRouter(logger *slog.Logger, authSvc auth.Service, schema *graphql.Schema, hub *ws.Hub, limiter RateLimiter, rateLimit int, checks map[string]HealthCheck) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
		auth:   authSvc,
		schema: schema,
		hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:   limiter,
		rateLimit: rateLimit,
		checks:    checks,
		started:   time.Now(),
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	registerMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/", r.audit("/", r.handleUptime))
	r.mux.HandleFunc("/healthz", r.audit("/healthz", r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.HandleFunc("/graphql", r.audit("/graphql", r.optionalAuth(r.withRateLimit("/graphql", r.rateLimit, rateWindowDefault, r.rateLimitKeyCaller, r.handleGraphQL))))
	r.mux.HandleFunc("/ws/jobs", r.audit("/ws/jobs", r.withRateLimit("/ws/jobs", rateLimitWebsocket, rateWindowRealtime, rateLimitKeyIP, r.handleJobsWS)))
}

func (r *Router) handleUptime(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime": time.Since(r.started).Seconds(),
	})
}

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (r *Router) handleGraphQL(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload graphQLRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxQueryBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(payload.Query) == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}
	resp := r.schema.Exec(req.Context(), payload.Query, payload.OperationName, payload.Variables)
	recordOperation(payload.OperationName, len(resp.Errors))
	if len(resp.Errors) > 0 {
		r.logger.Debug("graphql errors", "operation", payload.OperationName, "errors", len(resp.Errors))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (r *Router) handleJobsWS(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	taskID := strings.TrimSpace(req.URL.Query().Get("task_id"))
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "task_id query parameter required")
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.hub.Register(taskID, client)
	feedSubscribers.Inc()
	go func() {
		defer func() {
			r.hub.Unregister(taskID, client)
			feedSubscribers.Dec()
		}()
		client.Drain()
	}()
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any, len(r.checks))
	status := "ok"
	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		err := r.checks[name](ctx)
		cancel()
		if err != nil {
			status = "degraded"
			components[name] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
			continue
		}
		components[name] = map[string]any{"status": "up"}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		reqID := strings.TrimSpace(req.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		recordRequestMetrics(req.Method, route, status, duration)
		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
			"request_id", reqID,
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if id, ok := auth.FromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", id.UserID)
			if id.TaskID != "" {
				actor = "ci"
				fields = append(fields, "task_id", id.TaskID)
			}
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		// The upgrade writes its own 101; record it for the audit log.
		sr.status = http.StatusSwitchingProtocols
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
