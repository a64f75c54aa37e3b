// Package httpapi implements the loopback HTTP surface of §6: the table of
// routes an operator client (hivectl, or any other front end) uses to
// drive the Session Controller. It owns request validation, JSON framing,
// and the mapping from internal/session's typed errors to HTTP status
// codes — the Session Controller itself knows nothing about HTTP.
//
// Grounded on stringwork's internal/dashboard.Handler: a struct wrapping
// the domain service, a RegisterRoutes(mux) entrypoint, and per-handler
// CORS/OPTIONS preflight handling instead of a shared middleware chain.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/rdfitted/hive-manager/internal/config"
	"github.com/rdfitted/hive-manager/internal/inject"
	"github.com/rdfitted/hive-manager/internal/security"
	"github.com/rdfitted/hive-manager/internal/session"
	"github.com/rdfitted/hive-manager/internal/store"
)

// Handler serves hive-manager's HTTP API on top of a Session Controller and
// Injection Manager, enforcing the validation rules of §6.
type Handler struct {
	sessions *session.Controller
	inject   *inject.Manager
	store    *store.Store
	cfg      *config.Config
	cli      *security.CLIValidator
	injectRL *security.RateLimiter
	logger   *log.Logger
}

// injectRateLimit caps how often a single caller may hit the inject
// endpoints — a misbehaving or looping agent hammering operator-inject
// shouldn't be able to starve the PTY manager's write path.
const (
	injectRateLimit    = 20
	injectRateInterval = 10 * time.Second
)

// NewHandler builds a Handler. cfg's CLIRegistry keys become the static
// allowlist the CLIValidator enforces.
func NewHandler(sessions *session.Controller, inj *inject.Manager, st *store.Store, cfg *config.Config, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	names := make([]string, 0, len(cfg.CLIRegistry))
	for name := range cfg.CLIRegistry {
		names = append(names, name)
	}
	return &Handler{
		sessions: sessions,
		inject:   inj,
		store:    st,
		cfg:      cfg,
		cli:      security.NewCLIValidator(names),
		injectRL: security.NewRateLimiter(injectRateLimit, injectRateInterval),
		logger:   logger,
	}
}

// RegisterRoutes adds every §6 route to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("GET /api/sessions", h.handleListSessions)
	mux.HandleFunc("GET /api/sessions/active", h.handleActiveSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.handleGetSession)
	mux.HandleFunc("POST /api/sessions/hive", h.handleLaunchHive)
	mux.HandleFunc("POST /api/sessions/swarm", h.handleLaunchSwarm)
	mux.HandleFunc("POST /api/sessions/fusion", h.handleLaunchFusion)
	mux.HandleFunc("POST /api/sessions/solo", h.handleLaunchSolo)
	mux.HandleFunc("POST /api/sessions/{id}/stop", h.handleStopSession)
	mux.HandleFunc("POST /api/sessions/{id}/plan-ready", h.handlePlanReady)
	mux.HandleFunc("POST /api/sessions/{id}/continue", h.handleContinue)

	mux.HandleFunc("GET /api/sessions/{id}/workers", h.handleListWorkers)
	mux.HandleFunc("POST /api/sessions/{id}/workers", h.handleAddWorker)
	mux.HandleFunc("GET /api/sessions/{id}/planners", h.handleListPlanners)
	mux.HandleFunc("POST /api/sessions/{id}/planners", h.handleAddPlanner)

	mux.Handle("POST /api/sessions/{id}/inject", h.rateLimited(h.handleInject))
	mux.Handle("POST /api/sessions/{id}/inject/queen", h.rateLimited(h.handleQueenInject))

	mux.HandleFunc("POST /api/sessions/{id}/heartbeat", h.handleHeartbeat)

	mux.HandleFunc("GET /api/sessions/{id}/log", h.handleLog)

	mux.HandleFunc("POST /api/learnings", h.handleLearnings)

	// Bare prefixes catch OPTIONS preflights and anything the method-scoped
	// patterns above don't already claim (e.g. a wrong verb on a known path).
	mux.HandleFunc("/api/sessions/", h.handleOptionsOnly)
	mux.HandleFunc("/api/learnings", h.handleOptionsOnly)
}

// rateLimited wraps fn with the per-IP inject rate limit. Loopback-only
// traffic means "per IP" is usually just "per operator process", but it
// still bounds a stuck script that retries an injection in a tight loop.
func (h *Handler) rateLimited(fn http.HandlerFunc) http.Handler {
	return h.injectRL.Middleware(security.IPKeyFunc)(fn)
}

func (h *Handler) handleOptionsOnly(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeCORSPreflight(w, "GET, POST, OPTIONS")
		return
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// --- shared response plumbing -------------------------------------------

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func writeCORSPreflight(w http.ResponseWriter, methods string) {
	writeCORSHeaders(w)
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeCORSHeaders(w)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeSessionError maps a session.Error (or inject.Error) to the HTTP
// status code named by §7's taxonomy: NotFound->404, Invalid->400,
// NotAuthorized->403, PtyError/StorageError/TerminationError->500.
func writeSessionError(w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *session.Error:
		writeError(w, statusForSessionClass(e.Class), e.Error())
	case *inject.Error:
		writeError(w, statusForInjectClass(e.Class), e.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func statusForSessionClass(c session.ErrorClass) int {
	switch c {
	case session.ClassNotFound:
		return http.StatusNotFound
	case session.ClassInvalid:
		return http.StatusBadRequest
	case session.ClassNotAuthorized:
		return http.StatusForbidden
	default: // ClassPtyError, ClassStorageError, ClassTerminationError
		return http.StatusInternalServerError
	}
}

func statusForInjectClass(c inject.ErrorClass) int {
	switch c {
	case inject.ClassNotAuthorized:
		return http.StatusForbidden
	default: // ClassPtyError, ClassStorageError
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
