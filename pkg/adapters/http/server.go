package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/aretw0/formstate/pkg/sanitize"
	"github.com/aretw0/formstate/pkg/schema"
	"github.com/aretw0/formstate/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server hosts live forms over a JSON API.
// Each form gets a UUID; its snapshots live in the session manager's store.
type Server struct {
	loader    ports.SchemaLoader
	sessions  *session.Manager
	sanitizer *sanitize.Sanitizer
	hooks     domain.LifecycleHooks
	gatherer  prometheus.Gatherer
	logger    *slog.Logger

	Streams *StreamManager

	mu    sync.RWMutex
	forms map[string]*liveForm
}

type liveForm struct {
	id     string
	schema string
	form   *formstate.Form
}

// Option configures the Server.
type Option func(*Server)

// WithSessions sets the session manager used to persist forms
// (default: an in-memory store).
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithSanitizer replaces the default input sanitizer.
func WithSanitizer(san *sanitize.Sanitizer) Option {
	return func(s *Server) {
		s.sanitizer = san
	}
}

// WithLifecycleHooks attaches hooks to every form the server opens.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server resolving schemas through loader.
func NewServer(loader ports.SchemaLoader, opts ...Option) *Server {
	s := &Server{
		loader:  loader,
		logger:  logging.NewNop(),
		Streams: NewStreamManager(),
		forms:   make(map[string]*liveForm),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	if s.sanitizer == nil {
		s.sanitizer = sanitize.New()
	}
	return s
}

// NewHandler creates a server and returns its routes.
func NewHandler(loader ports.SchemaLoader, opts ...Option) http.Handler {
	return NewServer(loader, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/schemas", s.ListSchemas)
	r.Get("/schemas/{name}", s.GetSchema)

	r.Route("/forms", func(r chi.Router) {
		r.Post("/", s.CreateForm)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetForm)
			r.Delete("/", s.DeleteForm)
			r.Post("/change", s.ChangeField)
			r.Post("/validate", s.ValidateForm)
			r.Post("/reset", s.ResetForm)
			r.Post("/snapshot", s.SnapshotForm)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- Payloads --

// CreateFormRequest is the body of POST /forms.
type CreateFormRequest struct {
	Schema string `json:"schema"`
	// Key resumes (and later snapshots) the form under a caller-chosen key.
	// Defaults to the form id.
	Key string `json:"key,omitempty"`
}

// FormResponse describes a live form.
type FormResponse struct {
	ID         string           `json:"id"`
	Key        string           `json:"key"`
	Schema     string           `json:"schema"`
	State      domain.FormState `json:"state"`
	FormErrors []string         `json:"form_errors,omitempty"`
}

// ChangeRequest is the body of POST /forms/{id}/change.
// A string Value is raw input, coerced according to Type; any other JSON
// value (number, boolean, null) is stored literally.
type ChangeRequest struct {
	Name  string                  `json:"name"`
	Value any                     `json:"value"`
	Type  domain.PresentationType `json:"type,omitempty"`
}

// ChangeResponse carries the new state and what changed.
type ChangeResponse struct {
	State domain.FormState  `json:"state"`
	Diff  *domain.StateDiff `json:"diff,omitempty"`
}

// ValidateResponse is the body returned by POST /forms/{id}/validate.
type ValidateResponse struct {
	Valid      bool              `json:"valid"`
	Result     schema.Result     `json:"result,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	FormErrors []string          `json:"form_errors,omitempty"`
	State      domain.FormState  `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// -- Handlers --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "formstate-http",
		"version": strings.TrimSpace(formstate.Version),
	})
}

// ListSchemas handles GET /schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	names, err := s.loader.ListSchemas()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"schemas": names})
}

// GetSchema handles GET /schemas/{name}.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	sc, err := s.loader.GetSchema(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, sc)
}

// CreateForm handles POST /forms.
func (s *Server) CreateForm(w http.ResponseWriter, r *http.Request) {
	var body CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	sc, err := s.loader.GetSchema(body.Schema)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	id := uuid.NewString()
	key := body.Key
	if key == "" {
		key = id
	}

	form, err := s.sessions.Open(r.Context(), key, sc,
		formstate.WithLifecycleHooks(s.hooks),
		formstate.WithSanitizer(s.sanitizer),
		formstate.WithLogger(s.logger.With("form_id", id)),
	)
	if err != nil {
		s.logger.Error("CreateForm: open failed", "err", err, "schema", body.Schema)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	live := &liveForm{id: id, schema: body.Schema, form: form}
	s.mu.Lock()
	s.forms[id] = live
	s.mu.Unlock()

	s.logger.Info("form created", "form_id", id, "schema", body.Schema, "key", key)
	s.writeJSON(w, http.StatusCreated, live.response())
}

// GetForm handles GET /forms/{id}.
func (s *Server) GetForm(w http.ResponseWriter, r *http.Request) {
	live, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, live.response())
}

// ChangeField handles POST /forms/{id}/change.
func (s *Server) ChangeField(w http.ResponseWriter, r *http.Request) {
	live, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body ChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	ev := formstate.ChangeEvent{Name: body.Name, Type: body.Type}
	if raw, isText := body.Value.(string); isText {
		ev.Value = raw
	} else {
		literal := domain.ValueOf(body.Value)
		ev.Literal = &literal
	}
	diff, err := live.form.Change(r.Context(), ev)
	if err != nil {
		s.logger.Warn("ChangeField: rejected", "form_id", live.id, "field", body.Name, "err", err)
		s.writeError(w, statusFor(err), err)
		return
	}

	s.broadcast(live.id, diff)
	s.writeJSON(w, http.StatusOK, ChangeResponse{State: live.form.State(), Diff: diff})
}

// ValidateForm handles POST /forms/{id}/validate.
// The optional "fields" query parameter (comma separated) validates one step.
func (s *Server) ValidateForm(w http.ResponseWriter, r *http.Request) {
	live, ok := s.lookup(w, r)
	if !ok {
		return
	}

	sub := live.form.Schema()
	if fields := r.URL.Query().Get("fields"); fields != "" {
		names := splitList(fields)
		for _, name := range names {
			if _, ok := sub.Lookup(name); !ok {
				s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", domain.ErrUnknownField, name))
				return
			}
		}
		sub = sub.Pick(names...)
	}

	before := live.form.State()
	outcome := live.form.ValidateWith(r.Context(), sub)
	if outcome.Err != nil {
		s.writeError(w, http.StatusInternalServerError, outcome.Err)
		return
	}
	after := live.form.State()
	s.broadcast(live.id, domain.Diff(&before, after))

	s.writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:      outcome.Valid(),
		Result:     outcome.Result,
		Errors:     outcome.Errors,
		FormErrors: outcome.FormErrors,
		State:      after,
	})
}

// ResetForm handles POST /forms/{id}/reset.
func (s *Server) ResetForm(w http.ResponseWriter, r *http.Request) {
	live, ok := s.lookup(w, r)
	if !ok {
		return
	}
	before := live.form.State()
	live.form.Reset(r.Context())
	s.broadcast(live.id, domain.Diff(&before, live.form.State()))
	s.writeJSON(w, http.StatusOK, live.response())
}

// SnapshotForm handles POST /forms/{id}/snapshot.
func (s *Server) SnapshotForm(w http.ResponseWriter, r *http.Request) {
	live, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := live.form.Snapshot(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteForm handles DELETE /forms/{id}.
// With ?discard=true the stored snapshot is removed as well.
func (s *Server) DeleteForm(w http.ResponseWriter, r *http.Request) {
	live, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("discard") == "true" {
		if err := live.form.Discard(r.Context()); err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	s.mu.Lock()
	delete(s.forms, live.id)
	s.mu.Unlock()
	s.Streams.Close(live.id)

	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*liveForm, bool) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	live, ok := s.forms[id]
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("form %s not found", id))
		return nil, false
	}
	return live, true
}

func (s *Server) broadcast(id string, diff *domain.StateDiff) {
	if diff == nil {
		return
	}
	bytes, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("diff encode failed", "err", err)
		return
	}
	s.Streams.Broadcast(id, string(bytes))
}

func (l *liveForm) response() FormResponse {
	return FormResponse{
		ID:         l.id,
		Key:        l.form.Key(),
		Schema:     l.schema,
		State:      l.form.State(),
		FormErrors: l.form.FormErrors(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrSchemaNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, sanitize.ErrInputTooLarge),
		errors.Is(err, sanitize.ErrInvalidUTF8):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
