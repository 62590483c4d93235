package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/aretw0/formstate/pkg/sanitize"
	"github.com/aretw0/formstate/pkg/schema"
	"github.com/aretw0/formstate/pkg/session"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FormResponse is the structured result of every form tool.
type FormResponse struct {
	Key        string            `json:"key" jsonschema_description:"Snapshot key of the form"`
	Schema     string            `json:"schema" jsonschema_description:"Schema the form was built from"`
	State      domain.FormState  `json:"state" jsonschema_description:"Ordered field states"`
	Diff       *domain.StateDiff `json:"diff,omitempty" jsonschema_description:"Fields changed by this call"`
	Valid      *bool             `json:"valid,omitempty" jsonschema_description:"Set by validate_form"`
	Result     schema.Result     `json:"result,omitempty" jsonschema_description:"Typed values when the form is valid"`
	FormErrors []string          `json:"form_errors,omitempty" jsonschema_description:"Messages not tied to a single field"`
}

// FormArgs addresses a stored form.
type FormArgs struct {
	Schema string `json:"schema"`
	Key    string `json:"key"`
}

// ChangeArgs are the arguments of change_field.
type ChangeArgs struct {
	FormArgs
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// ValidateArgs are the arguments of validate_form.
type ValidateArgs struct {
	FormArgs
	Fields string `json:"fields,omitempty"`
}

// Server exposes stored forms as MCP tools.
// Tools are stateless: every call opens the form under its key, applies the
// change and snapshots it again, so an agent can fill a form across sessions.
type Server struct {
	loader    ports.SchemaLoader
	sessions  *session.Manager
	sanitizer *sanitize.Sanitizer
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions sets the session manager holding the snapshots.
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

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(loader ports.SchemaLoader, opts ...Option) *Server {
	s := &Server{
		loader: loader,
		logger: logging.NewNop(),
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
	s.mcpServer = server.NewMCPServer("formstate-mcp", strings.TrimSpace(formstate.Version))
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func formParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("schema", mcp.Required(), mcp.Description("Schema name, see list_schemas")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Snapshot key identifying the form")),
	}
}

func (s *Server) registerTools() {
	// TOOL: list_schemas
	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the names of the available form schemas."),
	), s.handleListSchemas)

	// TOOL: describe_schema
	s.mcpServer.AddTool(mcp.NewTool("describe_schema",
		mcp.WithDescription("Get the field definitions (types, constraints, defaults) of a schema."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Schema name")),
	), s.handleDescribeSchema)

	// TOOL: get_form
	s.mcpServer.AddTool(mcp.NewTool("get_form", append([]mcp.ToolOption{
		mcp.WithDescription("Open a form, resuming its stored snapshot, and return its state."),
		mcp.WithOutputSchema[FormResponse](),
	}, formParams()...)...), mcp.NewStructuredToolHandler(s.handleGetForm))

	// TOOL: change_field
	s.mcpServer.AddTool(mcp.NewTool("change_field", append([]mcp.ToolOption{
		mcp.WithDescription("Set one field from raw input text and save the form."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Field name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Raw input text")),
		mcp.WithString("type", mcp.Description("Input type: 'number' reads an integer, 'checkbox' reads a boolean")),
		mcp.WithOutputSchema[FormResponse](),
	}, formParams()...)...), mcp.NewStructuredToolHandler(s.handleChangeField))

	// TOOL: validate_form
	s.mcpServer.AddTool(mcp.NewTool("validate_form", append([]mcp.ToolOption{
		mcp.WithDescription("Validate the form (or a comma separated list of fields) and save the errors."),
		mcp.WithString("fields", mcp.Description("Comma separated field names to validate as one step")),
		mcp.WithOutputSchema[FormResponse](),
	}, formParams()...)...), mcp.NewStructuredToolHandler(s.handleValidateForm))

	// TOOL: reset_form
	s.mcpServer.AddTool(mcp.NewTool("reset_form", append([]mcp.ToolOption{
		mcp.WithDescription("Restore the initial state of the form and save it."),
		mcp.WithOutputSchema[FormResponse](),
	}, formParams()...)...), mcp.NewStructuredToolHandler(s.handleResetForm))

	// TOOL: discard_form
	s.mcpServer.AddTool(mcp.NewTool("discard_form",
		mcp.WithDescription("Delete the stored snapshot of a form."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Snapshot key identifying the form")),
	), s.handleDiscardForm)
}

func (s *Server) handleListSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.loader.ListSchemas()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleDescribeSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("schema")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sc, err := s.loader.GetSchema(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jsonBytes, err := json.Marshal(sc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleDiscardForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Delete(ctx, key); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("discard failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("snapshot %s discarded", key)), nil
}

func (s *Server) handleGetForm(ctx context.Context, request mcp.CallToolRequest, args FormArgs) (FormResponse, error) {
	form, err := s.open(ctx, args)
	if err != nil {
		return FormResponse{}, err
	}
	return s.response(args, form), nil
}

func (s *Server) handleChangeField(ctx context.Context, request mcp.CallToolRequest, args ChangeArgs) (FormResponse, error) {
	form, err := s.open(ctx, args.FormArgs)
	if err != nil {
		return FormResponse{}, err
	}

	diff, err := form.Change(ctx, formstate.ChangeEvent{
		Name:  args.Name,
		Value: args.Value,
		Type:  domain.PresentationType(args.Type),
	})
	if err != nil {
		s.logger.Warn("MCP change_field: rejected", "key", args.Key, "field", args.Name, "err", err)
		return FormResponse{}, fmt.Errorf("change rejected: %w", err)
	}
	if err := form.Snapshot(ctx); err != nil {
		return FormResponse{}, err
	}

	resp := s.response(args.FormArgs, form)
	resp.Diff = diff
	return resp, nil
}

func (s *Server) handleValidateForm(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (FormResponse, error) {
	form, err := s.open(ctx, args.FormArgs)
	if err != nil {
		return FormResponse{}, err
	}

	sub := form.Schema()
	if args.Fields != "" {
		var names []string
		for _, name := range strings.Split(args.Fields, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := sub.Lookup(name); !ok {
				return FormResponse{}, fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
			}
			names = append(names, name)
		}
		sub = sub.Pick(names...)
	}

	outcome := form.ValidateWith(ctx, sub)
	if outcome.Err != nil {
		return FormResponse{}, fmt.Errorf("validation failed: %w", outcome.Err)
	}
	if err := form.Snapshot(ctx); err != nil {
		return FormResponse{}, err
	}

	valid := outcome.Valid()
	resp := s.response(args.FormArgs, form)
	resp.Valid = &valid
	resp.Result = outcome.Result
	resp.FormErrors = outcome.FormErrors
	return resp, nil
}

func (s *Server) handleResetForm(ctx context.Context, request mcp.CallToolRequest, args FormArgs) (FormResponse, error) {
	form, err := s.open(ctx, args)
	if err != nil {
		return FormResponse{}, err
	}
	form.Reset(ctx)
	if err := form.Snapshot(ctx); err != nil {
		return FormResponse{}, err
	}
	return s.response(args, form), nil
}

func (s *Server) open(ctx context.Context, args FormArgs) (*formstate.Form, error) {
	if args.Key == "" {
		return nil, domain.ErrMissingKey
	}
	sc, err := s.loader.GetSchema(args.Schema)
	if err != nil {
		return nil, err
	}
	return s.sessions.Open(ctx, args.Key, sc,
		formstate.WithLifecycleHooks(s.hooks),
		formstate.WithSanitizer(s.sanitizer),
		formstate.WithLogger(s.logger.With("form", args.Key)),
	)
}

func (s *Server) response(args FormArgs, form *formstate.Form) FormResponse {
	return FormResponse{
		Key:        args.Key,
		Schema:     args.Schema,
		State:      form.State(),
		FormErrors: form.FormErrors(),
	}
}

func (s *Server) registerResources() {
	// EXPOSE: formstate://schemas
	s.mcpServer.AddResource(mcp.NewResource("formstate://schemas", "Form Schema Definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.loader.ListSchemas()
		if err != nil {
			return nil, fmt.Errorf("failed to list schemas: %w", err)
		}
		defs := make([]schema.Definition, 0, len(names))
		for _, name := range names {
			sc, err := s.loader.GetSchema(name)
			if err != nil {
				return nil, err
			}
			defs = append(defs, sc.Definition())
		}
		jsonBytes, _ := json.Marshal(defs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "formstate://schemas",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
