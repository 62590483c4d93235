package cli

import (
	"context"

	mcpadapter "github.com/aretw0/formstate/pkg/adapters/mcp"
	"github.com/aretw0/formstate/pkg/observability"
	"github.com/aretw0/formstate/pkg/sanitize"
)

// MCPOptions configures the MCP host.
type MCPOptions struct {
	SchemaDir string
	// SSEPort serves over SSE when non-zero; otherwise stdin/stdout is used.
	SSEPort   int
	StripHTML bool
}

// NewMCPServer assembles the MCP host over the schemas of a directory and the
// configured store. The returned func releases the store.
func NewMCPServer(ctx context.Context, opts Options, mo MCPOptions, stdio IO) (*mcpadapter.Server, func() error, error) {
	logger := createLogger(opts, stdio.Err)

	loader, err := LoadDir(ctx, mo.SchemaDir)
	if err != nil {
		return nil, nil, err
	}
	sessions, closeFn, err := OpenSessions(ctx, opts, logger)
	if err != nil {
		return nil, nil, err
	}

	var sanitizerOpts []sanitize.Option
	if mo.StripHTML {
		sanitizerOpts = append(sanitizerOpts, sanitize.WithHTMLStripping())
	}

	srv := mcpadapter.NewServer(loader,
		mcpadapter.WithSessions(sessions),
		mcpadapter.WithSanitizer(sanitize.New(sanitizerOpts...)),
		mcpadapter.WithLifecycleHooks(observability.LoggingHooks(logger)),
		mcpadapter.WithLogger(logger),
	)
	return srv, closeFn, nil
}

// ServeMCP runs the MCP host. Stdio mode returns when stdin closes; SSE mode
// when ctx is cancelled.
func ServeMCP(ctx context.Context, opts Options, mo MCPOptions, stdio IO) error {
	srv, closeFn, err := NewMCPServer(ctx, opts, mo, stdio)
	if err != nil {
		return err
	}
	defer closeFn()

	if mo.SSEPort != 0 {
		printSystemMessage(stdio.Err, "Starting MCP server (SSE) on port %d", mo.SSEPort)
		return srv.ServeSSE(ctx, mo.SSEPort)
	}
	return srv.ServeStdio()
}
