// internal/server/server.go

// Package server exposes the store as MCP tools over the go-mcp SSE
// transport.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"github.com/ThinkInAIXYZ/go-mcp/transport"

	"macro-log/internal/engine"
	"macro-log/internal/logger"
	"macro-log/internal/models"
)

const Version = "1.0.0"

type Config struct {
	Host string
	Port int
}

type toolFunc func(req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// toolDef pairs a tool's name and input schema with its handler.
type toolDef struct {
	name        string
	description string
	params      interface{}
	handle      toolFunc
}

// ToolError tags a failed tool call with a stable kind for clients.
type ToolError struct {
	Kind string
	Err  error
}

func (e *ToolError) Error() string { return e.Kind + ": " + e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

const (
	KindInvalidParams    = "invalid_params"
	KindNotFound         = "not_found"
	KindEstimationFailed = "estimation_failed"
	KindInternal         = "internal"
)

type MacroLogServer struct {
	server *server.Server
	store  *engine.Store
	tools  []toolDef
	log    *logger.Logger
	now    func() time.Time

	// Base context for estimation calls; cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewMacroLogServer(cfg *Config, store *engine.Store, log *logger.Logger) (*MacroLogServer, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	macroServer := &MacroLogServer{
		store:  store,
		log:    log.Named("server"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	sse, err := transport.NewSSEServerTransport(addr)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create SSE transport: %w", err)
	}

	mcpServer, err := server.NewServer(sse,
		server.WithServerInfo(protocol.Implementation{
			Name:    "macro-log",
			Version: Version,
		}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	macroServer.server = mcpServer

	if err := macroServer.registerTools(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	macroServer.log.Info("server configured", "addr", addr, "tools", len(macroServer.tools))
	return macroServer, nil
}

// invoke wraps a handler with logging and error classification.
func (s *MacroLogServer) invoke(def toolDef) func(*protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return func(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
		start := time.Now()
		result, err := def.handle(req)
		if err != nil {
			kind := errorKind(err)
			s.log.Info("tool call rejected", "tool", def.name, "kind", kind, "error", err)
			return nil, &ToolError{Kind: kind, Err: err}
		}
		s.log.Debug("tool call", "tool", def.name, "elapsed", time.Since(start))
		return result, nil
	}
}

// errorKind maps the error taxonomy onto a client-facing kind.
func errorKind(err error) string {
	var valErr *models.ValidationError
	var estErr *models.EstimationFailure
	switch {
	case errors.As(err, &valErr), errors.Is(err, errInvalidParams):
		return KindInvalidParams
	case errors.Is(err, models.ErrLogNotFound), errors.Is(err, models.ErrDraftNotFound),
		errors.Is(err, models.ErrFavoriteNotFound), errors.Is(err, models.ErrNoSettings):
		return KindNotFound
	case errors.As(err, &estErr):
		return KindEstimationFailed
	}
	return KindInternal
}

// Start serves until Stop.
func (s *MacroLogServer) Start() error {
	s.log.Info("starting macro log server")
	if err := s.server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop cancels in-flight estimations, shuts the transport down and writes a
// final snapshot.
func (s *MacroLogServer) Stop(ctx context.Context) error {
	s.cancel()
	var errs []error
	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down MCP server: %w", err))
	}
	if err := s.store.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *MacroLogServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
