// Package mcp exposes a navigator as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StateURI is the resource that always holds the current navigator state.
const StateURI = "waypoint://state"

// Navigator defines what the tools drive.
type Navigator interface {
	Snapshot() waypoint.State
	Push(ctx context.Context, target string) error
	Pop(ctx context.Context) (bool, error)
	Replace(ctx context.Context, target string) error
	NewRoot(ctx context.Context, target string) error
	Remove(ctx context.Context, id domain.ID) (bool, error)
	Back(ctx context.Context) (bool, error)
	SetProgress(ctx context.Context, p float64)
	Save(ctx context.Context) error
}

// TargetArgs are the arguments of push, replace and new_root.
type TargetArgs struct {
	Target string `json:"target"`
}

// RemoveArgs are the arguments of remove.
type RemoveArgs struct {
	ID uint64 `json:"id"`
}

// ProgressArgs are the arguments of set_progress.
type ProgressArgs struct {
	Progress float64 `json:"progress"`
}

// OperationResponse reports whether an operation changed anything and the state after it.
type OperationResponse struct {
	Applied bool           `json:"applied" jsonschema_description:"False when the operation did not apply to the current stack"`
	State   waypoint.State `json:"state" jsonschema_description:"The navigator state after the operation"`
}

// Server wraps a Navigator and exposes it as an MCP Server.
type Server struct {
	nav       Navigator
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(nav Navigator, opts ...Option) *Server {
	s := &Server{
		nav:       nav,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("waypoint-mcp", strings.TrimSpace(waypoint.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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

func (s *Server) registerTools() {
	targetTool := func(name, description string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription(description),
			mcp.WithString("target", mcp.Required(), mcp.Description("Destination to show")),
			mcp.WithOutputSchema[OperationResponse](),
		)
	}

	s.mcpServer.AddTool(targetTool("push", "Stash the active destination and show a new one."),
		mcp.NewStructuredToolHandler(s.handlePush))
	s.mcpServer.AddTool(targetTool("replace", "Replace the active destination, keeping the back stack."),
		mcp.NewStructuredToolHandler(s.handleReplace))
	s.mcpServer.AddTool(targetTool("new_root", "Clear the back stack and show a new destination."),
		mcp.NewStructuredToolHandler(s.handleNewRoot))

	s.mcpServer.AddTool(mcp.NewTool("pop",
		mcp.WithDescription("Return to the most recently stashed destination."),
		mcp.WithOutputSchema[OperationResponse](),
	), mcp.NewStructuredToolHandler(s.handlePop))

	s.mcpServer.AddTool(mcp.NewTool("back",
		mcp.WithDescription("Handle a back press. Applied is false when the press would leave the stack."),
		mcp.WithOutputSchema[OperationResponse](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("remove",
		mcp.WithDescription("Remove the element with the given id from the stack."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Element id")),
		mcp.WithOutputSchema[OperationResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemove))

	s.mcpServer.AddTool(mcp.NewTool("set_progress",
		mcp.WithDescription("Move the transition cursor. Whole numbers complete segments."),
		mcp.WithNumber("progress", mcp.Required(), mcp.Description("Timeline progress, clamped to the queued segments")),
		mcp.WithOutputSchema[OperationResponse](),
	), mcp.NewStructuredToolHandler(s.handleProgress))

	s.mcpServer.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Persist the navigator under its session."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := s.nav.Save(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
		}
		return mcp.NewToolResultText("saved"), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the current back stack and transition."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.nav.Snapshot())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handlePush(ctx context.Context, request mcp.CallToolRequest, args TargetArgs) (OperationResponse, error) {
	return s.withTarget(ctx, "push", args, s.nav.Push)
}

func (s *Server) handleReplace(ctx context.Context, request mcp.CallToolRequest, args TargetArgs) (OperationResponse, error) {
	return s.withTarget(ctx, "replace", args, s.nav.Replace)
}

func (s *Server) handleNewRoot(ctx context.Context, request mcp.CallToolRequest, args TargetArgs) (OperationResponse, error) {
	return s.withTarget(ctx, "new_root", args, s.nav.NewRoot)
}

func (s *Server) handlePop(ctx context.Context, request mcp.CallToolRequest, _ struct{}) (OperationResponse, error) {
	applied, err := s.nav.Pop(ctx)
	return s.respond("pop", applied, err)
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest, _ struct{}) (OperationResponse, error) {
	applied, err := s.nav.Back(ctx)
	return s.respond("back", applied, err)
}

func (s *Server) handleRemove(ctx context.Context, request mcp.CallToolRequest, args RemoveArgs) (OperationResponse, error) {
	applied, err := s.nav.Remove(ctx, domain.ID(args.ID))
	return s.respond("remove", applied, err)
}

func (s *Server) handleProgress(ctx context.Context, request mcp.CallToolRequest, args ProgressArgs) (OperationResponse, error) {
	s.nav.SetProgress(ctx, args.Progress)
	return s.respond("set_progress", true, nil)
}

func (s *Server) withTarget(ctx context.Context, name string, args TargetArgs, fn func(context.Context, string) error) (OperationResponse, error) {
	if strings.TrimSpace(args.Target) == "" {
		return OperationResponse{}, errors.New("target is required")
	}
	err := fn(ctx, args.Target)
	return s.respond(name, err == nil, err)
}

func (s *Server) respond(name string, applied bool, err error) (OperationResponse, error) {
	if err != nil {
		s.logger.Warn("MCP tool failed", "tool", name, "err", err)
		return OperationResponse{}, fmt.Errorf("%s failed: %w", name, err)
	}
	return OperationResponse{Applied: applied, State: s.nav.Snapshot()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StateURI, "Current Navigator State",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.nav.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode state: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      StateURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
