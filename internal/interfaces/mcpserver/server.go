// Package mcpserver exposes the scout chat and profile entry points as MCP tools.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/usecase"
)

const implementationName = "player-scout"

// Scout is the slice of usecase.ChatService the tools call.
type Scout interface {
	HandleMessage(ctx context.Context, userID, message string) usecase.Reply
	AggregateProfile(ctx context.Context, identities []player.Identity) (player.PlayerProfile, error)
	ResetSession(ctx context.Context, userID string) error
	SessionStatus(ctx context.Context, userID string) (usecase.SessionStatus, error)
}

type Server struct {
	scout  Scout
	logger *logging.Logger
	mcp    *mcp.Server
	tools  []ToolInfo
}

type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func New(scout Scout, version string, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}

	s := &Server{
		scout:  scout,
		logger: logger.Named("mcp"),
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    implementationName,
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying server, e.g. to connect an in-process transport.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Handler serves the streamable HTTP transport with plain JSON responses.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func (s *Server) Tools() []ToolInfo {
	out := make([]ToolInfo, len(s.tools))
	copy(out, s.tools)
	return out
}

func addTool[T any](s *Server, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	s.tools = append(s.tools, ToolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(s.mcp, tool, handler)
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	raw, err := sonic.ConfigDefault.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Errorf("encode result: %w", err)), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
