// Package server exposes the registered connectors over MCP, plus a small
// HTTP API for health, metrics and connector discovery.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/gumcp/gumcp-go/internal/config"
	"github.com/gumcp/gumcp-go/internal/connector"
)

const serverVersion = "1.0.0"

// MCPServer advertises connector tools and resources over the MCP protocol
// and routes calls through the dispatcher.
type MCPServer struct {
	cfg        *config.Config
	registry   *connector.Registry
	dispatcher *connector.Dispatcher
	tokens     connector.TokenSource
	server     *mcpserver.MCPServer
	logger     *zap.Logger
}

// NewMCPServer builds the MCP surface. When cfg.Connector names a provider,
// only that provider's tools are advertised under their plain names; when
// empty, every registered provider is advertised with provider-prefixed
// tool names.
func NewMCPServer(
	cfg *config.Config,
	registry *connector.Registry,
	dispatcher *connector.Dispatcher,
	tokens connector.TokenSource,
	logger *zap.Logger,
) (*MCPServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	inner := mcpserver.NewMCPServer(
		"gumcp",
		serverVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithRecovery(),
	)

	s := &MCPServer{
		cfg:        cfg,
		registry:   registry,
		dispatcher: dispatcher,
		tokens:     tokens,
		server:     inner,
		logger:     logger.Named("mcp"),
	}

	if cfg.Connector != "" {
		c, ok := registry.Get(cfg.Connector)
		if !ok {
			return nil, fmt.Errorf("%w: %s", connector.ErrUnknownProvider, cfg.Connector)
		}
		s.registerConnector(c, false)
	} else {
		for _, name := range registry.Names() {
			c, _ := registry.Get(name)
			s.registerConnector(c, true)
		}
	}

	return s, nil
}

// MCP returns the underlying protocol server, used by transports and tests.
func (s *MCPServer) MCP() *mcpserver.MCPServer {
	return s.server
}

func (s *MCPServer) registerConnector(c connector.Connector, prefixed bool) {
	provider := c.Descriptor().Name

	for _, tool := range c.Tools() {
		name := tool.Name
		if prefixed {
			name = provider + "_" + tool.Name
		}

		opts := []mcp.ToolOption{mcp.WithDescription(tool.Description)}
		for _, p := range tool.Parameters {
			opts = append(opts, paramOption(p))
		}

		s.server.AddTool(mcp.NewTool(name, opts...), s.toolHandler(provider, tool.Name))
	}

	reader, readable := c.(connector.ResourceReader)
	for _, res := range c.Resources() {
		if !readable {
			s.logger.Warn("connector declares resources but implements no reader",
				zap.String("provider", provider))
			break
		}
		s.server.AddResource(
			mcp.NewResource(
				res.URI,
				res.Name,
				mcp.WithResourceDescription(res.Description),
				mcp.WithMIMEType(res.MIMEType),
			),
			s.resourceHandler(provider, reader),
		)
	}

	s.logger.Debug("registered connector",
		zap.String("provider", provider),
		zap.Int("tools", len(c.Tools())),
		zap.Int("resources", len(c.Resources())))
}

func paramOption(p connector.Param) mcp.ToolOption {
	var propOpts []mcp.PropertyOption
	if p.Description != "" {
		propOpts = append(propOpts, mcp.Description(p.Description))
	}
	if p.Required {
		propOpts = append(propOpts, mcp.Required())
	}

	switch p.Type {
	case connector.ParamNumber:
		return mcp.WithNumber(p.Name, propOpts...)
	case connector.ParamBoolean:
		return mcp.WithBoolean(p.Name, propOpts...)
	default:
		return mcp.WithString(p.Name, propOpts...)
	}
}

// toolHandler adapts one connector tool to the MCP call surface. Dispatch
// errors come back as tool results, not protocol errors, so agents can read
// and react to them.
func (s *MCPServer) toolHandler(provider, tool string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.cfg.ToolTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.ToolTimeout)
			defer cancel()
		}

		result, err := s.dispatcher.Invoke(ctx, provider, tool, s.cfg.UserID, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func (s *MCPServer) resourceHandler(provider string, reader connector.ResourceReader) mcpserver.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		token, err := s.tokens.AccessToken(ctx, provider, s.cfg.UserID)
		if err != nil {
			return nil, err
		}

		data, err := reader.ReadResource(ctx, &connector.Invocation{
			UserID: s.cfg.UserID,
			Token:  token,
		}, request.Params.URI)
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     data,
			},
		}, nil
	}
}
