package tools

import (
	"context"
	"time"

	"github.com/coliovacruz/nmap-mcp-server/pkg/metrics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// WrapToolHandler wraps a tool handler to add execution logging and metrics.
// A result flagged IsError, or a returned error, counts as a failure.
func WrapToolHandler(
	m *metrics.Metrics,
	logger zerolog.Logger,
	toolName string,
	handler mcp.ToolHandler,
) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		// Get session ID from request
		sessionID := ""
		if req != nil && req.Session != nil {
			sessionID = req.Session.ID()
		}

		result, err := handler(ctx, req)

		duration := time.Since(startTime)
		success := err == nil && result != nil && !result.IsError

		m.ObserveCall(toolName, success, duration)

		event := logger.Info()
		if !success {
			event = logger.Warn()
		}
		if err != nil {
			event = event.Err(err)
		}
		event.
			Str("session_id", sessionID).
			Dur("duration", duration).
			Bool("success", success).
			Msgf("%s invocation finished", toolName)

		return result, err
	}
}
