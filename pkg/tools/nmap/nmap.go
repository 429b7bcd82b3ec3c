package nmap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/coliovacruz/nmap-mcp-server/pkg/catalog"
	"github.com/coliovacruz/nmap-mcp-server/pkg/command"
	"github.com/coliovacruz/nmap-mcp-server/pkg/config"
	"github.com/coliovacruz/nmap-mcp-server/pkg/format"
	"github.com/coliovacruz/nmap-mcp-server/pkg/metrics"
	"github.com/coliovacruz/nmap-mcp-server/pkg/runner"
	"github.com/coliovacruz/nmap-mcp-server/pkg/server"
	"github.com/coliovacruz/nmap-mcp-server/pkg/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

const methodCallTool = "tools/call"

// Tool exposes the catalog tools backed by a single nmap executable.
type Tool struct {
	logger            zerolog.Logger
	builder           *command.Builder
	runner            *runner.Runner
	requireExecutable bool
}

// ListTools returns the catalog in advertised order.
func (t *Tool) ListTools() []catalog.ToolDefinition {
	return catalog.Definitions()
}

// Call runs one invocation end to end. Every failure, including a panic
// further down, is rendered as text; ok is false for anything but a scan
// that exited 0.
func (t *Tool) Call(ctx context.Context, name string, args map[string]string) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().Interface("panic", r).Msgf("%s invocation panicked", name)
			text = format.FormatError(name, fmt.Errorf("internal error: %v", r))
			ok = false
		}
	}()

	spec, err := t.builder.Build(name, args)
	if err != nil {
		t.logger.Warn().Err(err).Msgf("failed to build %s command", name)
		return format.FormatError(name, err), false
	}

	t.logger.Info().Msgf("Running %s: %s", name, spec)
	result, err := t.runner.Run(ctx, spec)
	if err != nil {
		t.logger.Warn().Err(err).Msgf("%s scan did not complete", name)
		return format.FormatError(name, err), false
	}

	return format.Format(spec, result), result.Success()
}

// Register adds every catalog tool to the MCP server.
func (t *Tool) Register(srv *server.Server) error {
	if !srv.Capabilities().Tools {
		return fmt.Errorf("server does not advertise tools")
	}

	if runner.IsAvailable(t.builder.Executable) {
		t.logger.Debug().Msgf("%s binary found", t.builder.Executable)
	} else {
		if t.requireExecutable {
			return fmt.Errorf("%s binary not found", t.builder.Executable)
		}
		t.logger.Warn().Msgf("%s binary not found, scans will fail until it is installed", t.builder.Executable)
	}

	for _, def := range t.ListTools() {
		tool := &mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema(),
		}

		wrappedHandler := tools.WrapToolHandler(
			srv.Metrics(),
			t.logger,
			def.Name,
			t.handler(def.Name),
		)

		srv.AddTool(tool, wrappedHandler)
		t.logger.Debug().Msgf("%s tool registered", def.Name)
	}

	srv.AddReceivingMiddleware(t.unknownToolMiddleware(srv.Metrics()))

	return nil
}

func (t *Tool) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}

		args, err := DecodeArguments(raw)
		if err != nil {
			return textResult(format.FormatError(name, err), false), nil
		}

		text, ok := t.Call(ctx, name, args)
		return textResult(text, ok), nil
	}
}

// unknownToolMiddleware answers calls for names outside the catalog in-band
// instead of with a protocol error. The answer goes through the same wrapper
// as registered tools, so it is logged and counted.
func (t *Tool) unknownToolMiddleware(m *metrics.Metrics) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodCallTool {
				return next(ctx, method, req)
			}
			callReq, isCall := req.(*mcp.CallToolRequest)
			if !isCall || callReq.Params == nil {
				return next(ctx, method, req)
			}
			if _, known := catalog.Lookup(callReq.Params.Name); known {
				return next(ctx, method, req)
			}

			name := callReq.Params.Name
			return tools.WrapToolHandler(m, t.logger, name, t.handler(name))(ctx, callReq)
		}
	}
}

func textResult(text string, ok bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: !ok,
	}
}

// DecodeArguments turns the raw JSON arguments into string values. Absent or
// null arguments give an empty map, null values are dropped and other
// scalars are rendered in their JSON form.
func DecodeArguments(raw json.RawMessage) (map[string]string, error) {
	args := make(map[string]string)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return args, nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	for key, value := range values {
		value = bytes.TrimSpace(value)
		switch {
		case bytes.Equal(value, []byte("null")):
			continue
		case len(value) > 0 && value[0] == '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, fmt.Errorf("invalid argument %q: %w", key, err)
			}
			args[key] = s
		case len(value) > 0 && (value[0] == '{' || value[0] == '['):
			return nil, fmt.Errorf("invalid argument %q: expected a string, got %s", key, strconv.Quote(string(value)))
		default:
			args[key] = string(value)
		}
	}

	return args, nil
}

// New creates the nmap tool set from cfg.
func New(logger zerolog.Logger, cfg config.Config) tools.Tool {
	return &Tool{
		logger:            logger.With().Str("tool", "nmap").Logger(),
		builder:           command.NewBuilder(cfg.Executable),
		runner:            runner.New(logger, cfg.ScanTimeout),
		requireExecutable: cfg.RequireExecutable,
	}
}
