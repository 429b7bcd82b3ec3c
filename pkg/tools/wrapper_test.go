package tools

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coliovacruz/nmap-mcp-server/pkg/metrics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: isError,
	}
}

func TestWrapToolHandler_Success(t *testing.T) {
	m := metrics.New()
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult("success", false), nil
	}

	wrapped := WrapToolHandler(m, logger, "test-tool", handler)

	result, err := wrapped(context.Background(), &mcp.CallToolRequest{})

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(result.Content))
	}

	if got := testutil.ToFloat64(m.Calls("test-tool", metrics.OutcomeSuccess)); got != 1 {
		t.Errorf("expected 1 successful call recorded, got %v", got)
	}
	if !bytes.Contains(logs.Bytes(), []byte(`"success":true`)) {
		t.Errorf("expected success to be logged, got %s", logs.String())
	}
}

func TestWrapToolHandler_InBandError(t *testing.T) {
	m := metrics.New()

	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult("Error executing test-tool: boom", true), nil
	}

	wrapped := WrapToolHandler(m, zerolog.Nop(), "test-tool", handler)

	result, err := wrapped(context.Background(), &mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError to be passed through")
	}

	if got := testutil.ToFloat64(m.Calls("test-tool", metrics.OutcomeFailure)); got != 1 {
		t.Errorf("expected 1 failed call recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.Calls("test-tool", metrics.OutcomeSuccess)); got != 0 {
		t.Errorf("expected no successful call recorded, got %v", got)
	}
}

func TestWrapToolHandler_Error(t *testing.T) {
	m := metrics.New()
	var logs bytes.Buffer

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := WrapToolHandler(m, zerolog.New(&logs), "test-tool", handler)

	_, err := wrapped(context.Background(), &mcp.CallToolRequest{})

	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected %v, got %v", expectedErr, err)
	}
	if got := testutil.ToFloat64(m.Calls("test-tool", metrics.OutcomeFailure)); got != 1 {
		t.Errorf("expected 1 failed call recorded, got %v", got)
	}
	if !bytes.Contains(logs.Bytes(), []byte("test error")) {
		t.Errorf("expected error to be logged, got %s", logs.String())
	}
}

func TestWrapToolHandler_DurationTracking(t *testing.T) {
	var logs bytes.Buffer

	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		time.Sleep(50 * time.Millisecond)
		return textResult("", false), nil
	}

	wrapped := WrapToolHandler(nil, zerolog.New(&logs), "test-tool", handler)
	_, _ = wrapped(context.Background(), nil)

	if !bytes.Contains(logs.Bytes(), []byte(`"duration":`)) {
		t.Errorf("expected duration to be logged, got %s", logs.String())
	}
}

func TestWrapToolHandler_MultipleExecutions(t *testing.T) {
	m := metrics.New()

	callCount := 0
	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callCount++
		return textResult("", false), nil
	}

	wrapped := WrapToolHandler(m, zerolog.Nop(), "test-tool", handler)

	for i := 0; i < 5; i++ {
		_, _ = wrapped(context.Background(), &mcp.CallToolRequest{})
	}

	if callCount != 5 {
		t.Errorf("expected handler to be called 5 times, got %d", callCount)
	}
	if got := testutil.ToFloat64(m.Calls("test-tool", metrics.OutcomeSuccess)); got != 5 {
		t.Errorf("expected 5 calls recorded, got %v", got)
	}
}
