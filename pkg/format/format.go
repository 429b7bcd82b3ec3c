// Package format renders scan results as the text returned to MCP clients.
package format

import (
	"fmt"
	"strings"

	"github.com/coliovacruz/nmap-mcp-server/pkg/command"
	"github.com/coliovacruz/nmap-mcp-server/pkg/runner"
	"golang.org/x/text/encoding/unicode"
)

const (
	SuccessMarker = "SCAN RESULT:"
	FailureMarker = "ERROR:"
	codeFence     = "```"
)

// Decode converts process output to text. Invalid UTF-8 sequences are
// replaced with U+FFFD; decoding never fails.
func Decode(data []byte) string {
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}

// Format renders the command line, the exit code and either stdout (exit
// code 0) or stderr (anything else).
func Format(spec command.Spec, result runner.Result) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Command: `%s`\n", spec.String()))
	builder.WriteString(fmt.Sprintf("Exit code: %d\n\n", result.ExitCode))

	body := result.Stderr
	marker := FailureMarker
	if result.Success() {
		body = result.Stdout
		marker = SuccessMarker
	}

	builder.WriteString(marker + "\n")
	builder.WriteString(codeFence + "\n")
	text := Decode(body)
	builder.WriteString(text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString(codeFence)

	return builder.String()
}

// FormatError renders a failure that happened before or instead of a
// completed scan.
func FormatError(toolName string, err error) string {
	return fmt.Sprintf("Error executing %s: %v", toolName, err)
}
