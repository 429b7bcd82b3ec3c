// Package command translates tool invocations into nmap argument vectors.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coliovacruz/nmap-mcp-server/pkg/catalog"
	"github.com/coliovacruz/nmap-mcp-server/pkg/types"
)

var (
	ErrUnknownTool              = errors.New("unknown tool")
	ErrMissingRequiredParameter = errors.New("missing required parameter")
	ErrEmptyExecutable          = errors.New("scanner executable not configured")
)

// Spec is the literal argument vector handed to the process runner.
// The first token is always the executable.
type Spec []string

// Executable returns the program to run.
func (s Spec) Executable() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Args returns the arguments following the executable.
func (s Spec) Args() []string {
	if len(s) < 2 {
		return nil
	}
	return s[1:]
}

// String joins the tokens with single spaces. It is for display only and
// must not be re-parsed.
func (s Spec) String() string {
	return strings.Join(s, " ")
}

// Builder maps tool invocations to command specs.
//
// Values of target and arguments are not inspected: they are passed as
// separate argv elements, so shell metacharacters are inert, but nmap
// itself will honour any flags they contain.
type Builder struct {
	Executable string
}

// NewBuilder returns a Builder for the given scanner binary.
func NewBuilder(executable string) *Builder {
	if executable == "" {
		executable = types.DefaultExecutable
	}
	return &Builder{Executable: executable}
}

// Build returns the argument vector for toolName. Unknown argument keys are ignored.
func (b *Builder) Build(toolName string, args map[string]string) (Spec, error) {
	if b.Executable == "" {
		return nil, ErrEmptyExecutable
	}

	def, ok := catalog.Lookup(toolName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, toolName)
	}

	for _, name := range def.Required() {
		if _, present := args[name]; !present {
			return nil, fmt.Errorf("%w: %s requires %q", ErrMissingRequiredParameter, toolName, name)
		}
	}

	switch toolName {
	case types.ToolHostDiscovery:
		return Spec{b.Executable, "-sn", args[types.ParamTarget]}, nil

	case types.ToolPortScan:
		ports := valueOrDefault(def, args, types.ParamPorts)
		return Spec{b.Executable, "-p", ports, args[types.ParamTarget]}, nil

	case types.ToolServiceDetection:
		ports := valueOrDefault(def, args, types.ParamPorts)
		return Spec{b.Executable, "-sV", "-p", ports, args[types.ParamTarget]}, nil

	case types.ToolCustom:
		spec := Spec{b.Executable}
		return append(spec, strings.Fields(args[types.ParamArguments])...), nil
	}

	// Catalog entry without a mapping.
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, toolName)
}

// valueOrDefault returns the caller's value when the key is present, even
// if empty, and the catalog default otherwise.
func valueOrDefault(def catalog.ToolDefinition, args map[string]string, name string) string {
	if value, ok := args[name]; ok {
		return value
	}
	param, _ := def.Parameter(name)
	return param.Default
}
