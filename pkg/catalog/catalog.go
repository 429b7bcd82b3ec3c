// Package catalog holds the fixed set of scanning tools advertised by the server.
package catalog

import (
	"encoding/json"

	"github.com/coliovacruz/nmap-mcp-server/pkg/types"
	"github.com/google/jsonschema-go/jsonschema"
)

// Parameter describes a single tool argument.
type Parameter struct {
	Name        string
	Type        string
	Description string
	Default     string
	Required    bool
}

// HasDefault reports whether the parameter falls back to a default value.
func (p Parameter) HasDefault() bool {
	return p.Default != ""
}

// ToolDefinition describes a tool and its parameters.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Parameter returns the named parameter definition.
func (d ToolDefinition) Parameter(name string) (Parameter, bool) {
	for _, param := range d.Parameters {
		if param.Name == name {
			return param, true
		}
	}
	return Parameter{}, false
}

// Required returns the names of all required parameters in declaration order.
func (d ToolDefinition) Required() []string {
	var required []string
	for _, param := range d.Parameters {
		if param.Required {
			required = append(required, param.Name)
		}
	}
	return required
}

// InputSchema renders the parameters as a JSON Schema object.
// Additional properties are left open: callers may send fields the tool ignores.
func (d ToolDefinition) InputSchema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(d.Parameters)),
		Required:   d.Required(),
	}
	for _, param := range d.Parameters {
		prop := &jsonschema.Schema{
			Type:        param.Type,
			Description: param.Description,
		}
		if param.HasDefault() {
			prop.Default, _ = json.Marshal(param.Default)
		}
		schema.Properties[param.Name] = prop
	}
	return schema
}

func targetParam(description string) Parameter {
	return Parameter{
		Name:        types.ParamTarget,
		Type:        "string",
		Description: description,
		Required:    true,
	}
}

// Definitions returns the catalog in its advertised order.
// Every call returns a fresh copy, so callers may modify the result.
func Definitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        types.ToolHostDiscovery,
			Description: "Discover live hosts on a network using a ping scan (nmap -sn).",
			Parameters: []Parameter{
				targetParam("Scan target: IP address, hostname or CIDR range such as 192.168.1.0/24"),
			},
		},
		{
			Name:        types.ToolPortScan,
			Description: "Basic TCP port scan.",
			Parameters: []Parameter{
				targetParam("Target IP address or hostname"),
				{
					Name:        types.ParamPorts,
					Type:        "string",
					Description: "Ports to scan, for example '22,80,443' or '1-1000'",
					Default:     types.DefaultPortRange,
				},
			},
		},
		{
			Name:        types.ToolServiceDetection,
			Description: "Port scan with service and version detection (nmap -sV).",
			Parameters: []Parameter{
				targetParam("Target IP address or hostname"),
				{
					Name:        types.ParamPorts,
					Type:        "string",
					Description: "Ports to probe (default: common service ports)",
					Default:     types.CommonPorts,
				},
			},
		},
		{
			Name: types.ToolCustom,
			Description: "Advanced and unsafe: run nmap with arbitrary command-line arguments. " +
				"The arguments are split on whitespace and passed to nmap as-is.",
			Parameters: []Parameter{
				{
					Name:        types.ParamArguments,
					Type:        "string",
					Description: "Arguments for nmap, without the leading 'nmap'",
					Required:    true,
				},
			},
		},
	}
}

// Lookup finds a tool definition by name.
func Lookup(name string) (ToolDefinition, bool) {
	for _, def := range Definitions() {
		if def.Name == name {
			return def, true
		}
	}
	return ToolDefinition{}, false
}
