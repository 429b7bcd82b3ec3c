package types

const (
	// DefaultExecutable is the scanner binary looked up on PATH.
	DefaultExecutable = "nmap"

	// DefaultPortRange is used by port_scan when no ports are given.
	DefaultPortRange = "1-1000"
	// CommonPorts is used by service_detection when no ports are given.
	CommonPorts = "22,80,443,21,25,53,110,993,995"
)

// Tool names advertised over MCP.
const (
	ToolHostDiscovery    = "host_discovery"
	ToolPortScan         = "port_scan"
	ToolServiceDetection = "service_detection"
	ToolCustom           = "custom"
)

// Parameter names shared by the tools.
const (
	ParamTarget    = "target"
	ParamPorts     = "ports"
	ParamArguments = "arguments"
)
