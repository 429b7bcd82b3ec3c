package server

import (
	"github.com/coliovacruz/nmap-mcp-server/pkg/metrics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const instructions = "Network scanning tools backed by nmap. Each call runs one nmap process " +
	"and returns the command line, the exit code and the scanner output."

// Capabilities is the fixed capability set advertised to clients.
type Capabilities struct {
	Tools     bool
	Prompts   bool
	Resources bool
}

// DefaultCapabilities advertises tools only.
var DefaultCapabilities = Capabilities{
	Tools:     true,
	Prompts:   false,
	Resources: false,
}

// Server is constructed once at startup and handed to the transport.
type Server struct {
	*mcp.Server
	capabilities Capabilities
	metrics      *metrics.Metrics
}

func NewServer(impl *mcp.Implementation, m *metrics.Metrics) *Server {
	return &Server{
		Server: mcp.NewServer(impl, &mcp.ServerOptions{
			Instructions: instructions,
		}),
		capabilities: DefaultCapabilities,
		metrics:      m,
	}
}

func (s *Server) Capabilities() Capabilities {
	return s.capabilities
}

func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}
