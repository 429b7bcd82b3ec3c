package tools

import (
	"github.com/coliovacruz/nmap-mcp-server/pkg/server"
)

type Tool interface {
	Register(srv *server.Server) error
}
