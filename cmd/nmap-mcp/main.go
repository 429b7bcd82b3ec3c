package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coliovacruz/nmap-mcp-server/pkg/config"
	"github.com/coliovacruz/nmap-mcp-server/pkg/metrics"
	"github.com/coliovacruz/nmap-mcp-server/pkg/server"
	"github.com/coliovacruz/nmap-mcp-server/pkg/tools"
	"github.com/coliovacruz/nmap-mcp-server/pkg/tools/nmap"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

const (
	ServerName        = "nmap-mcp"
	ServiceName       = "Nmap MCP Server"
	ShutdownTimeout   = 10 * time.Second
	ReadHeaderTimeout = 10 * time.Second
)

//go:embed VERSION
var Version string

func main() {
	var (
		debug        bool
		configPath   string
		transport    string
		bindAddr     string
		executable   string
		scanTimeout  time.Duration
		requireNmap  bool
		printVersion bool
	)
	defaults := config.Default()
	flag.BoolVar(&debug, "debug", false, "debug mode")
	flag.StringVar(&configPath, "config", "", "YAML config file path")
	flag.StringVar(&transport, "transport", defaults.Transport, "MCP transport (stdio|http)")
	flag.StringVar(&bindAddr, "bind", defaults.Bind, "bind address for the http transport (host:port)")
	flag.StringVar(&executable, "nmap", defaults.Executable, "nmap executable")
	flag.DurationVar(&scanTimeout, "timeout", 0, "per-scan timeout, 0 disables it")
	flag.BoolVar(&requireNmap, "require-nmap", false, "fail at startup when the nmap executable is missing")
	flag.BoolVar(&printVersion, "version", false, "print version and exit")
	flag.Parse()
	// Sanitize version
	version := strings.TrimSpace(Version)
	// Check if the version flag is set
	if printVersion {
		fmt.Printf("%s Version: %s\n", ServiceName, version)
		os.Exit(0)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout carries the protocol on the stdio transport.
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Msgf("Failed to load config: %v", err)
	}
	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = debug
		case "transport":
			cfg.Transport = transport
		case "bind":
			cfg.Bind = bindAddr
		case "nmap":
			cfg.Executable = executable
		case "timeout":
			cfg.ScanTimeout = scanTimeout
		case "require-nmap":
			cfg.RequireExecutable = requireNmap
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Msgf("Invalid configuration: %v", err)
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger.Debug().Msg("debug mode enabled")
	}

	impl := &mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}

	srvMetrics := metrics.New()
	srv := server.NewServer(impl, srvMetrics)

	toolList := []tools.Tool{
		nmap.New(logger, cfg),
	}

	for _, tool := range toolList {
		if err := tool.Register(srv); err != nil {
			logger.Fatal().Msgf("Failed to register tool: %v", err)
		}
	}

	if cfg.ScanTimeout > 0 {
		logger.Info().Msgf("Scan timeout set to %s", cfg.ScanTimeout)
	}

	switch cfg.Transport {
	case config.TransportHTTP:
		serveHTTP(signalCtx, logger, srv, cfg.Bind, version)
	default:
		serveStdio(signalCtx, logger, srv)
	}

	logger.Info().Msgf("%s shutdown complete", ServiceName)
}

func serveStdio(ctx context.Context, logger zerolog.Logger, srv *server.Server) {
	logger.Info().Msgf("%s serving on stdio", ServiceName)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Msgf("%s stopped: %v", ServerName, err)
	}
}

func serveHTTP(ctx context.Context, logger zerolog.Logger, srv *server.Server, bindAddr, version string) {
	// Stateless mode avoids "session not found" errors after server restart
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv.Server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.Handle("/metrics", srv.Metrics().Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"service": ServiceName,
			"version": version,
			"endpoints": map[string]string{
				"mcp":     "/mcp",
				"metrics": "/metrics",
			},
		})
	})

	httpServer := &http.Server{
		Addr:              bindAddr,
		Handler:           mux,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	logger.Info().Msgf("%s starting on address %s", ServiceName, bindAddr)
	logger.Info().Msgf("MCP endpoint available at: http://%s/mcp", bindAddr)

	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Msgf("%s failed to start: %v", ServerName, err)
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck
		logger.Error().Msgf("%s http shutdown error: %v", ServiceName, err)
	}
}
