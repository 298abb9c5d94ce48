package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesprial/docker-manager-mcp/internal/auth"
	"github.com/jamesprial/docker-manager-mcp/internal/config"
	"github.com/jamesprial/docker-manager-mcp/internal/docker"
	"github.com/jamesprial/docker-manager-mcp/internal/logging"
	"github.com/jamesprial/docker-manager-mcp/internal/safety"
	"github.com/jamesprial/docker-manager-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// defaultConfigPath is read when neither --config nor DOCKER_MCP_CONFIG_PATH
// names a file.
var defaultConfigPath = "/config/config.yaml"

// options holds the command-line flags. Flags override both the config file
// and the environment, but only when explicitly set.
type options struct {
	configPath string
	transport  string
	port       int
	logLevel   string
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docker-manager-mcp",
		Short: "MCP server relaying Docker tool calls to a Docker-manager HTTP service",
		Long: "docker-manager-mcp exposes container, image, exec-session and network tools over MCP\n" +
			"and forwards every call to {base_url}/api/<endpoint> on a Docker-manager service.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, source, err := buildConfig(cmd, opts)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				return err
			}
			if err := run(cmd.Context(), cfg, source, os.Stderr); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file (default $DOCKER_MCP_CONFIG_PATH or "+defaultConfigPath+")")
	flags.StringVarP(&opts.transport, "transport", "t", "", "MCP transport: stdio or http")
	flags.IntVarP(&opts.port, "port", "p", 0, "listen port for the http transport")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	return cmd
}

// buildConfig resolves the effective configuration: file (or defaults), then
// environment overrides, then explicitly set flags. The result is validated.
// It also returns a description of where the file settings came from.
//
// A path named by --config or DOCKER_MCP_CONFIG_PATH must load. The default
// path may be absent, in which case DefaultConfig is used; a default file
// that exists but does not parse is still an error.
func buildConfig(cmd *cobra.Command, opts *options) (*config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		path = os.Getenv("DOCKER_MCP_CONFIG_PATH")
	}
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	source := path
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("load config %q: %w", path, err)
		}
		cfg = config.DefaultConfig()
		source = "defaults"
	}

	config.ApplyEnvOverrides(cfg)

	flags := cmd.Flags()
	if flags.Changed("transport") {
		cfg.Server.Transport = opts.transport
	}
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

// run wires the relay, the tool catalog and the chosen transport, and blocks
// until the transport stops or a termination signal arrives.
func run(ctx context.Context, cfg *config.Config, source string, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return err
	}
	logger.Info().Str("source", source).Str("version", version).Msg("configuration loaded")

	var audit *safety.AuditLogger
	if cfg.Audit.Enabled {
		a, closer, err := safety.OpenAuditLog(cfg.Audit.LogPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.Audit.LogPath).Msg("audit logging disabled")
		} else {
			audit = a
			defer closer.Close()
		}
	}

	guards := docker.Guards{
		Containers: safety.NewFilter("container", cfg.Safety.Containers),
		Networks:   safety.NewFilter("network", cfg.Safety.Networks),
	}

	mgr, err := docker.NewHTTPManager(cfg.Manager, logger)
	if err != nil {
		return err
	}

	mcpServer := server.NewMCPServer(
		"docker-manager-mcp",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	names := tools.RegisterAll(mcpServer, docker.DockerTools(mgr, guards, audit))
	logger.Info().
		Int("count", len(names)).
		Strs("tools", names).
		Str("base_url", cfg.Manager.BaseURL).
		Msg("tools registered")

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		return serveHTTP(ctx, cfg, mcpServer, logger)
	default:
		return serveStdio(ctx, mcpServer, logger)
	}
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer, logger zerolog.Logger) error {
	logger.Info().Msg("serving MCP over stdio")
	stdio := server.NewStdioServer(mcpServer)
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, mcpServer *server.MCPServer, logger zerolog.Logger) error {
	tokenBefore := cfg.Server.AuthToken
	token, err := config.EnsureAuthToken(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("could not generate auth token, running without authentication")
	} else if tokenBefore == "" {
		logger.Warn().Str("token", token).Msg("generated auth token (set DOCKER_MCP_AUTH_TOKEN to persist)")
	}

	handler := auth.NewAuthMiddleware(cfg.Server.AuthToken, logger)(server.NewStreamableHTTPServer(mcpServer))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("serving MCP over streamable HTTP")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http transport: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	logger.Info().Msg("server stopped")
	return nil
}
