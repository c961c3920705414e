// Command plantmerge starts the plant merge map game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (and an optional .env file); flags
// override them. Ngrok tunneling gives easy external access during
// development, which matters for geolocation play on a phone.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/plantmerge/api"
	"github.com/wricardo/mcp-training/plantmerge/game/config"
	"github.com/wricardo/mcp-training/plantmerge/game/geo"
	"github.com/wricardo/mcp-training/plantmerge/game/service"
	"github.com/wricardo/mcp-training/plantmerge/game/session"
	"github.com/wricardo/mcp-training/plantmerge/logging"
	"github.com/wricardo/mcp-training/plantmerge/transport/mcp"
	"github.com/wricardo/mcp-training/plantmerge/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Plant Merge Server"
)

const (
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// main loads the environment, builds the command and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	defaults, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newCommand(defaults)
	if envErr != nil && !os.IsNotExist(envErr) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", envErr)
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newCommand builds the command tree. Flag defaults come from the environment.
func newCommand(defaults config.Settings) *cli.Command {
	serverCmd := &cli.Command{
		Name:    "server",
		Aliases: []string{"http"},
		Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, defaults, runHTTPServer)
		},
	}

	return &cli.Command{
		Name:    "plantmerge",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: defaults.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: defaults.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Value: defaults.ConfigDir, Usage: "Directory containing game configurations"},
			&cli.StringFlag{Name: "static-dir", Value: defaults.StaticDir, Usage: "Directory served at /"},
			&cli.StringFlag{Name: "storage", Value: defaults.Storage, Usage: "Session storage: file, sqlite or memory"},
			&cli.StringFlag{Name: "sessions-dir", Value: defaults.SessionsDir, Usage: "Directory for file storage"},
			&cli.StringFlag{Name: "sqlite-path", Value: defaults.SQLitePath, Usage: "Database path for sqlite storage"},
			&cli.DurationFlag{Name: "session-ttl", Value: defaults.SessionTTL, Usage: "Evict sessions idle for longer than this"},
			&cli.BoolFlag{Name: "geo-direct", Value: defaults.GeoDirect, Usage: "Accept positions from REST/MCP without a WebSocket location source"},
			&cli.StringFlag{Name: "log-file", Value: defaults.LogFile, Usage: "Also write logs to this rotating file"},
			&cli.BoolFlag{Name: "debug", Value: defaults.Debug, Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Value: defaults.NgrokEnabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: defaults.NgrokAuthToken, Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
			&cli.StringFlag{Name: "ngrok-domain", Value: defaults.NgrokDomain, Usage: "Custom ngrok domain (optional)"},
		},
		Commands: []*cli.Command{
			serverCmd,
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, defaults, runStdioMCPWithInternalServer)
				},
			},
		},
		Action: serverCmd.Action,
	}
}

// settingsFromCommand applies flag values over the environment defaults
func settingsFromCommand(cmd *cli.Command, defaults config.Settings) (config.Settings, error) {
	s := defaults
	s.Host = cmd.String("host")
	s.Port = cmd.Int("port")
	s.ConfigDir = cmd.String("config-dir")
	s.StaticDir = cmd.String("static-dir")
	s.Storage = cmd.String("storage")
	s.SessionsDir = cmd.String("sessions-dir")
	s.SQLitePath = cmd.String("sqlite-path")
	s.SessionTTL = cmd.Duration("session-ttl")
	s.GeoDirect = cmd.Bool("geo-direct")
	s.LogFile = cmd.String("log-file")
	s.Debug = cmd.Bool("debug")
	s.NgrokEnabled = cmd.Bool("ngrok")
	s.NgrokAuthToken = cmd.String("ngrok-auth")
	s.NgrokDomain = cmd.String("ngrok-domain")
	if s.NgrokAuthToken == "" {
		s.NgrokAuthToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

type runner func(ctx context.Context, a *app) error

// run builds the logger and services, then hands over to the selected mode
func run(ctx context.Context, cmd *cli.Command, defaults config.Settings, mode runner) error {
	settings, err := settingsFromCommand(cmd, defaults)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{File: settings.LogFile, Debug: settings.Debug})
	defer logging.Sync(logger)

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("mode", cmd.Name),
		zap.String("storage", settings.Storage))

	a, err := initializeServices(settings, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer a.Close()
	defer cancel()

	a.startBackground(ctx)
	return mode(ctx, a)
}

// app holds the wired services shared by both modes
type app struct {
	settings    config.Settings
	logger      *zap.Logger
	configs     *config.Manager
	sessions    *session.Manager
	persistence session.SessionPersistence
	broker      *geo.Broker
	service     service.GameService
	closeStore  func() error
	wg          sync.WaitGroup
}

// initializeServices wires session/config managers, the geolocation broker
// and the game service.
func initializeServices(settings config.Settings, logger *zap.Logger) (*app, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	a := &app{
		settings:   settings,
		logger:     logger,
		configs:    configManager,
		broker:     geo.NewBroker(settings.GeoDirect, logger),
		closeStore: func() error { return nil },
	}

	switch settings.Storage {
	case config.StorageFile:
		fp, err := session.NewFilePersistence(settings.SessionsDir, configManager, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		a.persistence = fp
	case config.StorageSQLite:
		sp, err := session.OpenSQLitePersistence(settings.SQLitePath, configManager, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		a.persistence = sp
		a.closeStore = sp.Close
	}

	// Memory storage leaves persistence nil
	a.sessions = session.NewManagerWithPersistence(a.persistence, logger)
	a.sessions.SetFeedProvider(a.broker)

	// Load persisted sessions on startup
	if err := a.sessions.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", zap.Error(err))
	}

	a.service = service.NewGameService(a.sessions, configManager, a.broker, logger)
	return a, nil
}

// startBackground launches session cleanup and storage sync until ctx ends
func (a *app) startBackground(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.sessionCleanupRoutine(ctx)
	}()

	if a.persistence != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.storageSyncRoutine(ctx)
		}()
	}
}

// Close saves every session and releases storage
func (a *app) Close() {
	a.wg.Wait()
	if err := a.service.SaveAllSessions(context.Background()); err != nil {
		a.logger.Warn("failed to save sessions on shutdown", zap.Error(err))
	}
	if err := a.closeStore(); err != nil {
		a.logger.Warn("failed to close session storage", zap.Error(err))
	}
}

// sessionCleanupRoutine periodically evicts sessions that have not been
// accessed within the TTL. Evicted sessions stay in storage.
func (a *app) sessionCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := a.service.EvictIdleSessions(ctx, a.settings.SessionTTL); removed > 0 {
				a.logger.Info("cleaned up expired sessions", zap.Int("count", removed))
			}
		}
	}
}

// storageSyncRoutine removes sessions from memory whose stored copy was
// deleted out of band.
func (a *app) storageSyncRoutine(ctx context.Context) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.pruneOrphans(ctx)
		}
	}
}

// pruneOrphans drops in-memory sessions whose stored copy no longer exists
func (a *app) pruneOrphans(ctx context.Context) int {
	return a.service.PruneSessions(ctx, a.persistence.Exists)
}

// newHandler wires the REST API, WebSocket hub, /mcp endpoint and static files
func (a *app) newHandler(ctx context.Context, baseURL string) http.Handler {
	hub := websocket.NewHub(a.logger)
	hub.SetPositionReporter(a.service)
	hub.SetSourceRegistry(a.broker)
	go hub.Run(ctx)

	apiServer := api.NewServer(a.service, hub, a.settings.StaticDir, a.logger)

	mcpClient := mcp.NewClient(baseURL)
	apiServer.Router().Handle("/mcp", server.NewStreamableHTTPServer(mcpClient.GetMCPServer()))

	apiServer.MountStatic()
	return apiServer
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, a *app) error {
	addr := a.settings.Addr()
	handler := a.newHandler(ctx, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		a.logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if a.settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.runNgrok(ctx, handler)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	a.logger.Info("server stopped")
	return runErr
}

// runNgrok serves handler through an ngrok tunnel until ctx ends
func (a *app) runNgrok(ctx context.Context, handler http.Handler) {
	if a.settings.NgrokAuthToken == "" {
		a.logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain := a.settings.NgrokDomain; domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		a.logger.Info("using custom ngrok domain", zap.String("domain", domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(a.settings.NgrokAuthToken))
	if err != nil {
		a.logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	ngrokURL := tun.URL()
	a.logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("websocket", ngrokURL+"/ws?session=<session_id>"),
		zap.String("mcp", ngrokURL+"/mcp"))

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Warn("ngrok server error", zap.Error(err))
	}
	a.logger.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether a plant merge API answers at baseURL
func externalAPIAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses the external API when one answers; otherwise it starts an
// internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, a *app) error {
	baseURL := a.settings.APIURL
	a.logger.Info("checking for external API server", zap.String("url", baseURL))

	if externalAPIAvailable(ctx, baseURL) {
		a.logger.Info("external API server found, using it for MCP", zap.String("url", baseURL))
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		httpServer := &http.Server{Handler: a.newHandler(ctx, baseURL)}

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		a.logger.Info("internal HTTP server started for MCP stdio", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL)
	a.logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
