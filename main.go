// Command battleship starts the Battleship game server.
//
// It supports three commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "console" plays a hot-seat match on the terminal
//
// Flags control host/port, config directory, session store, log level,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/battleship/api"
	"github.com/wricardo/mcp-training/battleship/game/config"
	"github.com/wricardo/mcp-training/battleship/game/engine"
	"github.com/wricardo/mcp-training/battleship/game/service"
	"github.com/wricardo/mcp-training/battleship/game/session"
	"github.com/wricardo/mcp-training/battleship/transport/console"
	"github.com/wricardo/mcp-training/battleship/transport/mcp"
	"github.com/wricardo/mcp-training/battleship/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Battleship Server"
)

// Session store backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// options collects everything the commands need after flag parsing.
type options struct {
	Host        string
	Port        int
	ConfigDir   string
	Store       string
	SessionsDir string
	DBPath      string
	SessionTTL  time.Duration
	Retention   time.Duration
	NgrokOn     bool
	NgrokAuth   string
	NgrokDomain string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// services is the wired application core shared by all commands.
type services struct {
	Game     service.GameService
	Configs  *config.Manager
	Sessions *session.Manager
	Store    session.SessionPersistence

	stop   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// stopRoutines stops the background routines and waits for them to exit.
func (s *services) stopRoutines() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.wg.Wait()
}

// Close stops the background routines, flushes live sessions and releases
// the store. Calling it again is a no-op.
func (s *services) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopRoutines()

	if err := s.Sessions.Flush(); err != nil {
		log.Warn().Err(err).Msg("Failed to flush sessions on shutdown")
	}

	if closer, ok := s.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// purger is implemented by stores that can drop stale records in bulk.
type purger interface {
	PurgeOlderThan(cutoff time.Time) (int64, error)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("battleship exited")
	}
}

// newApp builds the command tree. Flags on the root are inherited by every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "battleship",
		Usage:   "Two-player Battleship over REST, WebSocket, MCP, or the terminal",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "store", Value: StoreFile, Usage: "Session store: file or sqlite", Sources: cli.EnvVars("SESSION_STORE")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for the file session store", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "db-path", Value: "data/sessions.db", Usage: "Database file for the sqlite session store", Sources: cli.EnvVars("DB_PATH")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "Evict idle sessions from memory after this long", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.DurationFlag{Name: "retention", Value: 30 * 24 * time.Hour, Usage: "Purge stored sessions idle for this long (sqlite only)", Sources: cli.EnvVars("SESSION_RETENTION")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level (debug, info, warn, error)", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, setupLogging(cmd.String("log-level"))
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, starting an internal HTTP API if none is reachable",
				Action:  mcpAction,
			},
			{
				Name:  "console",
				Usage: "Play a hot-seat match in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "Game configuration to play (defaults to the server default)"},
				},
				Action: consoleAction,
			},
		},
	}
}

// setupLogging sends human-readable zerolog output to stderr, keeping stdout free for MCP stdio.
func setupLogging(level string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func optionsFromCommand(cmd *cli.Command) options {
	return options{
		Host:        cmd.String("host"),
		Port:        int(cmd.Int("port")),
		ConfigDir:   cmd.String("config-dir"),
		Store:       cmd.String("store"),
		SessionsDir: cmd.String("sessions-dir"),
		DBPath:      cmd.String("db-path"),
		SessionTTL:  cmd.Duration("session-ttl"),
		Retention:   cmd.Duration("retention"),
		NgrokOn:     cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)
	log.Info().Str("version", Version).Str("store", opts.Store).Msgf("Starting %s", AppName)

	svc, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runHTTPServer(ctx, svc.Game, opts)
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)

	svc, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	return runStdioMCPWithInternalServer(svc.Game, opts)
}

func consoleAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFromCommand(cmd)

	configs, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	eng, err := newConsoleEngine(configs, cmd.String("config"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = console.Run(ctx, os.Stdin, os.Stdout, eng)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newConsoleEngine builds an engine for the named configuration, or the default one.
func newConsoleEngine(configs *config.Manager, name string) (*engine.GameEngine, error) {
	gameConfig := configs.GetDefault()
	if name != "" {
		loaded, err := configs.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", name, err)
		}
		gameConfig = loaded
	}
	return engine.NewEngine(gameConfig)
}

// newMCPHandler serves single JSON-RPC MCP messages over HTTP POST.
func newMCPHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRootHandler mounts the API server at the root and the MCP endpoint at /mcp.
func newRootHandler(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(gameService, hub)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcpClient))
	return mainRouter
}

// runHTTPServer serves the REST API, WebSocket hub, and /mcp endpoint until ctx is done.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, gameService service.GameService, opts options) error {
	hub := websocket.NewHub()
	go hub.Run()

	addr := opts.addr()
	handler := newRootHandler(gameService, hub, fmt.Sprintf("http://%s", addr))

	// No write timeout: WebSocket connections are long-lived
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if opts.NgrokOn {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, handler, opts)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case err := <-serverErr:
		runErr = fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done.
func runNgrokTunnel(ctx context.Context, handler http.Handler, opts options) {
	if opts.NgrokAuth == "" {
		log.Warn().Msg("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info().Msg("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		log.Info().Str("domain", opts.NgrokDomain).Msg("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().Str("url", ngrokURL).Msg("Ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", ngrokURL)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("Ngrok server error")
	}
	log.Info().Msg("Ngrok tunnel closed")
}

// newSessionStore opens the persistence backend selected by opts.Store.
func newSessionStore(opts options, configManager *config.Manager) (session.SessionPersistence, error) {
	switch opts.Store {
	case StoreFile, "":
		return session.NewFilePersistence(opts.SessionsDir, configManager)
	case StoreSQLite:
		return session.NewSQLitePersistence(opts.DBPath, configManager)
	default:
		return nil, fmt.Errorf("unknown session store %q (use %s or %s)", opts.Store, StoreFile, StoreSQLite)
	}
}

// initializeServices wires the config manager, session store, and game service.
// It also starts background routines that evict idle sessions and keep
// memory in sync with the store. Call Close to stop them.
func initializeServices(opts options) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := newSessionStore(opts, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)

	if err := sessionManager.LoadAll(); err != nil {
		log.Warn().Err(err).Msg("Failed to load persisted sessions")
	}

	svc := &services{
		Game:     service.NewGameService(sessionManager, configManager),
		Configs:  configManager,
		Sessions: sessionManager,
		Store:    persistence,
		stop:     make(chan struct{}),
	}

	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	svc.wg.Add(2)
	go func() {
		defer svc.wg.Done()
		sessionCleanupRoutine(svc.stop, time.Hour, sessionManager, persistence, ttl, opts.Retention)
	}()
	go func() {
		defer svc.wg.Done()
		storeSyncRoutine(svc.stop, 5*time.Second, sessionManager, persistence)
	}()

	return svc, nil
}

// sessionCleanupRoutine periodically evicts sessions idle longer than ttl
// and, when the store supports it, purges records older than retention.
func sessionCleanupRoutine(stop <-chan struct{}, interval time.Duration, manager *session.Manager, store session.SessionPersistence, ttl, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			cleanupSessions(manager, store, ttl, retention)
		}
	}
}

// cleanupSessions runs one eviction pass and returns how many sessions were
// evicted from memory and purged from the store.
func cleanupSessions(manager *session.Manager, store session.SessionPersistence, ttl, retention time.Duration) (int, int64) {
	removed := manager.EvictIdle(ttl)
	if removed > 0 {
		log.Info().Int("count", removed).Msg("Cleaned up expired sessions")
	}

	p, ok := store.(purger)
	if !ok || retention <= 0 {
		return removed, 0
	}

	purged, err := p.PurgeOlderThan(time.Now().Add(-retention))
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge stored sessions")
		return removed, 0
	}
	if purged > 0 {
		log.Info().Int64("count", purged).Msg("Purged stale sessions from store")
	}
	return removed, purged
}

// storeSyncRoutine periodically drops in-memory sessions whose stored copy
// was deleted out of band.
func storeSyncRoutine(stop <-chan struct{}, interval time.Duration, manager *session.Manager, store session.SessionPersistence) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			syncWithStore(manager, store)
		}
	}
}

// syncWithStore prunes orphaned sessions from memory and returns how many were dropped.
func syncWithStore(manager *session.Manager, store session.SessionPersistence) int {
	if store == nil {
		return 0
	}

	pruned := 0
	for _, sess := range manager.List() {
		if store.Exists(sess.ID) {
			continue
		}
		if err := manager.Evict(sess.ID); err == nil {
			pruned++
			log.Debug().Str("session", sess.ID).Msg("Pruned session from memory (store record deleted)")
		}
	}

	if pruned > 0 {
		log.Info().Int("count", pruned).Msg("Store sync: pruned orphaned sessions from memory")
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an API already listening on opts.addr(); if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(gameService service.GameService, opts options) error {
	externalURL := fmt.Sprintf("http://%s", opts.addr())
	log.Info().Str("url", externalURL).Msg("Checking for external API server")

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Msg("MCP stdio server ready (using external HTTP server)")
	} else {
		if resp != nil {
			resp.Body.Close()
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Internal HTTP server error")
			}
		}()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Info().Str("url", baseURL).Msg("MCP stdio server ready (using internal HTTP server)")
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
