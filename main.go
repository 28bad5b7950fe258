// Command exploretui is a terminal client for the Explore world.
//
// It has three commands:
//  1. "play" (default): the interactive terminal client against a world gateway
//  2. "world": a local dev world serving the gateway API, WebSocket notifications,
//     Prometheus metrics and an /mcp endpoint
//  3. "mcp": an MCP stdio server playing through the same session controller
//
// Connection settings come from Scarb.toml ([tool.dojo.env]), EXPLORE_* environment
// variables and flags, in increasing precedence. A .env file is loaded first.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/exploretui/api"
	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/config"
	"github.com/wricardo/mcp-training/exploretui/game/service"
	"github.com/wricardo/mcp-training/exploretui/game/session"
	"github.com/wricardo/mcp-training/exploretui/terminal"
	"github.com/wricardo/mcp-training/exploretui/transport/mcp"
	"github.com/wricardo/mcp-training/exploretui/transport/rpc"
	"github.com/wricardo/mcp-training/exploretui/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Explore"
)

// localAccount plays on the in-process world when no account is configured
var localAccount = component.FeltFromUint64(1)

// main loads .env, builds the command tree and runs it
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

// newApp returns the command tree. Shared flags live on the root and are
// inherited by every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "exploretui",
		Usage:   "play Explore from the terminal",
		Version: Version,
		Flags:   rootFlags(),
		Action:  runPlay,
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "Run the interactive terminal client (default)",
				Action: runPlay,
			},
			{
				Name:   "world",
				Usage:  "Run the local dev world with gateway API, WebSocket and MCP endpoint",
				Flags:  worldFlags(),
				Action: runWorld,
			},
			{
				Name:   "mcp",
				Usage:  "Run an MCP stdio server",
				Action: runStdioMCP,
			},
		},
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "manifest-path", Value: "Scarb.toml", Usage: "Scarb manifest holding [tool.dojo.env]", Sources: cli.EnvVars("DOJO_MANIFEST_PATH")},
		&cli.StringFlag{Name: "profile", Usage: "Manifest profile overriding [tool.dojo.env]", Sources: cli.EnvVars("EXPLORE_PROFILE")},
		&cli.StringFlag{Name: "rpc-url", Usage: "World gateway URL", Sources: cli.EnvVars("EXPLORE_RPC_URL")},
		&cli.StringFlag{Name: "account", Usage: "Player account address", Sources: cli.EnvVars("EXPLORE_ACCOUNT_ADDRESS")},
		&cli.StringFlag{Name: "world", Usage: "World address", Sources: cli.EnvVars("EXPLORE_WORLD_ADDRESS")},
		&cli.StringFlag{Name: "api-key", Usage: "Gateway API key", Sources: cli.EnvVars("EXPLORE_API_KEY")},
		&cli.StringFlag{Name: "move-action", Usage: "Append an action to moves: safe or unsafe", Sources: cli.EnvVars("EXPLORE_MOVE_ACTION")},
		&cli.StringFlag{Name: "game-name", Value: rpc.DefaultGameName, Usage: "Name sent when starting a new game", Sources: cli.EnvVars("EXPLORE_GAME_NAME")},
		&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second, Usage: "Timeout of each gateway request", Sources: cli.EnvVars("EXPLORE_TIMEOUT")},
		&cli.BoolFlag{Name: "watch", Usage: "Resync when the gateway reports a change", Sources: cli.EnvVars("EXPLORE_WATCH")},
		&cli.BoolFlag{Name: "local", Usage: "Play on an in-process dev world instead of a gateway", Sources: cli.EnvVars("EXPLORE_LOCAL")},
		&cli.StringFlag{Name: "log-file", Value: "exploretui.log", Usage: "Log file used while the terminal is in use", Sources: cli.EnvVars("EXPLORE_LOG_FILE")},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("EXPLORE_DEBUG")},
		&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing world configurations", Sources: cli.EnvVars("CONFIG_DIR")},
		&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory holding persisted accounts", Sources: cli.EnvVars("EXPLORE_SESSIONS_DIR")},
	}
}

func worldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("EXPLORE_HOST")},
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("EXPLORE_PORT")},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}
}

// setupLogging applies --debug and, when toFile is set, redirects the log
// to --log-file. The returned closer is never nil.
func setupLogging(cmd *cli.Command, toFile bool) (io.Closer, error) {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	if !toFile {
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cmd.String("log-file"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return io.NopCloser(nil), fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

// resolveProfile merges the manifest profile with env and flag values. A
// missing default manifest is not an error.
func resolveProfile(cmd *cli.Command) (config.Profile, error) {
	var profile config.Profile
	if path := cmd.String("manifest-path"); path != "" {
		loaded, err := config.LoadProfile(path, cmd.String("profile"))
		switch {
		case err == nil:
			profile = *loaded
		case errors.Is(err, config.ErrManifestNotFound) && !cmd.IsSet("manifest-path"):
		default:
			return profile, err
		}
	}

	profile = profile.Merge(config.Profile{
		RPCURL:         cmd.String("rpc-url"),
		AccountAddress: cmd.String("account"),
		WorldAddress:   cmd.String("world"),
		APIKey:         cmd.String("api-key"),
		MoveAction:     cmd.String("move-action"),
	})
	return profile, nil
}

// newRPCClient builds the gateway port for profile
func newRPCClient(profile config.Profile, gameName string, timeout time.Duration) (*rpc.Client, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	account, _ := component.ParseFelt(profile.AccountAddress)
	world, _ := component.ParseFelt(profile.WorldAddress)

	cfg := rpc.Config{
		URL:      profile.RPCURL,
		World:    world,
		Account:  account,
		APIKey:   profile.APIKey,
		GameName: gameName,
		Timeout:  timeout,
	}
	if action, ok, _ := profile.Action(); ok {
		cfg.MoveAction = &action
	}
	return rpc.NewClient(cfg)
}

// connect checks the gateway answers before the terminal is taken over
func connect(ctx context.Context, client *rpc.Client, url string) error {
	if err := client.Ping(ctx); err != nil {
		if errors.Is(err, rpc.ErrUnreachable) {
			return fmt.Errorf("could not reach remote endpoint at %s: %w", url, err)
		}
		return fmt.Errorf("remote endpoint at %s is not usable: %w", url, err)
	}
	return nil
}

// initializeWorld wires config and account storage into a dev world. It
// also starts the background routines that prune stale accounts.
func initializeWorld(ctx context.Context, configDir, sessionsDir string) (service.WorldService, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	sessionManager.StartCleanup(time.Hour, 24*time.Hour, ctx.Done())
	go filesystemSyncRoutine(ctx, sessionManager, persistence)

	return service.NewWorldService(sessionManager, configManager), nil
}

// filesystemSyncRoutine drops accounts from memory once their files are deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pruned := 0
		for _, sess := range manager.List() {
			if !persistence.Exists(sess.ID) {
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
					log.Printf("Pruned account %s from memory (file deleted)", sess.ID)
				}
			}
		}
		if pruned > 0 {
			log.Printf("Filesystem sync: pruned %d orphaned accounts from memory", pruned)
		}
	}
}

// localPort returns a port on an in-process dev world and the account it
// plays as
func localPort(ctx context.Context, cmd *cli.Command, profile config.Profile) (service.GamePort, component.Felt, error) {
	account := localAccount
	if profile.AccountAddress != "" {
		parsed, err := component.ParseFelt(profile.AccountAddress)
		if err != nil {
			return nil, account, fmt.Errorf("account: %w", err)
		}
		account = parsed
	}

	world, err := initializeWorld(ctx, cmd.String("config-dir"), cmd.String("sessions-dir"))
	if err != nil {
		return nil, account, err
	}
	port, err := service.NewWorldPort(world, account, cmd.String("game-name"))
	if err != nil {
		return nil, account, err
	}
	if action, ok, err := profile.Action(); err != nil {
		return nil, account, err
	} else if ok {
		port.WithMoveAction(action)
	}
	return port, account, nil
}

// runPlay connects to the gateway and hands the terminal to the event loop
func runPlay(ctx context.Context, cmd *cli.Command) error {
	logFile, err := setupLogging(cmd, true)
	if err != nil {
		return err
	}
	defer logFile.Close()

	profile, err := resolveProfile(cmd)
	if err != nil {
		return err
	}

	var port service.GamePort
	var remote <-chan service.Notification
	if cmd.Bool("local") {
		port, _, err = localPort(ctx, cmd, profile)
		if err != nil {
			return err
		}
	} else {
		client, err := newRPCClient(profile, cmd.String("game-name"), cmd.Duration("timeout"))
		if err != nil {
			return err
		}
		if err := connect(ctx, client, profile.RPCURL); err != nil {
			return err
		}
		port = client

		if cmd.Bool("watch") {
			remote = watch(ctx, profile, client.Account())
		}
	}

	log.Printf("Starting %s v%s", AppName, Version)
	screen, err := terminal.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return terminal.Run(ctx, screen, session.NewController(port), remote)
}

// watch subscribes to change notifications. Without a feed the client still
// works, so failures are only logged.
func watch(ctx context.Context, profile config.Profile, account component.Felt) <-chan service.Notification {
	wsURL, err := websocket.WatchURL(profile.RPCURL, account)
	if err != nil {
		log.Printf("Watch disabled: %v", err)
		return nil
	}
	header := http.Header{}
	if profile.APIKey != "" {
		header.Set("Authorization", "Bearer "+profile.APIKey)
	}
	notes, err := websocket.Watch(ctx, wsURL, header)
	if err != nil {
		log.Printf("Watch disabled: %v", err)
		return nil
	}
	log.Printf("Watching %s", wsURL)
	return notes
}

// runStdioMCP serves the MCP tools over stdio, against the gateway or,
// with --local, an in-process world
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	if _, err := setupLogging(cmd, false); err != nil {
		return err
	}
	profile, err := resolveProfile(cmd)
	if err != nil {
		return err
	}

	var port service.GamePort
	var account component.Felt
	if cmd.Bool("local") {
		port, account, err = localPort(ctx, cmd, profile)
		if err != nil {
			return err
		}
		log.Println("MCP stdio server ready (using in-process world)")
	} else {
		client, err := newRPCClient(profile, cmd.String("game-name"), cmd.Duration("timeout"))
		if err != nil {
			return err
		}
		if err := connect(ctx, client, profile.RPCURL); err != nil {
			return err
		}
		port, account = client, client.Account()
		log.Printf("MCP stdio server ready (using gateway at %s)", profile.RPCURL)
	}

	// One port, one account
	mcpClient := mcp.NewClient(account, func(requested component.Felt) (*session.Controller, error) {
		if requested != account {
			return nil, fmt.Errorf("this server plays as %s only", account)
		}
		return session.NewController(port), nil
	})
	return mcpClient.ServeStdio()
}

// runWorld starts the dev world HTTP server. If ngrok is enabled it also
// provisions a public tunnel.
func runWorld(ctx context.Context, cmd *cli.Command) error {
	if _, err := setupLogging(cmd, false); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	world, err := initializeWorld(ctx, cmd.String("config-dir"), cmd.String("sessions-dir"))
	if err != nil {
		return fmt.Errorf("failed to initialize world: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	var opts []api.Option
	if key := cmd.String("api-key"); key != "" {
		opts = append(opts, api.WithAPIKey(key))
	}
	if addr := cmd.String("world"); addr != "" {
		worldAddress, err := component.ParseFelt(addr)
		if err != nil {
			return fmt.Errorf("world address: %w", err)
		}
		opts = append(opts, api.WithWorldAddress(worldAddress))
	}

	// MCP tools play through the world directly and notify like HTTP calls
	var apiServer *api.Server
	gameName := cmd.String("game-name")
	mcpClient := mcp.NewClient(component.Felt{}, func(account component.Felt) (*session.Controller, error) {
		port, err := service.NewWorldPort(world, account, gameName)
		if err != nil {
			return nil, err
		}
		port.OnExecute(apiServer.Executed)
		return session.NewController(port), nil
	})
	apiServer = api.NewServer(world, hub, append(opts, api.WithMCP(mcpClient))...)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting %s v%s dev world", AppName, Version)

	var wg sync.WaitGroup
	errc := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("Gateway API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?account=<account>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), apiServer)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case runErr = <-errc:
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return runErr
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  Gateway API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?account=<account>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}
