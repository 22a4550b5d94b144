// Command icegen serves, solves and generates sliding ice puzzles.
//
// Commands:
//  1. "server" (default): HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp": MCP stdio server; spins up an internal HTTP API if none is reachable
//  3. "solve <level>": prints the solutions of a stored level
//  4. "generate": generates a level, prints it and optionally stores it
//
// Flags can also be set from the environment or a .env file, and the server
// can publish itself through an ngrok tunnel during development.
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
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/icegen/api"
	"github.com/wricardo/mcp-training/icegen/game/config"
	"github.com/wricardo/mcp-training/icegen/game/engine"
	"github.com/wricardo/mcp-training/icegen/game/generator"
	"github.com/wricardo/mcp-training/icegen/game/service"
	"github.com/wricardo/mcp-training/icegen/game/session"
	"github.com/wricardo/mcp-training/icegen/game/solver"
	"github.com/wricardo/mcp-training/icegen/transport/mcp"
	"github.com/wricardo/mcp-training/icegen/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Ice Puzzle Server"
)

const (
	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
)

// options are the resolved global flags
type options struct {
	host         string
	port         int
	levelsDir    string
	sessionsDir  string
	defaultLevel string
	debug        bool

	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logrus.WithError(err).Warn("error loading .env file")
		}
	} else {
		logrus.Debug("loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "icegen",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "levels-dir", Value: engine.DefaultLevelsDir, Usage: "Directory containing level files", Sources: cli.EnvVars("LEVELS_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for persisted sessions", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "default-level", Usage: "Level used when a session names none", Sources: cli.EnvVars("DEFAULT_LEVEL")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run the HTTP server with REST API, WebSocket and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
					&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
				},
				Action: runServerCommand,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server backed by the HTTP API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts := readOptions(cmd)
					svc, err := initializeServices(opts)
					if err != nil {
						return err
					}
					return runStdioMCP(ctx, opts, svc)
				},
			},
			{
				Name:      "solve",
				Usage:     "Print the solutions of a stored level",
				ArgsUsage: "<level>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum slides (defaults to the level's move limit)"},
					&cli.IntFlag{Name: "max", Value: 10, Usage: "Solutions to print"},
					&cli.BoolFlag{Name: "reversal-pruning", Value: true, Usage: "Skip slides straight back"},
					&cli.BoolFlag{Name: "tail-pruning", Usage: "Collapse solutions sharing the shortest one's ending"},
				},
				Action: runSolveCommand,
			},
			{
				Name:  "generate",
				Usage: "Generate a level",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Usage: "Fixed width (default picks 12-16)"},
					&cli.IntFlag{Name: "height", Usage: "Fixed height (default picks 12-16)"},
					&cli.IntFlag{Name: "move-limit", Value: engine.DefaultMoveLimit, Usage: "Slides the level must be solvable within"},
					&cli.IntFlag{Name: "attempts", Usage: "Interference attempts (default 1000)"},
					&cli.Int64Flag{Name: "seed", Usage: "Random seed; 0 picks one"},
					&cli.StringFlag{Name: "name", Usage: "Level name"},
					&cli.BoolFlag{Name: "save", Usage: "Store the level in the levels directory"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "Format of a saved level: json or yaml"},
				},
				Action: runGenerateCommand,
			},
		},
	}
}

func readOptions(cmd *cli.Command) options {
	return options{
		host:         cmd.String("host"),
		port:         int(cmd.Int("port")),
		levelsDir:    cmd.String("levels-dir"),
		sessionsDir:  cmd.String("sessions-dir"),
		defaultLevel: cmd.String("default-level"),
		debug:        cmd.Bool("debug"),
		ngrok:        cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

func setupLogging(debug bool) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// services bundles what initializeServices wires together
type services struct {
	game     service.GameService
	sessions *session.Manager
	levels   *config.Manager
}

// initializeServices wires the level catalogue, session manager and game service
func initializeServices(opts options) (*services, error) {
	levels, err := config.NewManager(opts.levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}
	if opts.defaultLevel != "" {
		if err := levels.SetDefault(opts.defaultLevel); err != nil {
			return nil, fmt.Errorf("default level: %w", err)
		}
	}

	persistence, err := session.NewFilePersistence(opts.sessionsDir, levels)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessions := session.NewManagerWithPersistence(persistence)
	if err := sessions.LoadPersistedSessions(); err != nil {
		logrus.WithError(err).Warn("failed to load persisted sessions")
	}

	return &services{
		game:     service.NewGameService(sessions, levels),
		sessions: sessions,
		levels:   levels,
	}, nil
}

// maintainSessions prunes expired sessions and keeps memory in step with the
// sessions directory until ctx is done
func maintainSessions(ctx context.Context, sessions *session.Manager) {
	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()
	resync := time.NewTicker(syncInterval)
	defer resync.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanup.C:
			if removed := sessions.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logrus.WithField("removed", removed).Info("cleaned up expired sessions")
			}
		case <-resync.C:
			removed, added, err := sessions.SyncWithFilesystem()
			if err != nil {
				logrus.WithError(err).Warn("session sync failed")
				continue
			}
			if removed > 0 || added > 0 {
				logrus.WithFields(logrus.Fields{"removed": removed, "added": added}).Info("synced sessions with filesystem")
			}
		}
	}
}

// mcpHandler serves MCP JSON-RPC messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
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

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	opts := readOptions(cmd)
	svc, err := initializeServices(opts)
	if err != nil {
		return err
	}
	return runHTTPServer(ctx, opts, svc)
}

// runHTTPServer serves the API, WebSocket hub and /mcp until SIGINT or
// SIGTERM, then drains connections and saves every session.
func runHTTPServer(ctx context.Context, opts options, svc *services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run()

	addr := net.JoinHostPort(opts.host, fmt.Sprint(opts.port))
	apiServer := api.NewServer(svc.game, hub)
	mcpClient := mcp.NewClient("http://" + addr)
	apiServer.Router().HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go maintainSessions(ctx, svc.sessions)

	var wg sync.WaitGroup
	errs := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log := logrus.WithField("addr", addr)
		log.Infof("%s v%s listening", AppName, Version)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, opts, apiServer)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logrus.Info("shutting down")
	case runErr = <-errs:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP server shutdown error")
	}

	hub.Stop()
	wg.Wait()

	if err := svc.sessions.SaveAllSessions(); err != nil {
		logrus.WithError(err).Warn("failed to save sessions")
	}
	logrus.Info("server stopped")
	return runErr
}

// serveNgrok publishes handler through an ngrok tunnel until ctx is done
func serveNgrok(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		logrus.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		logrus.WithField("domain", opts.ngrokDomain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		logrus.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logrus.WithField("url", ngrokURL).Info("ngrok tunnel established")
	logrus.Infof("  REST API (ngrok): %s/api", ngrokURL)
	logrus.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logrus.WithError(err).Warn("ngrok server error")
	}
	logrus.Info("ngrok tunnel closed")
}

// runStdioMCP serves MCP over stdio. It reuses an API server already running
// on the configured address; otherwise it starts one on a random loopback port.
func runStdioMCP(ctx context.Context, opts options, svc *services) error {
	externalURL := "http://" + net.JoinHostPort(opts.host, fmt.Sprint(opts.port))
	baseURL := externalURL

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		logrus.WithField("url", externalURL).Info("external API server found, using it for MCP")
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
		defer hub.Stop()

		internal := &http.Server{Handler: api.NewServer(svc.game, hub)}
		go func() {
			if err := internal.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.WithError(err).Error("internal HTTP server error")
			}
		}()
		defer internal.Close()

		baseURL = "http://" + listener.Addr().String()
		logrus.WithField("url", baseURL).Info("started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	logrus.Info("MCP stdio server ready")

	err = server.ServeStdio(mcpClient.GetMCPServer())
	if saveErr := svc.sessions.SaveAllSessions(); saveErr != nil {
		logrus.WithError(saveErr).Warn("failed to save sessions")
	}
	if err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func runSolveCommand(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: %s solve <level>", cmd.Root().Name)
	}

	levels, err := config.NewManager(cmd.String("levels-dir"))
	if err != nil {
		return fmt.Errorf("failed to create level manager: %w", err)
	}
	gameService := service.NewGameService(session.NewManager(), levels)

	result, err := gameService.SolveLevel(ctx, name, service.SolveRequest{
		MoveLimit:    int(cmd.Int("limit")),
		MaxSolutions: int(cmd.Int("max")),
		Options: solver.Options{
			ReversalPruning: cmd.Bool("reversal-pruning"),
			TailPruning:     cmd.Bool("tail-pruning"),
		},
	})
	if err != nil {
		return err
	}

	writeSolveResult(cmd.Root().Writer, result)
	return nil
}

func writeSolveResult(w io.Writer, result *service.SolveResult) {
	fmt.Fprintf(w, "%s (limit %d, %d nodes, %dms)\n", result.Level, result.MoveLimit, result.Nodes, result.DurationMS)
	fmt.Fprintln(w, result.Message)
	for i, sol := range result.Solutions {
		fmt.Fprintf(w, "%3d. %-40s longest slide %d\n", i+1, sol.Text, sol.LongestSlide)
	}
	if hidden := result.Count - len(result.Solutions); hidden > 0 {
		fmt.Fprintf(w, "     ... %d more\n", hidden)
	}
}

func runGenerateCommand(ctx context.Context, cmd *cli.Command) error {
	cfg := generator.DefaultConfig()
	if w := int(cmd.Int("width")); w > 0 {
		cfg.MinWidth, cfg.MaxWidth = w, w
	}
	if h := int(cmd.Int("height")); h > 0 {
		cfg.MinHeight, cfg.MaxHeight = h, h
	}
	cfg.MoveLimit = int(cmd.Int("move-limit"))
	if attempts := int(cmd.Int("attempts")); attempts > 0 {
		cfg.InterferenceAttempts = attempts
	}

	format := strings.ToLower(cmd.String("format"))
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q, use json or yaml", format)
	}

	levels, err := config.NewManager(cmd.String("levels-dir"))
	if err != nil {
		return fmt.Errorf("failed to create level manager: %w", err)
	}
	gameService := service.NewGameService(session.NewManager(), levels)

	result, err := gameService.Generate(ctx, service.GenerateRequest{
		Config: &cfg,
		Seed:   cmd.Int64("seed"),
		Name:   cmd.String("name"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("save") {
		filename := result.LevelID + "." + format
		if err := levels.SaveConfig(filename, result.Level); err != nil {
			return fmt.Errorf("save level: %w", err)
		}
		logrus.WithField("file", filename).Info("level saved")
	}

	writeGenerateResult(cmd.Root().Writer, result)
	return nil
}

func writeGenerateResult(w io.Writer, result *service.GenerateResult) {
	fmt.Fprintf(w, "%s\n", result.LevelID)
	for _, row := range result.View {
		fmt.Fprintln(w, row)
	}
	if r := result.Report; r != nil {
		fmt.Fprintf(w, "\n%dx%d seed %d: %d boulders, %d interferences, %d reverts (%s)\n",
			r.Width, r.Height, r.Seed, r.Boulders, r.Interferences, r.Reverts, r.Reason)
	}
	fmt.Fprintf(w, "shortest (%d): %s\n", len(result.Shortest), strings.Join(result.Shortest, " "))
}
