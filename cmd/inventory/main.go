package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/zaloga/internal/api"
	"github.com/erazemk/zaloga/internal/config"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/service"
	"github.com/erazemk/zaloga/internal/store"
	"github.com/erazemk/zaloga/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to configuration keys. Only flags given
// on the command line override the config file and environment.
var flagKeys = map[string]string{
	"db": "database.dsn", "d": "database.dsn",
	"driver": "database.driver",
	"addr":   "server.addr", "a": "server.addr",
	"user": "admin.email", "u": "admin.email",
	"log": "log.file", "l": "log.file",
}

func run(args []string) error {
	fs := flag.NewFlagSet("inventory", flag.ContinueOnError)

	var dsn, driver, addr, adminEmail, logPath, configFile string
	fs.StringVar(&dsn, "db", "", "")
	fs.StringVar(&dsn, "d", "", "")
	fs.StringVar(&driver, "driver", "", "")
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")
	fs.StringVar(&adminEmail, "user", "", "")
	fs.StringVar(&adminEmail, "u", "", "")
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")
	fs.StringVar(&configFile, "config", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: inventory [flags]

Flags:
  -d, -db <dsn>           database path or DSN (default: inventory.sqlite3)
      -driver <name>      database driver: sqlite or postgres (default: sqlite)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <email>       admin email on first run (default: admin@localhost)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
      -config <path>      config file (YAML, TOML or JSON)
  -h, -help               show this help and exit

Every setting can also be given as an INVENTORY_* environment variable,
e.g. INVENTORY_DATABASE_DSN or INVENTORY_SERVER_ADDR, or in a .env file.
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	values := map[string]string{
		"db": dsn, "d": dsn, "driver": driver, "addr": addr, "a": addr,
		"user": adminEmail, "u": adminEmail, "log": logPath, "l": logPath,
	}
	overrides := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = values[f.Name]
		}
	})

	cfg, err := config.Load(configFile, overrides)
	if err != nil {
		return err
	}

	// INFO/WARN go to stdout, ERROR to stderr, optionally teed to a file.
	closeLog, err := setupLogger(cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "driver", cfg.Database.Driver)

	ctx := context.Background()
	password, err := service.NewAccounts(database).Bootstrap(ctx, cfg.Admin.Email)
	if err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}
	if password != "" {
		printAdminAccount(cfg.Admin.Email, password)
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	apiRouter := api.NewRouter(database, api.Options{
		JWTSecret:   jwtSecret,
		CORSOrigins: cfg.CORS.Origins,
		PageSize:    cfg.Items.PageSize,
	})
	webRouter, err := web.NewRouter(database, web.Options{
		JWTSecret:     jwtSecret,
		SecureCookies: cfg.Cookie.Secure,
		PageSize:      cfg.Items.PageSize,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           middleware.RequestID(web.LoggingMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("server started", "addr", ln.Addr().String())
	if err := serve(sigCtx, server, ln, 5*time.Second); err != nil {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

// serve runs server on ln until ctx is done, then shuts it down. It returns
// only after in-flight requests have finished or grace has run out, so the
// caller may release what the handlers use.
func serve(ctx context.Context, server *http.Server, ln net.Listener, grace time.Duration) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-done
	return nil
}

// printAdminAccount prints the generated first-run admin credentials.
func printAdminAccount(email, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
	fmt.Println()
}
