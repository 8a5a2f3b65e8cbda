package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/cypherlabdev/sportsbook-explorer/internal/config"
	"github.com/cypherlabdev/sportsbook-explorer/internal/export"
	httpHandler "github.com/cypherlabdev/sportsbook-explorer/internal/handler/http"
	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

const usage = `usage: sportsbook-explorer <command> [flags]

commands:
  fetch       fetch, pivot and print one league/category/sub-category listing
  reference   print the category ID reference
  export      write the stored last result to a CSV/TSV file
              (needs store.backend=redis; with the memory store use fetch --out)
  serve       run the HTTP API
`

const exportNote = `The last result only outlives a process with store.backend=redis.
With the default memory store, export from the same run: fetch --out <path>.
`

// globalFlags are accepted by every command
type globalFlags struct {
	configPath string
	envFile    string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "fetch":
		err = runFetch(args, os.Stdout)
	case "reference":
		err = runReference(args, os.Stdout)
	case "export":
		err = runExport(args)
	case "serve":
		err = runServe(args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newFlagSet(name string, g *globalFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&g.configPath, "config", "c", "", "path to a YAML config file")
	fs.StringVar(&g.envFile, "env-file", ".env", "optional .env file loaded before the environment")
	return fs
}

// bootstrap loads configuration, configures logging and wires the app
func bootstrap(ctx context.Context, g globalFlags) (*app, error) {
	if err := config.LoadDotEnv(g.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	return newApp(ctx, cfg, logger)
}

// runFetch handles `fetch`
func runFetch(args []string, out io.Writer) error {
	var g globalFlags
	var q models.Query
	var refID int64
	var outPath, format string

	fs := newFlagSet("fetch", &g)
	fs.Int64VarP(&q.LeagueID, "league", "l", 0, "league ID (defaults to sportsbook.default_league_id)")
	fs.Int64VarP(&q.CategoryID, "category", "k", 0, "category ID")
	fs.Int64VarP(&q.SubcategoryID, "subcategory", "s", 0, "sub-category ID (0 for all)")
	fs.Int64Var(&refID, "ref", 0, "fill category and sub-category from a reference ID")
	fs.StringVarP(&outPath, "out", "o", "", "also export the result to this file")
	fs.StringVar(&format, "format", "", "export format: csv or tsv (default from file extension or config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := bootstrap(ctx, g)
	if err != nil {
		return err
	}
	defer a.Close()

	if q.LeagueID == 0 {
		q.LeagueID = a.cfg.Sportsbook.DefaultLeagueID
	}
	if refID != 0 {
		sel, err := a.reference.Resolve(refID)
		if err != nil {
			return err
		}
		q.CategoryID, q.SubcategoryID = sel.CategoryID, sel.SubcategoryID
		a.logger.Info().
			Int64("category_id", q.CategoryID).
			Int64("subcategory_id", q.SubcategoryID).
			Msg("filled IDs from reference")
	}

	rs, err := a.service.Explore(ctx, q)
	if err != nil {
		return err
	}

	if len(rs.Rows) == 0 {
		a.logger.Info().Msg("finished with no results")
		return nil
	}

	if err := export.RenderTable(out, rs); err != nil {
		return err
	}

	if outPath == "" {
		return nil
	}
	return writeExport(a, rs, outPath, format)
}

// runReference handles `reference`
func runReference(args []string, out io.Writer) error {
	var g globalFlags
	fs := newFlagSet("reference", &g)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := bootstrap(context.Background(), g)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.reference.Render(out)
}

// runExport handles `export`, writing the stored last result
func runExport(args []string) error {
	var g globalFlags
	var outPath, format string

	fs := newFlagSet("export", &g)
	fs.StringVarP(&outPath, "out", "o", "", "destination file (required)")
	fs.StringVar(&format, "format", "", "export format: csv or tsv")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: sportsbook-explorer export --out <path> [flags]\n\n%s\n", exportNote)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if outPath == "" {
		return errors.New("export: --out is required")
	}

	ctx := context.Background()
	a, err := bootstrap(ctx, g)
	if err != nil {
		return err
	}
	defer a.Close()

	rs, err := a.service.LastResult(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNoResult) && a.cfg.Store.Backend == "memory" {
			return fmt.Errorf("%w; memory store is empty in a new process, use store.backend=redis or fetch --out", err)
		}
		return err
	}
	return writeExport(a, rs, outPath, format)
}

func writeExport(a *app, rs *models.ResultSet, path, format string) error {
	fallback, err := export.ParseFormat(a.cfg.Export.Format)
	if err != nil {
		return err
	}
	f := export.FormatForPath(path, fallback)
	if format != "" {
		if f, err = export.ParseFormat(format); err != nil {
			return err
		}
	}

	if err := export.NewWriter(f).WriteFile(path, rs); err != nil {
		return err
	}

	a.logger.Info().
		Str("path", path).
		Str("format", string(f)).
		Int("rows", len(rs.Rows)).
		Msg("saved results")
	return nil
}

// runServe handles `serve`
func runServe(args []string) error {
	var g globalFlags
	fs := newFlagSet("serve", &g)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bootstrap(ctx, g)
	if err != nil {
		return err
	}
	defer a.Close()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := httpHandler.NewExplorerHandler(a.service, a.reference, a.logger)
	router := httpHandler.NewRouter(httpHandler.RouterConfig{
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		RequestTimeout: a.cfg.Sportsbook.Timeout + 5*time.Second,
		Gatherer:       a.registry,
	}, handler, a.logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Int("port", a.cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	a.logger.Info().Msg("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format; stdout is reserved for tables
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "sportsbook-explorer").Logger()
}
