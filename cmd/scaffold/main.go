package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/toyz/scaffold/internal/catalog"
	"github.com/toyz/scaffold/internal/config"
	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/logger"
	"github.com/toyz/scaffold/internal/metrics"
	"github.com/toyz/scaffold/internal/utils"
	"github.com/toyz/scaffold/pkg/scaffold"
	"github.com/toyz/scaffold/pkg/scaffold/adapters"
	"github.com/toyz/scaffold/pkg/scaffold/store"
)

type options struct {
	configPath string
	adapter    string
	routes     bool
	verbose    bool
	quiet      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("scaffold", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file (environment variables override it)")
	fs.StringVar(&opts.adapter, "adapter", "", "Web framework to serve with: echo, gin, fiber or chi")
	fs.BoolVar(&opts.routes, "routes", false, "Print the CRUD route table and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&opts.quiet, "quiet", false, "Only show errors")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: scaffold [options]\n\n")
		fmt.Fprintf(stderr, "Scaffold CRUD Server\n")
		fmt.Fprintf(stderr, "Serves list, details, create, edit and delete pages for the demo catalog.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  scaffold                          # Serve with settings from the environment\n")
		fmt.Fprintf(stderr, "  scaffold -config scaffold.yml     # Serve with settings from a file\n")
		fmt.Fprintf(stderr, "  scaffold -adapter gin -verbose    # Serve with gin and detailed output\n")
		fmt.Fprintf(stderr, "  scaffold -routes                  # Print the route table\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments: %s\n\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments")
	}
	return opts, nil
}

func newDiagnostics(opts *options, stdout, stderr io.Writer) *utils.DiagnosticSystem {
	var d *utils.DiagnosticSystem
	switch {
	case opts.quiet:
		d = utils.NewQuietDiagnostics()
	case opts.verbose:
		d = utils.NewVerboseDiagnostics()
	default:
		d = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	return d.SetOutput(stdout, stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	diagnostics := newDiagnostics(opts, stdout, stderr)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		diagnostics.Error("%v", err)
		return 1
	}
	if opts.adapter != "" {
		cfg.Adapter = opts.adapter
		if err := cfg.Validate(); err != nil {
			diagnostics.Error("%v", err)
			return 1
		}
	}

	if opts.routes {
		app, err := newApp(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
		if err != nil {
			diagnostics.Error("%v", err)
			return 1
		}
		printRoutes(diagnostics, app)
		return 0
	}

	log := logger.Init(stderr, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, diagnostics, log); err != nil {
		diagnostics.Error("%v", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, diagnostics *utils.DiagnosticSystem, log *slog.Logger) error {
	diagnostics.Header("CRUD Server")

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return scerrors.DependencyError("database", "postgres", err.Error())
		}
		defer pool.Close()

		if err := catalog.Migrate(ctx, pool); err != nil {
			return err
		}
		diagnostics.Item("Connected to PostgreSQL")
		diagnostics.Verbose("Applied %d schema statements", len(catalog.Schema()))
	} else {
		diagnostics.Item("Using in-memory stores with sample data")
	}

	var chiOpts []adapters.ChiOption
	if cfg.Tracing {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("tracer shutdown failed", slog.Any("error", err))
			}
		}()
		chiOpts = append(chiOpts, adapters.WithTracing("scaffold"))
		if cfg.Adapter != "chi" {
			diagnostics.Warn("HTTP tracing is only wired for the chi adapter")
		}
	}

	m := metrics.New()
	var db store.DB
	if pool != nil {
		db = pool
	}
	app, err := newApp(cfg, db, log, m)
	if err != nil {
		return err
	}

	web := newWebServer(cfg.Adapter, chiOpts...)
	web.RegisterRoute(http.MethodGet, scaffold.NewPath(cfg.MetricsPath), metricsHandler(m))
	web.RegisterRoute(http.MethodGet, scaffold.NewPath("/healthz"), healthHandler(pool))
	app.Mount(web)

	models := app.Registry().Names()
	diagnostics.Item("Registered %d CRUD types", len(models))
	if diagnostics.Level() >= utils.DiagnosticVerbose {
		diagnostics.Section("CRUD types")
		diagnostics.Indent()
		for _, name := range models {
			diagnostics.List("%s (%d routes)", name, len(app.Routes().GetRoutesByModel(name)))
		}
		diagnostics.Unindent()
	}
	diagnostics.Summary("Ready", map[string]interface{}{
		"Adapter": web.Name(),
		"Address": cfg.Server().Addr(),
		"Prefix":  app.Prefix(),
		"Routes":  len(app.Routes().GetAllRoutes()),
	})

	diagnostics.Success("Serving %s on %s", web.Name(), cfg.Server().Addr())
	return scaffold.NewServer(web, cfg.Server(), log).Run(ctx)
}
