package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyz/scaffold/internal/catalog"
	"github.com/toyz/scaffold/internal/config"
	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/internal/metrics"
	"github.com/toyz/scaffold/internal/utils"
	"github.com/toyz/scaffold/pkg/scaffold"
	"github.com/toyz/scaffold/pkg/scaffold/adapters"
	"github.com/toyz/scaffold/pkg/scaffold/localize"
	"github.com/toyz/scaffold/pkg/scaffold/mvc"
	"github.com/toyz/scaffold/pkg/scaffold/store"
)

// newApp builds the CRUD application with the demo catalog. Memory stores are
// seeded; a database is left as it is.
func newApp(cfg *config.Config, db store.DB, log *slog.Logger, m *metrics.Metrics) (*mvc.App, error) {
	localizer, err := localize.Parse(cfg.Language)
	if err != nil {
		return nil, scerrors.WrapConfigurationError("language", "parse", err)
	}

	app := mvc.NewApp(
		mvc.WithPrefix(cfg.RoutePrefix),
		mvc.WithLogger(log),
		mvc.WithMetrics(m),
		mvc.WithLocalizer(localizer),
	)
	if _, err := catalog.Register(app, catalog.Options{DB: db, Seed: db == nil}); err != nil {
		return nil, err
	}
	return app, nil
}

func newWebServer(adapter string, chiOpts ...adapters.ChiOption) scaffold.WebServerInterface {
	switch adapter {
	case "gin":
		return adapters.NewDefaultGinAdapter()
	case "fiber":
		return adapters.NewDefaultFiberAdapter()
	case "chi":
		return adapters.NewDefaultChiAdapter(chiOpts...)
	default:
		return adapters.NewDefaultEchoAdapter()
	}
}

func metricsHandler(m *metrics.Metrics) scaffold.HandlerFunc {
	return func(c scaffold.RequestContext) error {
		body, contentType, err := m.Exposition()
		if err != nil {
			return err
		}
		return c.Response().Blob(http.StatusOK, contentType, body)
	}
}

func healthHandler(pool *pgxpool.Pool) scaffold.HandlerFunc {
	return func(c scaffold.RequestContext) error {
		if pool != nil {
			if err := pool.Ping(c.Context()); err != nil {
				return scaffold.NewHttpError(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.Response().JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func printRoutes(d *utils.DiagnosticSystem, app *mvc.App) {
	routes := app.Routes().GetAllRoutes()
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		kind := "conventional"
		if r.Attribute {
			kind = "attribute"
		}
		rows = append(rows, []string{
			r.Name,
			app.Prefix() + "/" + strings.TrimPrefix(r.Template, "/"),
			r.ControllerName,
			r.Action,
			kind,
		})
	}
	d.Table([]string{"NAME", "TEMPLATE", "CONTROLLER", "ACTION", "KIND"}, rows)
}
