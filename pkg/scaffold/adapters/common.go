package adapters

import (
	"context"
	"log/slog"

	"github.com/toyz/scaffold/internal/logger"
	"github.com/toyz/scaffold/pkg/scaffold"
)

// writeError renders a handler error as a JSON body unless a response was
// already written. Server errors are logged.
func writeError(ctx context.Context, rc scaffold.RequestContext, err error) error {
	status := scaffold.StatusOf(err)
	if status >= 500 {
		logger.From(ctx).Error("request failed",
			slog.String("method", rc.Method()),
			slog.String("path", rc.Path()),
			slog.String("error", err.Error()))
	}
	if rc.Response().Written() {
		return nil
	}
	return rc.Response().JSON(status, scaffold.ErrorBody(err))
}
