package logging

import (
	"context"
	"log/slog"

	"github.com/hiperdesk/backend/internal/core/ports"
)

// Reporter is the log-backed error sink for best-effort side effects.
// Failures routed here are recorded but never abort the operation that
// produced them.
type Reporter struct {
	logger *slog.Logger
}

var _ ports.ErrorReporter = (*Reporter)(nil)

// NewReporter creates an error reporter writing to the given logger.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logger.With("component", "error_reporter")}
}

// Report records a non-fatal error together with any identifiers carried
// by the context.
func (r *Reporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	LoggerFromContext(ctx, r.logger).Error("side effect failed", "error", err)
}
