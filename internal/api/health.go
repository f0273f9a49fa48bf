package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/samber/lo"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Live handles GET /health/live.
func Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready returns the GET /health/ready handler. Each check gets two
// seconds; the first failure, in name order, is reported.
func Ready(checks map[string]Check) http.HandlerFunc {
	names := lo.Keys(checks)
	slices.Sort(names)
	return func(w http.ResponseWriter, r *http.Request) {
		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := checks[name](ctx)
			cancel()
			if err != nil {
				slog.Warn("readiness check failed", slog.String("check", name), slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "failed": name})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
