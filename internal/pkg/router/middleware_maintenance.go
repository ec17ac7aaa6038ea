package router

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/shandysiswandi/skillbridge/internal/pkg/config"
)

// middlewareMaintenance answers 503 while app.maintenance.enabled is set or
// the matched route is listed in app.maintenance.endpoints. Both keys are
// read per request so a watched config file can flip them at runtime.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !underMaintenance(cfg, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			if s := cfg.GetInt("app.maintenance.retry_after_seconds"); s > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(s))
			}
			writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
		})
	}
}

func underMaintenance(cfg config.Config, route string) bool {
	if cfg.GetBool("app.maintenance.enabled") {
		return true
	}
	return slices.ContainsFunc(cfg.GetArray("app.maintenance.endpoints"), func(e string) bool {
		return strings.TrimSpace(e) == route
	})
}
