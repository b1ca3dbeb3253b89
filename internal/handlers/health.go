package handlers

import (
	"context"
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/passguard/pkg/http"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthResponse struct {
	pkghttp.Result
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports service health. A nil checker means no database is in use.
func Health(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{Result: pkghttp.Success(), Status: "healthy", Database: "none"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Database: "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{Result: pkghttp.Success(), Status: "healthy", Database: "up"})
	}
}
