package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/badmin-c/pp-portfolio/internal/snapshot"
	"github.com/badmin-c/pp-portfolio/internal/worker"
)

// Options configures the HTTP server.
type Options struct {
	Port           string
	AdminAPIKey    string
	IncludeDetails bool
}

// NewServer creates an HTTP server with all routes configured.
// Snapshot routes are only mounted when snapshots is non-nil.
func NewServer(opts Options, store *worker.Store, refresher Refresher, snapshots *snapshot.Service) *http.Server {
	return &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      NewMux(opts, store, refresher, snapshots),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux builds the route table.
func NewMux(opts Options, store *worker.Store, refresher Refresher, snapshots *snapshot.Service) *http.ServeMux {
	handler := NewHandler(store, refresher, opts.IncludeDetails)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/holdings", handler.GetHoldings)
	mux.HandleFunc("GET /api/v1/holdings/{key}", handler.GetHolding)
	mux.HandleFunc("GET /api/v1/status", handler.GetStatus)

	refreshHandler := http.HandlerFunc(handler.Refresh)
	if opts.AdminAPIKey != "" {
		mux.Handle("POST /api/v1/refresh", requireAuth(opts.AdminAPIKey, refreshHandler))
	} else {
		mux.Handle("POST /api/v1/refresh", refreshHandler)
	}

	if snapshots != nil {
		snapHandler := NewSnapshotHandler(snapshots)
		mux.HandleFunc("GET /api/v1/snapshots/latest", snapHandler.GetLatestSnapshot)
		mux.HandleFunc("GET /api/v1/snapshots/{date}", snapHandler.GetSnapshotByDate)
		mux.HandleFunc("GET /api/v1/snapshots", snapHandler.ListSnapshots)
	}

	return mux
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
