package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/message"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
)

// DefaultInterval is the pause between two scheduled refreshes.
const DefaultInterval = 300 * time.Second

// Ingester parses the export file at path.
type Ingester interface {
	Ingest(ctx context.Context, path string) (domain.Result, domain.Status, error)
}

// AfterRefreshHook is called after each successful refresh.
type AfterRefreshHook interface {
	AfterRefresh(ctx context.Context, result domain.Result, status domain.Status) error
}

// RefreshWorker periodically ingests the export file and publishes the outcome.
type RefreshWorker struct {
	ingester Ingester
	path     string
	interval time.Duration
	store    *Store
	p        *message.Printer
	hooks    []AfterRefreshHook

	mu sync.Mutex
}

// NewRefreshWorker creates a RefreshWorker. Hooks are optional.
func NewRefreshWorker(ingester Ingester, path string, interval time.Duration, store *Store, p *message.Printer, hooks ...AfterRefreshHook) *RefreshWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if p == nil {
		p = i18n.Default()
	}
	return &RefreshWorker{
		ingester: ingester,
		path:     path,
		interval: interval,
		store:    store,
		p:        p,
		hooks:    hooks,
	}
}

// Refresh ingests the file once and publishes the result. Concurrent calls are
// serialized. On failure the previous holdings stay published alongside a
// not-ok status carrying the error.
func (w *RefreshWorker) Refresh(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	result, status, err := w.ingester.Ingest(ctx, w.path)
	if err != nil {
		prev, _ := w.store.Load()
		failed := domain.NewStatus()
		failed.Source = status.Source
		failed.Fail(w.p.Sprintf(i18n.RefreshFailed, err))

		st := State{Result: prev.Result, Status: failed}
		w.store.Publish(st)
		return st, err
	}

	st := State{Result: result, Status: status}
	w.store.Publish(st)
	w.runHooks(ctx, st)
	return st, nil
}

// runHooks calls every configured hook. A failing hook does not stop the others.
func (w *RefreshWorker) runHooks(ctx context.Context, st State) {
	for _, hook := range w.hooks {
		if err := hook.AfterRefresh(ctx, st.Result, st.Status); err != nil {
			slog.Error("RefreshWorker: hook failed", "hook", hookName(hook), "error", err)
		}
	}
}

// Run starts the refresh loop. It blocks until the context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context) {
	slog.Info("RefreshWorker: starting", "path", w.path, "interval", w.interval)

	// Refresh immediately on startup
	if _, err := w.Refresh(ctx); err != nil {
		slog.Error("RefreshWorker: initial refresh failed", "error", err)
	} else {
		slog.Info("RefreshWorker: initial refresh completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RefreshWorker: shutting down")
			return
		case <-ticker.C:
			if _, err := w.Refresh(ctx); err != nil {
				slog.Error("RefreshWorker: refresh failed", "error", err)
			}
		}
	}
}

type namedHook interface {
	Name() string
}

func hookName(h AfterRefreshHook) string {
	if n, ok := h.(namedHook); ok {
		return n.Name()
	}
	return "unnamed"
}
