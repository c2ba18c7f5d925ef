package registry

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/asaidimu/go-bitstream/core/resolver"
	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner is the part of a connection or transaction the reporter needs.
type Runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Reporter registers the running application in the webapp table and lists the
// applications that are still alive.
type Reporter struct {
	runner  Runner
	dialect resolver.Dialect
	cfg     Config
	started time.Time
	logger  *zap.Logger

	mu sync.Mutex
	id string // row id while registered

	bus           *events.TypedEventBus[Event]
	subscriptions map[string]func()
	subMu         sync.Mutex
}

// NewReporter creates a reporter for the application described by cfg. The start time
// recorded on registration is the time the reporter was created.
func NewReporter(runner Runner, dialect resolver.Dialect, cfg Config, logger *zap.Logger) (*Reporter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	return &Reporter{
		runner:        runner,
		dialect:       dialect,
		cfg:           cfg,
		started:       time.Now().UTC(),
		logger:        logger,
		bus:           bus,
		subscriptions: make(map[string]func()),
	}, nil
}

// Self describes the application this reporter registers.
func (r *Reporter) Self() Webapp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.self()
}

func (r *Reporter) self() Webapp {
	return Webapp{
		ID:      r.id,
		Kind:    r.cfg.Kind,
		URL:     r.cfg.URL,
		Started: r.started,
		IsUI:    r.cfg.IsUI,
	}
}

// Register records that the application is running. Failures are logged, not returned:
// the registry is best-effort bookkeeping.
func (r *Reporter) Register(ctx context.Context) {
	if app, ok := r.register(ctx); ok {
		r.emit(EventRegistered, app)
	}
}

func (r *Reporter) register(ctx context.Context) (Webapp, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.id != "" {
		r.logger.Debug("Application already registered", zap.String("webapp_id", r.id))
		return Webapp{}, false
	}

	id := uuid.New().String()
	isUI := 0
	if r.cfg.IsUI {
		isUI = 1
	}
	query := fmt.Sprintf("INSERT INTO webapp (webapp_id, AppName, URL, Started, isUI) VALUES (%s, %s, %s, %s, %s)",
		r.dialect.Placeholder(1), r.dialect.Placeholder(2), r.dialect.Placeholder(3), r.dialect.Placeholder(4), r.dialect.Placeholder(5))
	if _, err := r.runner.ExecContext(ctx, query, id, r.cfg.Kind, r.cfg.URL, r.started, isUI); err != nil {
		r.logger.Error("Failed to record startup in webapp table", zap.String("kind", r.cfg.Kind), zap.Error(err))
		return Webapp{}, false
	}

	r.id = id
	r.logger.Info("Registered running application", zap.String("kind", r.cfg.Kind), zap.String("url", r.cfg.URL))
	return r.self(), true
}

// Deregister records that the application is no longer running. Failures are logged,
// not returned.
func (r *Reporter) Deregister(ctx context.Context) {
	if app, ok := r.deregister(ctx); ok {
		r.emit(EventDeregistered, app)
	}
}

func (r *Reporter) deregister(ctx context.Context) (Webapp, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.id == "" {
		r.logger.Debug("Application is not registered, nothing to remove")
		return Webapp{}, false
	}

	app := r.self()
	if err := r.delete(ctx, r.id); err != nil {
		r.logger.Error("Failed to record shutdown in webapp table", zap.String("kind", r.cfg.Kind), zap.Error(err))
		return Webapp{}, false
	}

	r.id = ""
	r.logger.Info("Deregistered application", zap.String("kind", r.cfg.Kind), zap.String("url", r.cfg.URL))
	return app, true
}

// ListRunning returns the registered applications that answer a HEAD request on their
// URL with 200 OK. Rows of every other application are deleted. A failure on one row
// does not stop the others from being checked.
func (r *Reporter) ListRunning(ctx context.Context) []Webapp {
	registered, err := r.readAll(ctx)
	if err != nil {
		r.logger.Error("Unable to list running applications", zap.Error(err))
		return nil
	}

	running := make([]Webapp, 0, len(registered))
	for _, app := range registered {
		if r.probe(ctx, app.URL) {
			running = append(running, app)
			continue
		}

		if err := r.delete(ctx, app.ID); err != nil {
			r.logger.Error("Failed to prune stale application", zap.String("webapp_id", app.ID), zap.Error(err))
			continue
		}
		r.forget(app.ID)
		r.logger.Info("Pruned stale application", zap.String("kind", app.Kind), zap.String("url", app.URL))
		r.emit(EventPruned, app)
	}
	return running
}

// readAll loads every webapp row. The cursor is closed before any row is probed or
// deleted.
func (r *Reporter) readAll(ctx context.Context) ([]Webapp, error) {
	rows, err := r.runner.QueryContext(ctx, "SELECT webapp_id, AppName, URL, Started, isUI FROM webapp")
	if err != nil {
		return nil, fmt.Errorf("failed to query webapp table: %w", err)
	}
	defer rows.Close()

	var apps []Webapp
	for rows.Next() {
		var (
			app     Webapp
			started sql.NullTime
			isUI    sql.NullInt64
		)
		if err := rows.Scan(&app.ID, &app.Kind, &app.URL, &started, &isUI); err != nil {
			return nil, fmt.Errorf("failed to scan webapp row: %w", err)
		}
		app.Started = started.Time
		app.IsUI = isUI.Int64 != 0
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning webapp rows: %w", err)
	}
	return apps, nil
}

// forget clears the registration when id is this application's own row, so a later
// Register inserts it again.
func (r *Reporter) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == id {
		r.id = ""
	}
}

func (r *Reporter) delete(ctx context.Context, id string) error {
	query := "DELETE FROM webapp WHERE webapp_id = " + r.dialect.Placeholder(1)
	_, err := r.runner.ExecContext(ctx, query, id)
	return err
}

// probe reports whether url answers a HEAD request with exactly 200 OK. The response
// is always drained and closed.
func (r *Reporter) probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		r.logger.Warn("Invalid application URL", zap.String("url", url), zap.Error(err))
		return false
	}
	resp, err := r.cfg.Client.Do(req)
	if err != nil {
		r.logger.Debug("Application did not answer liveness probe", zap.String("url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}
