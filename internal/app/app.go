// Package app wires the relay components together and manages their
// lifecycle: configuration, the logging sink, the event registry, the
// metrics observer, the Lua runtime and the config watcher.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/relay/internal/config"
	"github.com/dshills/relay/internal/event"
	"github.com/dshills/relay/internal/event/metrics"
	"github.com/dshills/relay/internal/logger"
	"github.com/dshills/relay/internal/plugin/lua"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "relay"

// Application is the central coordinator for all relay components.
type Application struct {
	mu sync.Mutex

	config   *config.Config
	sink     *logger.Sink
	metrics  *metrics.PrometheusMetrics
	registry *event.Registry
	lua      *lua.State
	watcher  *config.Watcher
	server   *http.Server
	addr     string

	running  atomic.Bool
	shutdown sync.Once

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// ScriptPath is the Lua script to run.
	ScriptPath string

	// Dump writes the registration table to the log after the script ran.
	Dump bool

	// MetricsAddr serves Prometheus metrics on this address when set.
	MetricsAddr string

	// Watch reloads the logging configuration when the file changes.
	Watch bool

	// ScriptTimeout bounds the script run. Zero uses the Lua default.
	ScriptTimeout time.Duration
}

// Serving returns true if Run should keep going after the script finished.
func (o Options) Serving() bool {
	return o.MetricsAddr != "" || o.Watch
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}

	if err := app.bootstrap(); err != nil {
		_ = app.Shutdown()
		return nil, err
	}

	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	var err error

	// 1. Configuration
	app.config, err = config.Load(app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}

	// 2. Logging sink
	app.sink, err = logger.New(app.config.Logging)
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}

	// 3. Metrics observer
	app.metrics = metrics.NewPrometheusMetrics(MetricsNamespace, app.sink.Logger())

	// 4. Event registry
	app.registry = event.NewRegistry(
		event.WithSink(app.sink),
		event.WithObserver(app.metrics),
	)

	// 5. Lua runtime with the relay module
	var stateOpts []lua.StateOption
	if app.opts.ScriptTimeout > 0 {
		stateOpts = append(stateOpts, lua.WithExecutionTimeout(app.opts.ScriptTimeout))
	}
	app.lua, err = lua.NewState(stateOpts...)
	if err != nil {
		return &InitError{Component: "lua", Err: err}
	}
	if err := app.lua.Load(lua.NewModule(app.registry)); err != nil {
		return &InitError{Component: "lua", Err: err}
	}

	// 6. Config watcher
	if app.opts.Watch {
		if app.opts.ConfigPath == "" {
			return &InitError{Component: "watcher", Err: ErrNoConfigPath}
		}
		app.watcher, err = config.NewWatcher(app.opts.ConfigPath, app.reload)
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
	}

	return nil
}

// reload applies a reloaded logging configuration to the sink.
func (app *Application) reload(cfg *config.Config, err error) {
	if err != nil {
		app.sink.Logger().Error("config reload failed",
			zap.String("path", app.opts.ConfigPath),
			zap.Error(err))
		return
	}

	app.mu.Lock()
	app.config = cfg
	app.mu.Unlock()

	app.sink.Apply(cfg.Logging)
	app.sink.Logger().Info("config reloaded",
		zap.String("path", app.opts.ConfigPath),
		zap.Bool("logging_enabled", cfg.Logging.Enabled))
}

// Run runs the script, then dumps the registry when asked. When serving
// metrics or watching the config, Run blocks until ctx is done.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var ln net.Listener
	if app.opts.MetricsAddr != "" {
		var err error
		if ln, err = app.listen(); err != nil {
			return err
		}
	}

	if app.opts.ScriptPath != "" {
		if err := app.lua.DoFile(ctx, app.opts.ScriptPath); err != nil {
			if ln != nil {
				ln.Close()
			}
			return &ScriptError{Path: app.opts.ScriptPath, Err: err}
		}
	}

	if app.opts.Dump {
		app.registry.DumpState(true)
	}

	if !app.opts.Serving() {
		return nil
	}
	if ln == nil {
		<-ctx.Done()
		return nil
	}

	return app.serve(ctx, ln)
}

// listen opens the metrics listener and builds the server.
func (app *Application) listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", app.opts.MetricsAddr)
	if err != nil {
		return nil, &InitError{Component: "metrics", Err: err}
	}

	app.mu.Lock()
	app.server = &http.Server{
		Handler:           app.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.addr = ln.Addr().String()
	app.mu.Unlock()

	return ln, nil
}

// router returns the HTTP routes of the metrics endpoint.
func (app *Application) router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}

// serve serves metrics on ln until ctx is done, then shuts the server down.
func (app *Application) serve(ctx context.Context, ln net.Listener) error {
	app.mu.Lock()
	srv := app.server
	app.mu.Unlock()

	errGrp, shutdownCtx := errgroup.WithContext(ctx)

	errGrp.Go(func() error {
		app.sink.Logger().Info("serving metrics", zap.String("addr", ln.Addr().String()))

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving metrics: %w", err)
		}
		return nil
	})

	errGrp.Go(func() error {
		<-shutdownCtx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down metrics server: %w", err)
		}
		return nil
	})

	return errGrp.Wait()
}

// Shutdown releases all components in reverse initialization order and
// returns every error met on the way. It is safe to call more than once;
// later calls return nil.
func (app *Application) Shutdown() error {
	var err error

	app.shutdown.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.mu.Lock()
		srv := app.server
		app.mu.Unlock()

		// 1. Stop serving metrics
		if srv != nil {
			err = multierr.Append(err, srv.Shutdown(ctx))
		}

		// 2. Stop watching config
		if app.watcher != nil {
			err = multierr.Append(err, app.watcher.Close())
		}

		// 3. Close the Lua runtime
		if app.lua != nil {
			err = multierr.Append(err, app.lua.Close())
		}

		// 4. Flush logs
		if app.sink != nil {
			err = multierr.Append(err, syncErr(app.sink.Sync()))
		}

		app.running.Store(false)
	})

	return err
}

// syncErr drops the errors zap returns when syncing a terminal.
func syncErr(err error) error {
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// IsRunning returns true if Run has been called and Shutdown has not.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// MetricsAddr returns the address the metrics endpoint listens on, or ""
// before it started.
func (app *Application) MetricsAddr() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.addr
}

// Config returns the current configuration.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.config
}

// Registry returns the event registry.
func (app *Application) Registry() *event.Registry {
	return app.registry
}

// Sink returns the logging sink.
func (app *Application) Sink() *logger.Sink {
	return app.sink
}

// Lua returns the Lua runtime.
func (app *Application) Lua() *lua.State {
	return app.lua
}

// Metrics returns the Prometheus observer.
func (app *Application) Metrics() *metrics.PrometheusMetrics {
	return app.metrics
}
