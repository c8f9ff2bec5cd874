package framework

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaurya/recordkit/config"
	"github.com/shaurya/recordkit/framework/i18n"
	"github.com/shaurya/recordkit/orm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the services record-backed handlers share.
type App struct {
	DB         *gorm.DB
	Config     *config.Config
	Router     *Router
	Log        *zap.Logger
	Translator *i18n.Translator
	Dates      orm.DateConverter
	Plugins    []Plugin

	booted bool
}

// New creates an application. A nil cfg is loaded from ./config, falling
// back to config.Defaults when that fails. Extra middleware runs after the
// built-in request id, logging, recovery and locale middleware.
func New(cfg *config.Config, middleware ...func(http.Handler) http.Handler) *App {
	if cfg == nil {
		loaded, err := LoadConfig("config")
		if err != nil {
			d := config.Defaults()
			loaded = &d
		}
		cfg = loaded
	}

	router := NewRouter()
	app := &App{
		Config:     cfg,
		Router:     router,
		Log:        Log,
		Translator: i18n.New(cfg.I18n.DefaultLocale),
		Dates:      orm.NewDateConverter(),
	}
	router.app = app

	// chi requires middleware before the first route.
	router.Use(RequestID())
	router.Use(Logger())
	router.Use(Recovery())
	router.Use(Locale(app))
	for _, mw := range middleware {
		router.Use(mw)
	}
	router.Mux.Handle("/metrics", MetricsHandler())

	return app
}

// UseDB attaches db and registers the pre-set callbacks on it.
func (a *App) UseDB(db *gorm.DB) error {
	if err := orm.RegisterPreSetCallbacks(db); err != nil {
		return err
	}
	a.DB = db
	return nil
}

// Routes configures the application routes using a callback function.
func (a *App) Routes(fn func(r *Router)) {
	fn(a.Router)
}

// Handler returns the HTTP handler serving the app's routes.
func (a *App) Handler() http.Handler {
	return a.Router.Mux
}

// Boot initializes logging, translations and date formats from the config,
// then boots the registered plugins.
func (a *App) Boot() error {
	if err := InitLogger(a.Config.App.Env); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.Log = Log

	if err := a.Translator.Load(a.Config.I18n.LocalesDir); err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	if a.Config.I18n.Locale != "" {
		a.Translator.SetLocale(a.Config.I18n.Locale)
	}

	dates, err := orm.NewDateConverterFromConfig(a.Config.Record)
	if err != nil {
		return err
	}
	a.Dates = dates

	if err := a.bootPlugins(); err != nil {
		return err
	}

	a.booted = true
	a.Log.Info("booted",
		zap.String("app", a.Config.App.Name),
		zap.String("env", a.Config.App.Env),
		zap.Strings("locales", a.Translator.AvailableLocales()),
	)
	return nil
}

// Repo returns a repository for T configured from the app: its database,
// translator and not-found message.
func Repo[T any](a *App) *orm.Repository[T] {
	repo := orm.NewRepository[T](a.DB, a.Translator)
	if a.Config.Record.NotFoundCategory != "" {
		repo.Category = a.Config.Record.NotFoundCategory
	}
	if a.Config.Record.NotFoundMessage != "" {
		repo.Message = a.Config.Record.NotFoundMessage
	}
	return repo
}

// Run boots the app unless already booted and serves HTTP until SIGINT or
// SIGTERM.
func (a *App) Run() error {
	if !a.booted {
		if err := a.Boot(); err != nil {
			return err
		}
	}

	port := a.Config.App.Port
	if port == 0 {
		port = 3000
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("listening", zap.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-stop:
	}

	a.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.Log.Error("shutdown failed", zap.Error(err))
	}

	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
