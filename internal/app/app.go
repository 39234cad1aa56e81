package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/docs/internal/admin"
	"github.com/MrSnakeDoc/docs/internal/config"
	"github.com/MrSnakeDoc/docs/internal/httpserver"
	"github.com/MrSnakeDoc/docs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/docs/internal/logger"
	"github.com/MrSnakeDoc/docs/internal/store"
	"github.com/MrSnakeDoc/docs/internal/utils"
	"github.com/MrSnakeDoc/docs/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  *store.DocStore
}

// New opens the store, checks the stored document and builds the HTTP
// server. It fails when the store is unreachable or the document is corrupt
// (unless DOCS_RESET_CORRUPT_STATE is set).
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	state, err := PrepareState(ctx, st, cfg.ResetCorruptState, loggerClient)
	if err != nil {
		utils.CloseLogged(st, "store", loggerClient)
		return nil, fmt.Errorf("failed to load stored state: %w", err)
	}
	loggerClient.Info("state loaded",
		logger.Int("pages", len(state.Pages)),
		logger.Int("categories", len(state.Categories)))

	// Dependencies passed to routes (extend as needed).
	httpLog := loggerClient.With(logger.Component("http"))
	d := deps.Deps{
		Logger:          httpLog,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		Store:           st,
		Backend:         st.BackendName(),
		Pinger:          st,
		EditMode:        cfg.EditMode(),
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		AdminRateBurst:  cfg.AdminRateBurst,
		AdminRatePerMin: cfg.AdminRatePerMin,
	}
	if d.EditMode {
		d.Admin = admin.NewService(st, loggerClient.With(logger.Component("admin")))
		loggerClient.Warn("edit mode enabled, admin API is exposed")
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, httpLog, d),
		store:  st,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting docs %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("docs %s", version.String())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer utils.CloseLogged(a.store, "store", a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ docs stopped cleanly")
	return nil
}
