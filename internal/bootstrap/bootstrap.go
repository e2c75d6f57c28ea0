package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	accountservice "inventory-server-go/internal/domain/account/service"
	domainauth "inventory-server-go/internal/domain/auth"
	authstore "inventory-server-go/internal/domain/auth/store"
	"inventory-server-go/internal/domain/eventbus"
	eventinfra "inventory-server-go/internal/domain/eventbus/infrastructure"
	eventrepo "inventory-server-go/internal/domain/eventbus/repository"
	itemservice "inventory-server-go/internal/domain/item/service"
	platformconfig "inventory-server-go/internal/platform/config"
	platformerrors "inventory-server-go/internal/platform/errors"
	platformlogging "inventory-server-go/internal/platform/logging"
	platformobservability "inventory-server-go/internal/platform/observability"
	platformstorage "inventory-server-go/internal/platform/storage"
	httptransport "inventory-server-go/internal/transport/http"
	httpaccounts "inventory-server-go/internal/transport/http/accounts"
	"inventory-server-go/internal/transport/http/envelope"
	httpitems "inventory-server-go/internal/transport/http/items"
	httpsystem "inventory-server-go/internal/transport/http/system"
	"inventory-server-go/internal/transport/ws"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8" />
		<title>Inventory API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config                *platformconfig.Config
	configPath            string
	logProvider           *platformlogging.Logger
	slogger               *slog.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	eventRepo             eventrepo.EventRepository
	authManager           *domainauth.Manager
	items                 *itemservice.ItemService
	accounts              *accountservice.AccountService
}

// Run drives the whole server lifecycle: configuration, dependency wiring,
// the HTTP listener and graceful shutdown on SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logProvider
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}

	authManager := state.authManager
	if authManager == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"auth manager not initialised",
		)
	}
	if state.items == nil || state.accounts == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"domain services not initialised",
		)
	}

	logBootstrapGraph(steps, logger)

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("BOOT", "observability did not shut down cleanly: %v", err)
			}
		}()
	}

	defer func() {
		if err := platformstorage.CloseDatabase(); err != nil {
			logger.WarnTag("BOOT", "database did not close cleanly: %v", err)
		}
	}()

	defer func() {
		if err := authManager.Close(); err != nil {
			logger.ErrorTag("AUTH", "auth manager did not close cleanly: %v", err)
		}
	}()

	// Stops the async bus workers after in-flight audit writes drain.
	defer eventbus.Shutdown()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if err := startServices(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "server stopped")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "init sequence (%d steps)", len(steps))
	for _, step := range steps {
		if len(step.DependsOn) > 0 {
			logger.InfoTag("BOOT", "  %s: %s (after %s)", step.ID, step.Title, strings.Join(step.DependsOn, ", "))
			continue
		}
		logger.InfoTag("BOOT", "  %s: %s", step.ID, step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph declares the startup steps in execution order. DependsOn entries
// are validated by executeInitSteps, so reordering a step below its
// dependency fails fast instead of producing a half-wired server.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load-runtime",
			Title:   "Load runtime configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load-runtime"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "storage:open-database",
			Title:     "Open database and run migrations",
			DependsOn: []string{"config:load-runtime", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   openDatabaseStep,
		},
		{
			ID:        "events:register-handlers",
			Title:     "Register audit event handlers",
			DependsOn: []string{"storage:open-database", "logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   registerEventHandlersStep,
		},
		{
			ID:        "auth:init-manager",
			Title:     "Initialise auth manager",
			DependsOn: []string{"storage:open-database", "observability:setup-hooks"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initAuthStep,
		},
		{
			ID:        "domain:init-services",
			Title:     "Initialise domain services",
			DependsOn: []string{"storage:open-database"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initDomainServicesStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logProvider, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}

	state.logProvider = logProvider
	state.slogger = logProvider.Slog()

	source := state.configPath
	if source == "" {
		source = "defaults+env"
	}
	logProvider.InfoTag("BOOT", "logging ready [%s] config from %s", state.config.Log.Level, source)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logProvider == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}

	shutdown, err := platformobservability.Setup(ctx, cfg, state.slogger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown
	return nil
}

func openDatabaseStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindStorage,
			"storage:open-database",
			"config not loaded",
		)
	}

	if err := platformstorage.InitDatabase(state.config.Database); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:open-database", "failed to initialize database", err)
	}
	return nil
}

func registerEventHandlersStep(_ context.Context, state *appState) error {
	if state == nil || state.logProvider == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"events:register-handlers",
			"logger not initialised",
		)
	}

	repo := eventinfra.NewEventRepository(platformstorage.GetDB())
	if err := eventbus.SetupEventHandlers(state.logProvider, repo); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "events:register-handlers", "failed to register event handlers", err)
	}
	state.eventRepo = repo
	return nil
}

func initAuthStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logProvider == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"auth:init-manager",
			"missing config/logger",
		)
	}

	authManager, err := initAuthManager(state.config, state.logProvider)
	if err != nil {
		return err
	}
	state.authManager = authManager
	return nil
}

func initDomainServicesStep(_ context.Context, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"domain:init-services",
			"nil bootstrap state",
		)
	}

	db := platformstorage.GetDB()
	state.items = itemservice.NewItemService(platformstorage.NewItemRepository(db))
	state.accounts = accountservice.NewAccountService(platformstorage.NewAccountRepository(db))
	return nil
}

func initAuthManager(config *platformconfig.Config, logger *platformlogging.Logger) (*domainauth.Manager, error) {
	issuer, err := domainauth.NewTokenIssuer(config.Auth.Secret)
	if err != nil {
		return nil, err
	}
	issuer.WithAccessTTL(config.Auth.AccessTTL).WithRefreshTTL(config.Auth.RefreshTTL)

	storeType := strings.ToLower(strings.TrimSpace(config.Auth.Store.Type))
	storeCfg := authstore.Config{
		Driver: storeType,
		TTL:    config.Auth.Store.Expiry,
	}
	if storeCfg.TTL <= 0 {
		// Session records must outlive the refresh tokens they back.
		storeCfg.TTL = issuer.RefreshTTL()
	}

	cleanupInterval := config.Auth.Store.Cleanup
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}

	switch storeCfg.Driver {
	case authstore.DriverMemory:
		if config.Auth.Store.Memory.Cleanup > 0 {
			cleanupInterval = config.Auth.Store.Memory.Cleanup
		}
		storeCfg.Memory = &authstore.MemoryConfig{
			GCInterval: cleanupInterval,
		}
	case authstore.DriverSQLite, "", "database":
		storeCfg.Driver = authstore.DriverSQLite
		storeCfg.SQLite = &authstore.SQLiteConfig{
			DSN: config.Auth.Store.SQLite.DSN,
		}
	case authstore.DriverRedis:
		storeCfg.Redis = &authstore.RedisConfig{
			Addr:     config.Auth.Store.Redis.Addr,
			Username: config.Auth.Store.Redis.Username,
			Password: config.Auth.Store.Redis.Password,
			DB:       config.Auth.Store.Redis.DB,
			Prefix:   config.Auth.Store.Redis.Prefix,
		}
		if storeCfg.Redis.Addr == "" {
			return nil, platformerrors.New(
				platformerrors.KindBootstrap,
				"auth:init-manager",
				"redis store addr is required",
			)
		}
	default:
		logger.WarnTag("AUTH", "unsupported session store type %q, falling back to memory", storeType)
		storeCfg.Driver = authstore.DriverMemory
		storeCfg.Memory = &authstore.MemoryConfig{GCInterval: cleanupInterval}
	}

	// Only the sqlite driver needs the shared database handle.
	storeDeps := authstore.Dependencies{}
	if storeCfg.Driver == authstore.DriverSQLite {
		storeDeps.SQLiteDB = platformstorage.GetDB()
	}
	sessionStore, err := authstore.New(storeCfg, storeDeps)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "auth:init-manager", "failed to create session store", err)
	}

	authManager, err := domainauth.NewManager(domainauth.Options{
		Store:           sessionStore,
		Logger:          logger,
		Issuer:          issuer,
		CleanupInterval: cleanupInterval,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "auth:init-manager", "failed to create auth manager", err)
	}

	return authManager, nil
}

func startServices(state *appState, g *errgroup.Group, groupCtx context.Context) error {
	if _, err := startHTTPServer(state, g, groupCtx); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logProvider

	env, err := envelope.NewBuilder(config.CORS)
	if err != nil {
		return nil, err
	}

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config:         config,
		Logger:         logger,
		Envelope:       env,
		AuthMiddleware: httptransport.NewAuthMiddleware(state.authManager, env, logger),
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	itemsService, err := httpitems.NewService(config, logger, env, state.items)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "items:new-service", "failed to create items service", err)
	}

	accountsService, err := httpaccounts.NewService(config, logger, env, state.accounts, state.authManager)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "accounts:new-service", "failed to create accounts service", err)
	}

	systemService, err := httpsystem.NewService(config, logger, env, state.items, state.accounts, state.authManager, state.eventRepo)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "system:new-service", "failed to create system service", err)
	}

	feed, err := ws.NewFeed(config, logger, ws.NewHub(logger))
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "feed:new-service", "failed to create event feed", err)
	}

	if err := itemsService.Register(groupCtx, httpRouter.Secured); err != nil {
		return nil, err
	}
	if err := accountsService.Register(groupCtx, httpRouter.API, httpRouter.Secured); err != nil {
		return nil, err
	}
	if err := systemService.Register(groupCtx, httpRouter.Secured); err != nil {
		return nil, err
	}
	if err := feed.Register(groupCtx, httpRouter.Secured); err != nil {
		return nil, err
	}

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "failed to render openapi document: %v", err)
			envelope.Write(c, env.FailureStatus(http.StatusInternalServerError, "internal_error", "failed to render openapi document"))
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	router.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Server.IP, config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on http://%s:%d", config.Server.IP, config.Server.Port)
		logger.InfoTag("HTTP", "api docs at http://%s:%d/docs", config.Server.IP, config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down cleanly")
			}
			feed.Close()
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		// A service died before any signal arrived.
		if err != nil {
			logger.ErrorTag("BOOT", "service failed: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.InfoTag("BOOT", "shutdown signal received (%v), draining services", context.Cause(ctx))
	cancel()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("BOOT", "services did not stop within 15s, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}

// loadConfigAndLogger runs only the config and logging steps. Tests use it
// to obtain a wired pair without opening the database.
func loadConfigAndLogger() (*platformconfig.Config, *platformlogging.Logger, error) {
	state := &appState{}

	steps := []initStep{
		{
			ID:      "config:load-runtime",
			Title:   "Load runtime configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load-runtime"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
	}

	if err := executeInitSteps(context.Background(), steps, state); err != nil {
		return nil, nil, err
	}

	return state.config, state.logProvider, nil
}
