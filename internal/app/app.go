package app

import (
	"context"
	"net/http"

	"relief-portal-go/internal/cache"
	"relief-portal-go/internal/config"
	"relief-portal-go/internal/db"
	"relief-portal-go/internal/domain/relief"
	"relief-portal-go/internal/domain/user"
	"relief-portal-go/internal/portal"
	"relief-portal-go/internal/remote"
	"relief-portal-go/internal/remote/postgrest"
	"relief-portal-go/internal/repository/postgres"
	"relief-portal-go/internal/session"
	"relief-portal-go/internal/transport/httpserver"
	"relief-portal-go/internal/transport/httpserver/handler"
	"relief-portal-go/pkg/logger"

	"gorm.io/gorm"
)

type App struct {
	cfg         config.Config
	log         logger.Logger
	httpServer  *http.Server
	db          *gorm.DB
	cache       *cache.Cache
	sessions    *session.Manager
	portal      *portal.Portal
	unsubscribe func()
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	queryCache := cache.New(cache.Options{StaleTime: cfg.Cache.StaleTime}, log)
	unsubscribe := queryCache.SubscribeAll(func(event cache.Event) {
		log.Debug("cache: event", "kind", event.Kind.String(), "key", event.Entry.Key.String(), "status", event.Entry.Status.String())
	})

	supabase := postgrest.Options{
		BaseURL:   cfg.Supabase.URL,
		APIKey:    cfg.Supabase.PublishableKey,
		Timeout:   cfg.Supabase.Timeout,
		RateLimit: cfg.Supabase.RateLimit,
		RateBurst: cfg.Supabase.RateBurst,
	}

	log.Info("app: initializing session manager")
	sessions := session.NewManager(postgrest.NewAuth(supabase, log), queryCache, log)

	application := &App{
		cfg:         cfg,
		log:         log,
		cache:       queryCache,
		sessions:    sessions,
		unsubscribe: unsubscribe,
	}

	var store remote.Store
	switch cfg.Backend {
	case config.BackendPostgres:
		log.Info("app: initializing database")
		dbConn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			unsubscribe()
			return nil, err
		}
		application.db = dbConn

		if err := db.Migrate(dbConn, log); err != nil {
			_ = application.Close()
			return nil, err
		}
		store = postgres.NewStore(dbConn)
	default:
		supabase.Tokens = sessions
		store = postgrest.NewClient(supabase, log)
	}

	reliefService := relief.NewService(store, remote.NewPublicStorage(cfg.Supabase.URL), cfg.Supabase.StorageBucket)
	application.portal = portal.New(queryCache, sessions, reliefService, user.NewService(store), log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handler.New(application.portal, log), log)

	log.Info("app: initializing http server")
	application.httpServer = httpserver.New(cfg, router)

	return application, nil
}

// Start resolves the initial session from the configured token. Readers of
// user data block until it finishes.
func (a *App) Start(ctx context.Context) {
	go func() {
		if err := a.sessions.Start(ctx, a.cfg.Supabase.SessionToken); err != nil {
			a.log.Error("app: session start failed", "err", err)
			return
		}
		a.log.Info("app: session resolved", "state", a.sessions.State().String())
	}()
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Portal() *portal.Portal {
	return a.portal
}

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
