package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetd/config"
	"fleetd/internal/commands"
	"fleetd/internal/db"
	"fleetd/internal/health"
	"fleetd/internal/logs"
	"fleetd/internal/middleware"
	"fleetd/internal/registry"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	client   *mongo.Client
	database *mongo.Database
	ctx      context.Context
	cancel   context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	client, database, err := db.Open(a.cfg.Mongo.URI, a.cfg.Mongo.Database, a.cfg.Mongo.ConnectTimeout)
	if err != nil {
		logs.Logger.Fatalf("db open failed: %v", err)
	}
	a.client = client
	a.database = database

	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	health.RegisterRoutesWithDB(a.Router, a.client)

	cmdRepo := commands.NewRepo(a.database)
	cmdSvc := commands.NewService(cmdRepo)
	commands.NewHTTP(cmdSvc).RegisterRoutes(a.Router)

	regRepo := registry.NewRepo(a.database)
	regSvc := registry.NewService(regRepo, cmdSvc)
	registry.NewHTTP(regSvc).RegisterRoutes(a.Router)

	_ = a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		logs.Logger.Debugf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	// any-origin CORS per the device/operator API contract
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Request-Id"}),
	)

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      cors(a.Router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	if err := db.Close(a.client); err != nil {
		logs.Logger.Warnf("mongo disconnect: %v", err)
	}
	return nil
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
