// Package server wires the chat server together: storage, services, the
// websocket relay, the REST API and the gRPC health endpoint. It also
// handles signals and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/httpapi"
	"github.com/dmitrijs2005/gophchat/internal/server/objectstore"
	"github.com/dmitrijs2005/gophchat/internal/server/presence"
	"github.com/dmitrijs2005/gophchat/internal/server/relay"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/dmitrijs2005/gophchat/internal/server/ws"

	gs "github.com/dmitrijs2005/gophchat/internal/server/grpc"
)

// MemoryDSN selects the in-process repositories instead of PostgreSQL.
const MemoryDSN = "memory"

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	registry    *presence.Registry
	socket      *ws.Handler
	httpServer  *httpapi.Server
	baseCancel  context.CancelFunc
}

// NewApp opens storage, runs migrations and builds every component. Sockets
// created later use ctx as their base context.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	var (
		db    *sql.DB
		rm    repomanager.RepositoryManager
		runTx dbx.Runner
	)
	if c.DatabaseDSN == MemoryDSN {
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		rm = repomanager.NewInMemoryRepositoryManager()
		runTx = dbx.DirectRunner(nil)
	} else {
		var err error
		db, err = repomanager.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		runTx = dbx.SQLRunner(db, nil)
	}

	var presigner services.Presigner
	s3, err := objectstore.NewS3Presigner(ctx, objectstore.Options{
		Region:    c.S3Region,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Bucket:    c.S3Bucket,
		Endpoint:  c.S3BaseEndpoint,
		Validity:  c.AvatarURLValidityDuration,
	})
	if err != nil {
		logger.Warn(ctx, "avatars disabled", "error", err)
	} else {
		presigner = s3
	}

	// a nil *sql.DB in memory mode is never dereferenced by the in-memory repositories
	us := services.NewUserService(db, runTx, rm, presigner, c)
	ms := services.NewMessageService(db, runTx, rm)

	baseCtx, baseCancel := context.WithCancel(context.WithoutCancel(ctx))

	registry := presence.NewRegistry()
	rl := relay.New(ms, registry, logger)

	opts := ws.DefaultOptions()
	if c.MaxMessageSize > 0 {
		opts.MaxMessageSize = c.MaxMessageSize
	}
	origins := ws.NewOriginPolicy(c.AllowedOrigins)
	socket := ws.NewHandler(baseCtx, registry, rl, origins, logger, opts)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: us,
		registry:    registry,
		socket:      socket,
		httpServer:  httpapi.New(us, ms, socket, origins, logger),
		baseCancel:  baseCancel,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx, app.config.EndpointAddrHTTP, app.config.ShutdownTimeout); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	var pinger gs.Pinger
	if app.db != nil {
		pinger = app.db
	}

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, pinger, app.config.HealthCheckInterval, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeRevokedTokens drops expired revocations once per token lifetime.
func (app *App) purgeRevokedTokens(ctx context.Context) {
	interval := app.config.AccessTokenValidityDuration
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeRevokedTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "purge revoked tokens", "error", err)
				continue
			}
			app.logger.Debug(ctx, "purged revoked tokens", "count", n)
		}
	}
}

// Run serves until ctx is cancelled or a signal arrives, then shuts every
// component down and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.purgeRevokedTokens(ctx)
	}()

	<-ctx.Done()
	app.logger.Info(context.Background(), "Shutting down...", "sessions", app.socket.Len())
	app.socket.CloseAll()
	app.baseCancel()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "close db", "error", err)
		}
	}
	app.logger.Info(context.Background(), "Stopped")
}
