// Package server wires the taskhub server together: storage, token and
// account services, the real-time channels, the gRPC API and the idle
// session sweeper. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/config"
	"github.com/dmitrijs2005/taskhub/internal/server/mail"
	"github.com/dmitrijs2005/taskhub/internal/server/realtime"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskhub/internal/server/services"

	gs "github.com/dmitrijs2005/taskhub/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts *services.AccountService
	sessions *services.SessionService
	inbox    *services.InboxService
	sweeper  *services.IdleSweeper
	router   *realtime.Router
	realtime *realtime.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer := services.NewTokenIssuer(rm)
	hasher := services.NewBcryptHasher()
	mailer := mail.FromConfig(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.MailFrom, logger)

	sessions := services.NewSessionService(db, rm, issuer, hasher, logger)
	accounts := services.NewAccountService(db, rm, issuer, hasher, mailer, c, logger)
	inbox := services.NewInboxService(db, rm, logger)
	sweeper := services.NewIdleSweeper(db, rm, c.SessionIdleTimeout, c.IdleSweepInterval, logger)

	tokens := rm.Tokens(db)
	stores := realtime.Stores{
		Users:    rm.Users(db),
		Projects: rm.Projects(db),
		Messages: rm.Messages(db),
		Tokens:   tokens,
	}
	router := realtime.NewRouter(tokens, realtime.NewChannels(stores), logger)
	gate := realtime.NewGate(tokens, sessions)
	sessions.SetNotifier(router)

	connCfg := realtime.DefaultConnConfig()
	connCfg.WriteTimeout = c.WriteTimeout
	connCfg.QueueSize = c.SendQueueSize

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		accounts: accounts,
		sessions: sessions,
		inbox:    inbox,
		sweeper:  sweeper,
		router:   router,
		realtime: realtime.NewServer(gate, router, connCfg, logger),
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts, app.sessions, app.inbox)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.realtime.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		app.router.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn(ctx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
