package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/perpustakaan/library/config"
	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/events"
	"github.com/Astemirdum/perpustakaan/library/internal/handler"
	"github.com/Astemirdum/perpustakaan/library/internal/metrics"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository"
	"github.com/Astemirdum/perpustakaan/library/internal/repository/memory"
	"github.com/Astemirdum/perpustakaan/library/internal/repository/sqlrepo"
	"github.com/Astemirdum/perpustakaan/library/internal/server"
	"github.com/Astemirdum/perpustakaan/library/internal/service"
	"github.com/Astemirdum/perpustakaan/library/internal/session"
	"github.com/Astemirdum/perpustakaan/library/migrations"
	"github.com/Astemirdum/perpustakaan/pkg/circuit_breaker"
	"github.com/Astemirdum/perpustakaan/pkg/kafka"
	"github.com/Astemirdum/perpustakaan/pkg/postgres"
	"github.com/Astemirdum/perpustakaan/pkg/sqlite"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AdminRequest exposes the account creation request to callers outside library/.
type AdminRequest = model.UserCreateRequest

// App holds the wired library services over a single storage backend.
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	repo     repository.Repository
	registry *prometheus.Registry
	closers  []func() error

	Catalog  *service.Catalog
	Accounts *service.Account
	Ledger   *service.Ledger
	Sessions *session.Manager
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	repo, err := NewRepository(ctx, cfg.Storage, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		registry: prometheus.NewRegistry(),
		closers:  []func() error{repo.Close},
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			a.Close()
			return nil, errors.Wrap(err, "kafka.NewProducer")
		}
		kp := events.NewKafkaPublisher(producer, cfg.Kafka.Topic, circuit_breaker.New(cfg.Breaker), log)
		a.closers = append(a.closers, kp.Close)
		publisher = kp
	}

	a.Catalog = service.NewCatalog(repo, log)
	a.Accounts = service.NewAccount(repo, log)
	a.Ledger = service.NewLedger(repo, log,
		service.WithPublisher(publisher),
		service.WithMetrics(metrics.NewLedger(a.registry)),
		service.WithRestoreOnReturn(cfg.Ledger.RestoreOnReturn),
	)
	a.Sessions = session.NewManager(cfg.Auth, a.Accounts, repo, log)

	if err := a.bootstrapAdmin(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// NewRepository opens the configured storage driver. SQL drivers get their
// migrations applied on open.
func NewRepository(ctx context.Context, st config.Storage, db *postgres.DB, log *zap.Logger) (repository.Repository, error) {
	switch st.Driver {
	case config.DriverMemory:
		store := memory.New()
		if st.Seed {
			if err := store.Seed(ctx); err != nil {
				return nil, errors.Wrap(err, "memory.Seed")
			}
		}
		return store, nil
	case config.DriverPostgres:
		conn, err := postgres.NewPostgresDB(ctx, db, migrations.MigrationFiles)
		if err != nil {
			return nil, errors.Wrap(err, "postgres")
		}
		return sqlrepo.NewRepository(conn, log)
	case config.DriverSQLite:
		conn, err := sqlite.NewSQLiteDB(ctx, st.SQLitePath, migrations.MigrationFiles)
		if err != nil {
			return nil, errors.Wrap(err, "sqlite")
		}
		return sqlrepo.NewRepository(conn, log)
	default:
		return nil, errors.Errorf("unknown storage driver %q", st.Driver)
	}
}

func (a *App) bootstrapAdmin(ctx context.Context) error {
	admin := a.cfg.Admin
	if admin.Username == "" {
		return nil
	}
	u, err := a.Accounts.CreateAdmin(ctx, model.UserCreateRequest{
		Username: admin.Username,
		Password: admin.Password,
		Name:     admin.Username,
		Email:    admin.Email,
	})
	switch {
	case errors.Is(err, errs.ErrConflict):
		a.log.Debug("admin already exists", zap.String("username", admin.Username))
		return nil
	case err != nil:
		return errors.Wrap(err, "bootstrap admin")
	}
	a.log.Info("admin created", zap.String("id", u.ID), zap.String("username", u.Username))
	return nil
}

func (a *App) Handler() *handler.Handler {
	return handler.New(a.Catalog, a.Accounts, a.Ledger, a.Sessions, a.log, handler.WithGatherer(a.registry))
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close", zap.Error(err))
		}
	}
	a.closers = nil
}

// Serve runs the http server and the overdue sweeper until ctx is done or
// one of them fails, then shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := server.NewServer(a.cfg.Server, a.Handler().NewRouter())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http server start ON: ",
			zap.String("addr", net.JoinHostPort(a.cfg.Server.Host, a.cfg.Server.Port)))
		return srv.Run()
	})
	g.Go(func() error {
		if a.cfg.Ledger.SweepInterval <= 0 {
			return nil
		}
		return a.Ledger.RunSweeper(ctx, a.cfg.Ledger.SweepInterval)
	})
	g.Go(func() error {
		<-ctx.Done()
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func Run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}
