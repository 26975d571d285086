// Command server runs the novedades HTTP API and change stream.
//
//	@title						Novedades API
//	@version					1.0
//	@description				Bulletin board of time-bounded announcements with a live change stream.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/cbtutils/novedades/internal/api"
	"github.com/cbtutils/novedades/internal/api/handler"
	"github.com/cbtutils/novedades/internal/core/ports"
	"github.com/cbtutils/novedades/internal/core/service"
	"github.com/cbtutils/novedades/internal/infrastructure/broadcast"
	"github.com/cbtutils/novedades/internal/infrastructure/config"
	"github.com/cbtutils/novedades/internal/infrastructure/credentials"
	"github.com/cbtutils/novedades/internal/infrastructure/db/memory"
	mongodb "github.com/cbtutils/novedades/internal/infrastructure/db/mongo"
	"github.com/cbtutils/novedades/internal/infrastructure/db/postgres"
	redisdb "github.com/cbtutils/novedades/internal/infrastructure/db/redis"
	"github.com/cbtutils/novedades/internal/infrastructure/queue"
	"github.com/cbtutils/novedades/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newStorage,
			newRedisClient,
			newMongoDatabase,
			newHub,
			newBroadcaster,
			newIdempotencyStore,
			newCredentials,
			newServices,
			newRouter,
		),
		fx.WithLogger(func(log zerolog.Logger) fxevent.Logger {
			return &fxevent.ConsoleLogger{W: log.With().Str("component", "fx").Logger()}
		}),
		fx.Invoke(registerServerHooks),
		fx.StopTimeout(shutdownTimeout),
	)
	app.Run()
}

func newConfig() (*config.Config, error) {
	return config.Load(context.Background())
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "novedades",
	})
}

// storage bundles the repositories of the selected driver.
type storage struct {
	users         ports.UserRepository
	announcements ports.AnnouncementRepository
	entities      ports.EntityRepository
	entityTypes   ports.EntityTypeRepository
	tx            ports.TxManager
	ping          handler.Pinger
}

func newStorage(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &storage{
			users:         store.Users(),
			announcements: store.Announcements(),
			entities:      store.Entities(),
			entityTypes:   store.EntityTypes(),
			tx:            store.TxManager(),
		}, nil
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(pool.Close))

	if cfg.Storage.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			return nil, err
		}
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		users:         postgres.NewUserRepository(pool),
		announcements: postgres.NewAnnouncementRepository(pool),
		entities:      postgres.NewEntityRepository(pool),
		entityTypes:   postgres.NewEntityTypeRepository(pool),
		tx:            postgres.NewTxManager(pool),
		ping:          pool,
	}, nil
}

// newRedisClient returns nil when REDIS_ADDR is unset.
func newRedisClient(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("redis disabled: relay and shared idempotency keys are off")
		return nil, nil
	}
	client, err := redisdb.Connect(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(client.Close))
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	return client, nil
}

// newMongoDatabase returns nil when MONGO_URI is unset.
func newMongoDatabase(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (*mongo.Database, error) {
	if cfg.Mongo.URI == "" {
		log.Info().Msg("mongo disabled: audit trail is off")
		return nil, nil
	}
	client, db, err := mongodb.Connect(context.Background(), cfg.Mongo)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		return client.Disconnect(ctx)
	}))
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	return db, nil
}

func newHub(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) *broadcast.Hub {
	hub := broadcast.NewHub(cfg.Stream.SubscriberBuffer, log)
	lc.Append(fx.StopHook(hub.Close))
	return hub
}

// newBroadcaster fans events out to local subscribers and, when configured,
// to the Redis relay and the Mongo audit trail.
func newBroadcaster(
	lc fx.Lifecycle,
	cfg *config.Config,
	hub *broadcast.Hub,
	rdb *redis.Client,
	mdb *mongo.Database,
	log zerolog.Logger,
) ports.Broadcaster {
	fanout := broadcast.NewFanout(log).With("hub", hub)

	if rdb != nil {
		relay := broadcast.NewRedisRelay(rdb, cfg.Redis.Channel, hub, log)
		fanout.With("redis", relay)
		runInBackground(lc, func(ctx context.Context) {
			if err := relay.Run(ctx); err != nil {
				log.Error().Err(err).Msg("redis relay stopped")
			}
		})
	}

	if mdb != nil {
		dispatcher := queue.NewDispatcher(cfg.Mongo.AuditWorkers, mongodb.NewEventRepository(mdb), log)
		fanout.With("audit", dispatcher)
		runInBackground(lc, func(ctx context.Context) {
			dispatcher.Start(ctx)
			dispatcher.Wait()
		})
	}

	return fanout
}

// runInBackground starts fn on app start and cancels it, waiting for it to
// return, on app stop.
func runInBackground(lc fx.Lifecycle, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				fn(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func newIdempotencyStore(cfg *config.Config, rdb *redis.Client) ports.IdempotencyStore {
	if rdb == nil {
		return memory.NewIdempotencyStore()
	}
	return redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
}

func newCredentials(cfg *config.Config) (*credentials.PasswordHasher, *credentials.TokenIssuer) {
	return credentials.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency),
		credentials.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

type services struct {
	auth          *service.AuthService
	users         *service.UserService
	announcements *service.AnnouncementService
	entities      *service.EntityService
	entityTypes   *service.EntityTypeService
}

func newServices(
	st *storage,
	hasher *credentials.PasswordHasher,
	tokens *credentials.TokenIssuer,
	broadcaster ports.Broadcaster,
	idem ports.IdempotencyStore,
	log zerolog.Logger,
) *services {
	return &services{
		auth:          service.NewAuthService(st.users, hasher, tokens, log),
		users:         service.NewUserService(st.users, hasher, log),
		announcements: service.NewAnnouncementService(st.announcements, st.tx, broadcaster, idem, log),
		entities:      service.NewEntityService(st.entities, st.tx, broadcaster, log),
		entityTypes:   service.NewEntityTypeService(st.entityTypes, broadcaster, log),
	}
}

func newRouter(
	cfg *config.Config,
	svc *services,
	st *storage,
	tokens *credentials.TokenIssuer,
	hub *broadcast.Hub,
	rdb *redis.Client,
	mdb *mongo.Database,
	log zerolog.Logger,
) *echo.Echo {
	readiness := map[string]handler.Pinger{}
	if st.ping != nil {
		readiness["postgres"] = st.ping
	}
	if rdb != nil {
		readiness["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	if mdb != nil {
		readiness["mongodb"] = handler.PingFunc(func(ctx context.Context) error {
			return mdb.Client().Ping(ctx, nil)
		})
	}

	return api.NewRouter(api.Deps{
		Auth:          svc.auth,
		Users:         svc.users,
		Announcements: svc.announcements,
		Entities:      svc.entities,
		EntityTypes:   svc.entityTypes,
		Tokens:        tokens,
		Stream:        hub,
		Readiness:     readiness,
		CORSOrigin:    cfg.CORSOrigin,
		StreamPing:    cfg.Stream.PingInterval,
		Logger:        log,
	})
}

func registerServerHooks(lc fx.Lifecycle, shutdowner fx.Shutdowner, e *echo.Echo, cfg *config.Config, log zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
				if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("http server failed")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down http server")
			return e.Shutdown(ctx)
		},
	})
}
