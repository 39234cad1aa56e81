package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/docs/internal/config"
	"github.com/MrSnakeDoc/docs/internal/domain"
	"github.com/MrSnakeDoc/docs/internal/logger"
	redisconn "github.com/MrSnakeDoc/docs/internal/redis"
	"github.com/MrSnakeDoc/docs/internal/seed"
	"github.com/MrSnakeDoc/docs/internal/store"
	"github.com/MrSnakeDoc/docs/internal/store/file"
	redisstore "github.com/MrSnakeDoc/docs/internal/store/redis"
	"github.com/MrSnakeDoc/docs/internal/store/sqlite"
	"github.com/MrSnakeDoc/docs/internal/utils"
)

// OpenStore builds the document store selected by cfg.Store. Redis is
// connected eagerly so a dead server fails startup instead of the first
// request.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*store.DocStore, error) {
	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var opts []store.Option
	if cfg.SeedFile != "" {
		seedFn, err := seed.SeedFunc(cfg.SeedFile)
		if err != nil {
			if backend != nil {
				utils.Close(backend)
			}
			return nil, err
		}
		log.Info("using seed file", logger.String("file", cfg.SeedFile))
		opts = append(opts, store.WithSeed(seedFn))
	}

	st := store.New(backend, log.With(logger.Component("store")), opts...)
	log.Info("store opened", logger.String("backend", st.BackendName()))
	return st, nil
}

func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Backend, error) {
	switch cfg.Store {
	case config.StoreFile:
		b, err := file.New(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open data file: %w", err)
		}
		return b, nil

	case config.StoreSQLite:
		b, err := sqlite.New(cfg.SQLitePath, cfg.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return b, nil

	case config.StoreRedis:
		client, err := redisconn.New(ctx, redisconn.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewBackend(client, cfg.StorageKey), nil

	case config.StoreMemory:
		log.Warn("memory store selected, content is lost on restart")
		return store.NewMemoryBackend(), nil

	case config.StoreNone:
		log.Warn("no store selected, content is read-only and empty")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// PrepareState loads the stored document once at startup. A corrupt document
// is returned as an error unless resetCorrupt is set, in which case it is
// replaced by the seed document.
func PrepareState(ctx context.Context, st *store.DocStore, resetCorrupt bool, log logger.Logger) (domain.AppState, error) {
	state, err := st.Load(ctx)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrCorruptState) || !resetCorrupt {
		return domain.AppState{}, err
	}

	log.Warn("stored state is corrupt, resetting to seed document",
		logger.String("backend", st.BackendName()),
		logger.Error(err))
	return st.Reset(ctx)
}
