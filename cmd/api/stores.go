package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/mongodb"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/service"
)

type stores struct {
	users service.UserStore
	tasks service.TaskStore
	notes service.NoteStore

	ping  func(ctx context.Context) error
	close func()
}

// openStores connects the backend named by STORE_DRIVER and prepares its
// schema or indexes.
func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, database, err := db.NewMongo(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return stores{}, fmt.Errorf("connect mongo: %w", err)
		}

		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, err
		}

		log.Info("store ready", "driver", cfg.StoreDriver, "database", cfg.MongoDB)

		return stores{
			users: mongodb.NewUsersRepo(database, prom),
			tasks: mongodb.NewTasksRepo(database, prom),
			notes: mongodb.NewNotesRepo(database, prom),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: func() {
				_ = client.Disconnect(context.Background())
			},
		}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}

		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("ensure schema: %w", err)
		}

		log.Info("store ready", "driver", cfg.StoreDriver)

		return stores{
			users: postgres.NewUsersRepo(pool, prom),
			tasks: postgres.NewTasksRepo(pool, prom),
			notes: postgres.NewNotesRepo(pool, prom),
			ping:  pool.Ping,
			close: pool.Close,
		}, nil

	case config.StoreMemory:
		log.Warn("using the in-memory store, data is lost on restart")

		return stores{
			users: memory.NewUsersRepo(),
			tasks: memory.NewTasksRepo(),
			notes: memory.NewNotesRepo(),
			close: func() {},
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
