package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"prepify-quiz/internal/app"
	"prepify-quiz/internal/auth"
	"prepify-quiz/internal/config"
	"prepify-quiz/internal/infra/memory"
	"prepify-quiz/internal/infra/postgres"
	"prepify-quiz/internal/infra/sqlite"
)

type resultStore interface {
	app.ResultSink
	app.ResultReader
}

// stores is the persistence selected by storage.driver.
type stores struct {
	questions app.QuestionStore
	users     auth.UserStore
	results   resultStore
	close     func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.Storage.Driver {
	case "memory":
		results := memory.NewResultStore()
		log.Printf("using in-memory storage; nothing survives a restart")
		return stores{
			questions: memory.NewQuestionStore(),
			users:     memory.NewUserStore(results),
			results:   results,
			close:     func() {},
		}, nil
	case "sqlite", "":
		db, err := sqlite.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return stores{}, err
		}
		return stores{
			questions: db,
			users:     db,
			results:   db,
			close:     func() { _ = db.Close() },
		}, nil
	case "postgres":
		dsn := cfg.PostgresDSN()
		if dsn == "" {
			return stores{}, fmt.Errorf("postgres url not configured")
		}
		if err := postgres.Migrate(ctx, dsn); err != nil {
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
		pool, err := pgxpool.Connect(ctx, dsn)
		if err != nil {
			return stores{}, err
		}
		db := postgres.NewStore(pool)
		return stores{
			questions: db,
			users:     db,
			results:   db,
			close:     pool.Close,
		}, nil
	}
	return stores{}, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
}
