package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zaafa/internal/db"
	"zaafa/internal/domain/catalog"
	"zaafa/internal/store/memory"
	mongostore "zaafa/internal/store/mongo"
	"zaafa/internal/store/postgres"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Driver string

	PostgresAddr string
	MaxOpenConns int
	MaxIdleTime  string
	AutoMigrate  bool

	MongoURI      string
	MongoDatabase string
}

// Container holds the selected catalog driver and whatever must be closed with it.
type Container struct {
	Driver  string
	Catalog catalog.Store
	stats   func() any
	closers []func(context.Context) error
}

// NewContainer opens the configured driver. An empty driver means postgres.
func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverPostgres
	}

	switch driver {
	case DriverPostgres:
		if cfg.AutoMigrate {
			if err := db.Migrate(cfg.PostgresAddr); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := db.New(cfg.PostgresAddr, int32(cfg.MaxOpenConns), cfg.MaxIdleTime)
		if err != nil {
			return nil, err
		}
		return &Container{
			Driver:  driver,
			Catalog: postgres.NewRepository(pool),
			stats: func() any {
				st := pool.Stat()
				return map[string]any{
					"total_conns":    st.TotalConns(),
					"idle_conns":     st.IdleConns(),
					"acquired_conns": st.AcquiredConns(),
					"max_conns":      st.MaxConns(),
				}
			},
			closers: []func(context.Context) error{func(context.Context) error { pool.Close(); return nil }},
		}, nil

	case DriverMongo:
		dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		repo, err := mongostore.Connect(dialCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureIndexes(dialCtx); err != nil {
			_ = repo.Close(context.Background())
			return nil, err
		}
		return &Container{
			Driver:  driver,
			Catalog: repo,
			closers: []func(context.Context) error{repo.Close},
		}, nil

	case DriverMemory:
		return NewMemoryContainer(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func NewMemoryContainer() *Container {
	return &Container{Driver: DriverMemory, Catalog: memory.New()}
}

// Stats reports pool statistics for drivers that expose them.
func (c *Container) Stats() any {
	if c.stats == nil {
		return nil
	}
	return c.stats()
}

func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range c.closers {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
