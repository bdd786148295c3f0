package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/recovery-atlas/facility-cli/internal/loader"
	"github.com/recovery-atlas/facility-cli/internal/store"
)

// storeEnv bundles the configured store and the matching facility loader.
type storeEnv struct {
	store  store.Store
	loader loader.Loader
}

func (e *storeEnv) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// openStore builds the store and loader for the configured driver.
func openStore(ctx context.Context) (*storeEnv, error) {
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store.database_url is required for the postgres driver")
		}
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return &storeEnv{
			store:  st,
			loader: loader.NewPostgres(st.Pool(), loader.PostgresOptions{}),
		}, nil

	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storeEnv{
			store:  st,
			loader: loader.NewSQLite(st.DB()),
		}, nil

	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
