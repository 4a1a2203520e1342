package main

import (
	"context"
	"errors"
	"log"

	app "veg_market/internal/application/market"
	"veg_market/internal/config"
	"veg_market/internal/domain/market"
	ginserver "veg_market/internal/infrastructure/http/gin"
	"veg_market/internal/infrastructure/metrics"
	"veg_market/internal/infrastructure/persistence/jsonfile"
	"veg_market/internal/interfaces/http/handler"
	"veg_market/internal/interfaces/http/router"
	"veg_market/internal/store"
	"veg_market/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	zl, err := logger.NewZapLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := jsonfile.NewRepository(cfg.Storage.DataFile, cfg.Storage.BackupDir)
	if err != nil {
		zl.Fatal("init persistence failed", logger.Error(err))
	}

	st := store.New(repo)
	if err := loadOrRecover(ctx, st, zl); err != nil {
		zl.Fatal("load market data failed", logger.Error(err))
	}

	marketService := app.NewService(st)

	var mtx *metrics.Metrics
	if cfg.Telemetry.EnableMetrics {
		mtx = metrics.New()
	}

	marketHandler := handler.NewMarketHandler(marketService, mtx)
	adminHandler := handler.NewAdminHandler(st, zl)

	engine := ginserver.NewEngine(zl)
	if mtx != nil {
		router.RegisterRoutes(engine, marketHandler, adminHandler, mtx.Handler())
	} else {
		router.RegisterRoutes(engine, marketHandler, adminHandler, nil)
	}

	server := ginserver.NewServer(cfg.Server, engine)
	zl.Info("starting market api",
		logger.String("addr", cfg.Server.Address()),
		logger.String("data_file", cfg.Storage.DataFile))
	if err := server.Run(); err != nil {
		zl.Fatal("server run failed", logger.Error(err))
	}
}

// loadOrRecover loads the primary record. When it is corrupt the binary
// decides the fallback: newest backup first, then a fresh empty state.
func loadOrRecover(ctx context.Context, st *store.Store, zl logger.Logger) error {
	err := st.Load(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, market.ErrCorruptData) {
		return err
	}
	zl.Error("primary record is corrupt, trying newest backup", logger.Error(err))

	backups, berr := st.Backups(ctx)
	if berr == nil {
		for _, name := range backups {
			if rerr := st.Restore(ctx, name); rerr == nil {
				zl.Warn("recovered from backup", logger.String("file", name))
				return nil
			}
			zl.Error("backup unusable", logger.String("file", name))
		}
	}

	zl.Warn("no usable backup, starting with empty state")
	return st.ClearAll(ctx)
}
