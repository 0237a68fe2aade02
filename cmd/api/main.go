package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
	infraxlsx "github.com/jhoicas/stock-ledger/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// stores adaptadores de ledger y catálogo según LEDGER_DRIVER.
type stores struct {
	ledger  repository.LedgerRepository
	catalog repository.CatalogRepository
	closers []io.Closer
}

func (s *stores) Close() {
	for _, c := range s.closers {
		_ = c.Close()
	}
}

type closerFunc func()

func (f closerFunc) Close() error { f(); return nil }

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	switch cfg.Ledger.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, cfg.Ledger.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		log.Info().Str("path", cfg.Ledger.SQLitePath).Msg("ledger en SQLite")
		return &stores{ledger: st, catalog: st, closers: []io.Closer{st}}, nil

	case config.DriverMemory:
		log.Warn().Msg("ledger en memoria: los movimientos se pierden al reiniciar")
		return &stores{ledger: memory.NewLedgerStore(), catalog: memory.NewCatalogStore()}, nil

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("ledger en PostgreSQL")
		return &stores{
			ledger:  postgres.NewLedgerRepository(pool),
			catalog: postgres.NewCatalogRepository(pool),
			closers: []io.Closer{closerFunc(pool.Close)},
		}, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ledger", cfg.Ledger.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Ledger.Driver).Msg("abrir ledger")
	}
	defer st.Close()

	// Caché del catálogo (opcional)
	catalog := st.catalog
	var catalogCache httpRouter.CatalogCacheInvalidator
	if cfg.Redis.URL != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, catálogo sin caché")
		} else {
			defer rdb.Close()
			cache := infraredis.NewCatalogCache(st.catalog, rdb, cfg.Redis.CatalogCacheTTL, log)
			catalog, catalogCache = cache, cache
		}
	}

	settings, err := inventory.NewReportSettings(cfg.Reports)
	if err != nil {
		log.Fatal().Err(err).Msg("umbrales de reportes")
	}

	registerMovementUC := inventory.NewRegisterMovementUseCase(st.ledger, log, time.Now)
	reportUC := inventory.NewReportUseCase(st.ledger, settings, log, time.Now)
	overviewUC := inventory.NewOverviewUseCase(st.ledger, settings, log, time.Now,
		infrapdf.NewOverviewRenderer(),
		infraxlsx.NewOverviewRenderer(),
	).WithCatalog(catalog)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		Reports:          reportUC,
		Overview:         overviewUC,
		Presenter:        httpRouter.NewPresenter(catalog, log),
		CatalogCache:     catalogCache,
		JWTSecret:        cfg.JWT.Secret,
		LedgerDriver:     cfg.Ledger.Driver,
		Logger:           log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
