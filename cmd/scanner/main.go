// cmd/scanner/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-market-scanner/application/scheduler"
	"crypto-market-scanner/application/services/orchestrator"
	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/internal/delivery/console"
	"crypto-market-scanner/internal/infrastructure/api/exchanges/binance"
	redis_cache "crypto-market-scanner/internal/infrastructure/cache/redis"
	"crypto-market-scanner/internal/infrastructure/config"
	"crypto-market-scanner/internal/infrastructure/persistence/postgres"
	"crypto-market-scanner/internal/infrastructure/persistence/postgres/models"
	scan_run_repo "crypto-market-scanner/internal/infrastructure/persistence/postgres/repository/scan_run"
	events "crypto-market-scanner/internal/infrastructure/transport/event_bus"
	"crypto-market-scanner/pkg/logger"

	"github.com/jmoiron/sqlx"
)

func main() {
	envPath := flag.String("env", ".env", "путь к .env файлу")
	once := flag.Bool("once", false, "выполнить один скан и выйти")
	color := flag.Bool("color", true, "выделять цветом топ волатильности")
	flag.Parse()

	cfg, err := config.LoadConfig(*envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Не удалось загрузить конфигурацию: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitGlobal(cfg.Logging.File, cfg.Logging.Level, cfg.DebugMode); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Не удалось инициализировать логгер: %v\n", err)
		os.Exit(1)
	}
	cfg.PrintSummary()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source market.Source = binance.NewBinanceClient(cfg.Exchange)
	renderer := console.NewRenderer(os.Stdout, cfg.Scanner.VolatilityInterval, *color)
	sinks := []orchestrator.SnapshotSink{renderer}

	var redisService *redis_cache.RedisService
	if cfg.Redis.Enabled {
		redisService = redis_cache.NewRedisService(cfg.Redis)
		if err := redisService.Start(ctx); err != nil {
			logger.Warn("⚠️ Redis недоступен, кэш отключен: %v", err)
			redisService = nil
		} else {
			cache := redisService.Cache()
			source = redis_cache.NewCachingSource(source, cache, cfg.Redis.SymbolsCacheTTL)
			store := redis_cache.NewSnapshotStore(cache, cfg.Redis.SnapshotTTL)
			if last, err := store.Latest(ctx); err != nil {
				logger.Warn("⚠️ Не удалось прочитать последний снимок: %v", err)
			} else if last != nil {
				logger.Info("💾 В Redis есть снимок %s от %s", last.ScanID(), last.Timestamp().UTC().Format(time.RFC3339))
			}
			sinks = append(sinks, store)
		}
	}

	var db *sqlx.DB
	var journal scan_run_repo.ScanRunRepository
	if cfg.Database.Enabled {
		db, err = postgres.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Warn("⚠️ PostgreSQL недоступен, журнал сканов отключен: %v", err)
		} else {
			journal = scan_run_repo.NewScanRunRepository(db)
			if err := journal.Init(ctx); err != nil {
				logger.Warn("⚠️ Не удалось подготовить таблицу сканов: %v", err)
				journal = nil
			} else {
				logJournal(ctx, journal)
			}
		}
	}

	bus := events.NewEventBusFromConfig(cfg)
	bus.SubscribeAll(orchestrator.NewSinkSubscriber(sinks...))
	if journal != nil {
		bus.SubscribeAll(orchestrator.NewJournalSubscriber(journal))
	}
	bus.Start()

	orch, err := orchestrator.NewScanOrchestrator(source, scanConfig(cfg.Scanner), orchestrator.Options{
		MaxConcurrentRequests: cfg.Scanner.MaxConcurrentRequests,
		Publisher:             bus,
	})
	if err != nil {
		logger.Fatal("❌ Некорректные параметры скана: %v", err)
	}
	trigger := orchestrator.NewTrigger(orch, cfg.Scanner.ScanTimeout)

	shutdown := func() {
		trigger.Cancel()
		trigger.Wait()
		bus.Stop()
		bus.LogMetrics()
		if redisService != nil {
			if err := redisService.Stop(); err != nil {
				logger.Warn("⚠️ Ошибка остановки Redis: %v", err)
			}
		}
		if db != nil {
			db.Close()
		}
	}

	if *once {
		_, err := trigger.Run(ctx)
		shutdown()
		if err != nil {
			logger.Error("❌ Скан завершился ошибкой: %v", err)
			os.Exit(1)
		}
		return
	}

	schedule := scheduler.Every(cfg.Scanner.ScanInterval)
	if cfg.Scanner.AlignSchedule {
		schedule = scheduler.EveryAligned(cfg.Scanner.ScanInterval)
	}

	sched := scheduler.New()
	sched.Register(&scheduler.Job{
		Name:           "market_scan",
		Description:    "Скан волатильности и лидеров рынка",
		Schedule:       schedule,
		RunImmediately: true,
		Timeout:        cfg.Scanner.ScanTimeout,
		Handler: func(ctx context.Context) error {
			_, err := trigger.Run(ctx)
			if errors.Is(err, orchestrator.ErrSuperseded) {
				return nil
			}
			return err
		},
	})
	sched.Start()
	logger.Info("🚀 Сканер запущен, интервал %s (SIGHUP - внеочередной скан)", cfg.Scanner.ScanInterval)

	refresh := make(chan os.Signal, 1)
	signal.Notify(refresh, syscall.SIGHUP)
	defer signal.Stop(refresh)

	for {
		select {
		case <-refresh:
			logger.Info("🔄 Внеочередной скан по SIGHUP")
			trigger.Fire(ctx)
		case <-ctx.Done():
			logger.Info("🛑 Остановка сканера...")
			sched.Stop()
			shutdown()
			logger.Info("✅ Сканер остановлен")
			return
		}
	}
}

func scanConfig(c config.ScannerConfig) orchestrator.ScanConfig {
	return orchestrator.ScanConfig{
		QuoteAsset:         c.QuoteAsset,
		VolatilityInterval: c.VolatilityInterval,
		VolatilityLimit:    c.VolatilityLimit,
		MoverIntervals:     c.MoverIntervals,
		MoversLimit:        c.MoversCandleLimit,
		TopN:               c.TopVolatile,
		TopK:               c.TopMovers,
	}
}

// logJournal выводит статистику журнала и последний скан при старте
func logJournal(ctx context.Context, journal scan_run_repo.ScanRunRepository) {
	counts, err := journal.CountByStatus(ctx)
	if err != nil {
		logger.Warn("⚠️ Журнал сканов: %v", err)
		return
	}
	logger.Info("📒 Журнал сканов: завершено %d, ошибок %d, отменено %d",
		counts[models.ScanStatusCompleted], counts[models.ScanStatusFailed], counts[models.ScanStatusCancelled])

	recent, err := journal.Recent(ctx, 1)
	if err != nil || len(recent) == 0 {
		return
	}
	last := recent[0]
	logger.Info("📒 Последний скан %s: %s за %v", last.ID, last.Status, last.Duration().Round(time.Millisecond))
}
