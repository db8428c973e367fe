package app

import (
	"context"
	"log/slog"

	"github.com/flemzord/ghinline/internal/cache"
	"github.com/flemzord/ghinline/internal/channel"
	"github.com/flemzord/ghinline/internal/config"
	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/cron"
	"github.com/flemzord/ghinline/internal/github"
)

// monitorModuleID is the lifecycle ID of the rate budget scheduler.
const monitorModuleID = string(cron.ModuleID)

// newCaches builds the list and single-repository caches for the
// configured backend. The returned close func is nil for the memory backend.
func newCaches(ctx context.Context, cfg github.Config, logger *slog.Logger) (
	cache.Cache[[]github.Repository],
	cache.Cache[github.Repository],
	func() error,
	error,
) {
	cfg.SetDefaults()

	switch cfg.Cache.Backend {
	case github.CacheRedis:
		rdb, err := cache.Dial(ctx, cfg.Cache.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("cache: using redis", "addr", cfg.Cache.Redis.Addr, "ttl", cfg.Cache.TTL)
		lists := cache.NewRedis[[]github.Repository](rdb, cfg.Cache.Redis.Prefix, "lists", cfg.Cache.TTL, logger)
		repos := cache.NewRedis[github.Repository](rdb, cfg.Cache.Redis.Prefix, "repos", cfg.Cache.TTL, logger)
		return lists, repos, rdb.Close, nil
	case github.CacheNone:
		logger.Info("cache: disabled, every lookup reaches GitHub")
		return cache.Nop[[]github.Repository]{}, cache.Nop[github.Repository]{}, nil, nil
	default:
		logger.Debug("cache: using memory", "ttl", cfg.Cache.TTL)
		return cache.NewMemory[[]github.Repository](cfg.Cache.TTL), cache.NewMemory[github.Repository](cfg.Cache.TTL), nil, nil
	}
}

// wireChannels hands the inline pipeline to every loaded channel. Must be
// called after LoadModules and before Start.
func wireChannels(app *core.App, ids []string, answerer channel.Answerer, logger *slog.Logger) int {
	wired := 0
	for _, id := range ids {
		mod, ok := app.Module(id)
		if !ok {
			continue
		}
		if ch, ok := mod.(channel.Channel); ok {
			ch.SetAnswerer(answerer)
			wired++
			logger.Info("app: wired channel", "channel", id)
		}
	}
	if wired == 0 {
		logger.Warn("app: no channel modules loaded, inline queries will not be served")
	}
	return wired
}

// newMonitor builds the scheduler running the rate budget check.
func newMonitor(cfg config.MonitorConfig, env *Env, logger *slog.Logger) (*cron.Scheduler, error) {
	sched := cron.NewScheduler(logger.With("component", "cron"))
	err := sched.RegisterJob(&cron.RateBudgetJob{
		Budget:       env.GitHub.Budget(),
		Gauges:       env.Metrics,
		WarnBelow:    cfg.WarnBelow,
		Logger:       logger,
		ScheduleExpr: cfg.Schedule,
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}
