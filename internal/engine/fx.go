package engine

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/scolara/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("engine",
	fx.Provide(ProvideConfig),
	fx.Provide(ProvideLocker),
	fx.Provide(New),
	fx.Invoke(StartEngine),
)

// ProvideLocker picks the cross-process Redis lock when configured, the
// in-process fallback otherwise.
func ProvideLocker(cfg config.Config, log *zap.Logger) RuleLocker {
	if cfg.RedisAddr == "" {
		return NewLocalLocker()
	}
	log.Info("engine using redis rule lock", zap.String("addr", cfg.RedisAddr))
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return NewRedisLocker(client)
}

func StartEngine(lc fx.Lifecycle, cfg config.Config, eng *Engine) {
	if cfg.EngineDisableStart {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go eng.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
