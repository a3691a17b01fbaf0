package lock

import (
	"fmt"

	appqna "github.com/setof/qna-backend/internal/application/qna"
	"github.com/setof/qna-backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Closer is implemented by lockers that hold a connection
type Closer interface {
	Close() error
}

// NewScopeLocker builds the locker selected by cfg.Reply.LockBackend
func NewScopeLocker(cfg *config.Config, logger *zap.Logger) (appqna.ScopeLocker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Reply.LockBackend {
	case config.LockBackendRedis:
		locker, err := NewRedisScopeLocker(RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Reply.LockTTL, cfg.Reply.LockWait)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis scope locker: %w", err)
		}
		logger.Info("Using Redis reply scope lock",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.Reply.LockTTL),
			zap.Duration("wait", cfg.Reply.LockWait),
		)
		return locker, nil
	case config.LockBackendLocal, "":
		logger.Info("Using in-process reply scope lock",
			zap.Duration("wait", cfg.Reply.LockWait),
		)
		return NewLocalScopeLocker(cfg.Reply.LockWait), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Reply.LockBackend)
	}
}
