package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript удаляет ключ только если он всё ещё принадлежит владельцу токена
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

const releaseTimeout = 2 * time.Second

// RedisOptions параметры распределённой блокировки
type RedisOptions struct {
	Prefix string
	// TTL ограничивает время жизни ключа, если процесс упал, не освободив блокировку
	TTL time.Duration
	// Wait максимальное время ожидания захвата
	Wait time.Duration
	// Retry пауза между попытками
	Retry time.Duration
}

// RedisLocker распределённая блокировка на SET NX PX.
// Используется, когда сервис запущен в нескольких экземплярах.
type RedisLocker struct {
	rdb      redis.Cmdable
	opts     RedisOptions
	newToken func() string
	logger   Logger
}

// NewRedisLocker создает распределённую блокировку
func NewRedisLocker(rdb redis.Cmdable, opts RedisOptions, logger Logger) *RedisLocker {
	return &RedisLocker{
		rdb:      rdb,
		opts:     opts,
		newToken: func() string { return uuid.NewString() },
		logger:   logger,
	}
}

// Lock пытается захватить ключ до истечения opts.Wait или отмены контекста
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	fullKey := l.opts.Prefix + key
	token := l.newToken()

	deadline := time.Now().Add(l.opts.Wait)
	for {
		ok, err := l.rdb.SetNX(ctx, fullKey, token, l.opts.TTL).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: Lock - setnx %s: %v", ErrLockBackend, fullKey, err)
		}
		if ok {
			return l.unlockFunc(fullKey, token), nil
		}

		if !time.Now().Add(l.opts.Retry).Before(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		timer := time.NewTimer(l.opts.Retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) unlockFunc(fullKey, token string) Unlock {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		n, err := l.rdb.Eval(ctx, releaseScript, []string{fullKey}, token).Int64()
		if err != nil {
			l.logger.Error("RedisLocker: failed to release %s: %v", fullKey, err)
			return
		}
		if n == 0 {
			l.logger.Warn("RedisLocker: lock %s expired before release", fullKey)
		}
	}
}
