package phaselock

import (
	"context"
	"fmt"
	"os"
	"portal/bizerror"
	"strings"
	"sync"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultTTL bounds how long a crashed holder can keep a phase locked.
const DefaultTTL = 10 * time.Second

// Locker serializes workflow mutations on a single phase.
type Locker interface {
	// Acquire returns ErrConcurrentModification when the phase is held by someone else.
	Acquire(ctx context.Context, phaseID types.ID) (release func(), err error)
}

var Active Locker = NewLocalLocker()

// WithPhaseLock runs fn while holding the lock of phaseID.
func WithPhaseLock(ctx context.Context, phaseID types.ID, fn func() error) error {
	release, err := Active.Acquire(ctx, phaseID)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

type LocalLocker struct {
	mu   sync.Mutex
	held map[types.ID]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[types.ID]struct{}{}}
}

func (l *LocalLocker) Acquire(ctx context.Context, phaseID types.ID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, found := l.held[phaseID]; found {
		return nil, bizerror.ErrConcurrentModification
	}
	l.held[phaseID] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.held, phaseID)
		l.mu.Unlock()
	}, nil
}

type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

// releaseScript deletes the key only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func Key(phaseID types.ID) string {
	return fmt.Sprintf("portal:phase-lock:%d", phaseID)
}

func (l *RedisLocker) Acquire(ctx context.Context, phaseID types.ID) (func(), error) {
	key := Key(phaseID)
	token := uuid.New().String()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, bizerror.ErrConcurrentModification
	}
	return func() {
		if err := releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err(); err != nil {
			logrus.WithField("key", key).Warnf("failed to release phase lock: %v", err)
		}
	}, nil
}

// NewFromEnv REDIS_ADDR, host:port or redis:// url. The in-process locker is used only when
// REDIS_ADDR is unset; a configured but unusable redis is an error.
func NewFromEnv() (Locker, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logrus.Info("REDIS_ADDR not set, phase locks are process local")
		return NewLocalLocker(), nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_ADDR %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", opts.Addr, err)
	}
	logrus.WithField("addr", opts.Addr).Info("phase locks backed by redis")
	return NewRedisLocker(rdb, DefaultTTL), nil
}
