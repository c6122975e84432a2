package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"replicate-gate/concurrency/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore publica eventos de admissão em Redis, para observar juntos
// vários processos que dividem a mesma conta Replicate.
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas em chaves de série temporal / por worker.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackWorkers bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackWorkers(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackWorkers = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "replicate:gate",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := string(ev.Outcome)
	if field == "" {
		return nil
	}

	totalKey := s.prefix + ":total"

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, totalKey, field, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if model := strings.TrimSpace(ev.Model); model != "" {
		modelKey := s.prefix + ":model"
		pipe.HIncrBy(ctx, modelKey, model+":"+field, 1)
	}

	if s.trackWorkers {
		if w := strings.TrimSpace(ev.Worker); w != "" {
			workerKey := s.prefix + ":worker:" + w
			pipe.HIncrBy(ctx, workerKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, workerKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
