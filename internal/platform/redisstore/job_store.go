package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/platform/logger"
	"github.com/phrazzld/carousel-studio/internal/store"
	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 5

// Config holds the connection and retention settings for JobStore.
type Config struct {
	Addr     string
	Password string
	Prefix   string
	TTL      time.Duration
}

// JobStore implements store.JobStore using Redis strings plus a sorted-set index.
type JobStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJobStore creates a JobStore connected to cfg.Addr.
func NewJobStore(cfg Config) (*JobStore, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	return NewJobStoreWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
	}), cfg), nil
}

// NewJobStoreWithClient wraps an existing client, applying defaults for an
// empty prefix or a non-positive TTL.
func NewJobStoreWithClient(client *redis.Client, cfg Config) *JobStore {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "carousel"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &JobStore{client: client, prefix: prefix, ttl: ttl}
}

// Ping verifies connectivity.
func (s *JobStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *JobStore) Close() error {
	return s.client.Close()
}

// Create saves a new job with the configured TTL.
func (s *JobStore) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.jobKey(job.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	if !ok {
		return store.ErrJobExists
	}

	if err := s.client.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(job.CreatedAt.UnixMilli()),
		Member: job.ID,
	}).Err(); err != nil {
		return fmt.Errorf("index job: %w", err)
	}

	logger.FromContext(ctx).Debug("job stored in redis", "job_id", job.ID, "ttl", s.ttl)
	return nil
}

// Get retrieves the job with the given ID.
func (s *JobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	data, err := s.client.Get(ctx, s.jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	return decodeJob(data)
}

// Update applies fn inside an optimistic WATCH/MULTI transaction, retrying
// when another writer touched the key in between.
func (s *JobStore) Update(ctx context.Context, id string, fn store.JobMutator) (*domain.Job, error) {
	key := s.jobKey(id)
	var updated *domain.Job

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return store.ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}

		job, err := decodeJob(data)
		if err != nil {
			return err
		}
		if err := fn(job); err != nil {
			return err
		}
		if err := job.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		next, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("encode job: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, next, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err != nil {
			return err
		}
		updated = job
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: job %s changed concurrently", store.ErrUpdateFailed, id)
}

// DeleteOlderThan removes jobs created before cutoff along with their index entries.
func (s *JobStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list expired jobs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		keys[i] = s.jobKey(id)
		members[i] = id
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.indexKey(), members...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete expired jobs: %w", err)
	}
	return ids, nil
}

func (s *JobStore) jobKey(id string) string {
	return s.prefix + ":job:" + id
}

func (s *JobStore) indexKey() string {
	return s.prefix + ":jobs"
}

func decodeJob(data []byte) (*domain.Job, error) {
	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

var _ store.JobStore = (*JobStore)(nil)
