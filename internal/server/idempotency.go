package server

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nlhtungg/parking-lot/internal/config"
)

const idempotencyTTL = 24 * time.Hour

func idempotencyKeyFromHeader(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

// IdempotencyStore replays the first response for a repeated confirm request
// carrying the same Idempotency-Key. Backed by redis; a nil client disables
// the guard and the conditional payment update remains the hard stop.
type IdempotencyStore struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewIdempotencyStore(cfg config.Config, log *zap.Logger) (*IdempotencyStore, error) {
	store := &IdempotencyStore{log: log.Named("server.idempotency")}
	if cfg.Redis.Addr == "" {
		return store, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	store.rdb = rdb
	return store, nil
}

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) ([]byte, bool) {
	if s.rdb == nil || key == "" {
		return nil, false
	}
	body, err := s.rdb.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

func (s *IdempotencyStore) Remember(ctx context.Context, key string, response any) {
	if s.rdb == nil || key == "" {
		return
	}
	body, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, redisKey(key), body, idempotencyTTL).Err(); err != nil {
		s.log.Warn("failed to store idempotent response", zap.Error(err))
	}
}

func redisKey(key string) string {
	return "parkinglot:idem:" + key
}
