package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anacondy/examwatch/internal/models"
	"github.com/redis/go-redis/v9"
)

// AnalysisCache stores analysis results keyed by document URL so repeated
// analysis of the same document needs no second download.
type AnalysisCache interface {
	Get(ctx context.Context, url string) (*models.AnalysisResult, bool)
	Set(ctx context.Context, url string, res *models.AnalysisResult)
	Close() error
}

// RedisCache is the Redis-backed AnalysisCache, used when REDIS_URL is
// configured. Results are stored as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "examwatch:analysis:",
		ttl:    ttl,
	}, nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Get(ctx context.Context, url string) (*models.AnalysisResult, bool) {
	data, err := r.client.Get(ctx, r.prefix+urlKey(url)).Bytes()
	if err != nil {
		return nil, false
	}
	var res models.AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (r *RedisCache) Set(ctx context.Context, url string, res *models.AnalysisResult) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	r.client.Set(ctx, r.prefix+urlKey(url), data, r.ttl)
}

// urlKey hashes the document URL into a fixed-length cache key.
func urlKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
