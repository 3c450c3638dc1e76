// db/redis.go
package db

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/retailhq/console/cache"
	logger "github.com/retailhq/console/logging"
)

var (
	RedisClient   *redis.Client
	encryptionKey []byte
)

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	encryptionKey = []byte(viper.GetString("redis.encryptionKey"))
	if len(encryptionKey) != 32 {
		return fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

const responseKeyPrefix = "resp:"

// RedisCache is the shared cache.ResponseCache for multi-process consoles.
// Cached responses can hold customer PII, so payloads are encrypted at
// rest. Redis owns expiry; ClearExpired is a no-op here.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (rc *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	encrypted, err := encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt cached response: %w", err)
	}

	err = rc.client.Set(ctx, responseKeyPrefix+key, base64.StdEncoding.EncodeToString(encrypted), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}

	logger.Debug("Response cached", zap.String("key", key))
	return nil
}

func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	encoded, err := rc.client.Get(ctx, responseKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		// A read failure degrades to a cache miss; the caller dials out.
		logger.Error("Failed to read cached response", zap.Error(err), zap.String("key", key))
		return nil, false
	}

	encrypted, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		logger.Error("Failed to decode cached response", zap.Error(err), zap.String("key", key))
		return nil, false
	}

	data, err := decrypt(encrypted)
	if err != nil {
		logger.Error("Failed to decrypt cached response", zap.Error(err), zap.String("key", key))
		return nil, false
	}

	logger.Debug("Response retrieved from cache", zap.String("key", key))
	return data, true
}

func (rc *RedisCache) Has(ctx context.Context, key string) bool {
	_, ok := rc.Get(ctx, key)
	return ok
}

// ClearExpired is satisfied by Redis itself evicting keyed TTLs.
func (rc *RedisCache) ClearExpired(ctx context.Context) int {
	return 0
}

func (rc *RedisCache) Clear(ctx context.Context) error {
	return rc.deleteByPattern(ctx, responseKeyPrefix+"*")
}

func (rc *RedisCache) ClearPrefix(ctx context.Context, prefix string) error {
	return rc.deleteByPattern(ctx, responseKeyPrefix+prefix+"*")
}

func (rc *RedisCache) Size(ctx context.Context) int {
	count := 0
	iter := rc.client.Scan(ctx, 0, responseKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		logger.Error("Failed to scan cached responses", zap.Error(err))
	}
	return count
}

func (rc *RedisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := rc.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys for %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete %d cached responses: %w", len(keys), err)
	}
	logger.Debug("Cached responses deleted",
		zap.String("pattern", strings.TrimSuffix(pattern, "*")),
		zap.Int("count", len(keys)))
	return nil
}

// RateLimit implements a sliding-window limiter keyed by caller identity.
func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
