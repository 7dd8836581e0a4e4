package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "backoffice-console/pkg/errors"

	"github.com/go-redis/redis/v8"
)

// SessionRepositoryInterface - хранилище состояния экранов (открытые формы, активная
// вкладка, рабочий выбор редактора прав). Значения живут не дольше TTL.
type SessionRepositoryInterface interface {
	Save(ctx context.Context, key string, value interface{}) error
	Load(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Touch(ctx context.Context, key string) (bool, error)
}

// RedisSessionRepository - реализация на Redis, значения хранятся в JSON.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) SessionRepositoryInterface {
	return &RedisSessionRepository{client: client, prefix: "console:", ttl: ttl}
}

func (r *RedisSessionRepository) key(k string) string {
	return r.prefix + k
}

func (r *RedisSessionRepository) Save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("сериализация сессии '%s': %w", key, err)
	}
	return r.client.Set(ctx, r.key(key), raw, r.ttl).Err()
}

// Load возвращает ErrSessionNotFound, если ключа нет или TTL истёк.
func (r *RedisSessionRepository) Load(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperrors.ErrSessionNotFound
		}
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("повреждённая сессия '%s': %w", key, err)
	}
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	return r.client.Del(ctx, full...).Err()
}

// Touch продлевает TTL; false - ключа уже нет.
func (r *RedisSessionRepository) Touch(ctx context.Context, key string) (bool, error) {
	return r.client.Expire(ctx, r.key(key), r.ttl).Result()
}
