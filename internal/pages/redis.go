package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStates keeps page states in Redis as JSON values that expire after
// ttl of inactivity.
type RedisStates struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStates(client *redis.Client, ttl time.Duration) *RedisStates {
	return &RedisStates{client: client, ttl: ttl}
}

// ConnectRedis opens a client and checks it with PING.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *RedisStates) Get(ctx context.Context, owner uuid.UUID, page string) (*State, error) {
	b, err := r.client.Get(ctx, stateKey(owner, page)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get page state: %w", err)
	}
	return decodeState(b)
}

func (r *RedisStates) Put(ctx context.Context, owner uuid.UUID, st *State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode page state: %w", err)
	}
	if err := r.client.Set(ctx, stateKey(owner, st.Page), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set page state: %w", err)
	}
	return nil
}

func (r *RedisStates) DeleteOwner(ctx context.Context, owner uuid.UUID, pages []string) error {
	if len(pages) == 0 {
		return nil
	}
	keys := make([]string, 0, len(pages))
	for _, p := range pages {
		keys = append(keys, stateKey(owner, p))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete page states: %w", err)
	}
	return nil
}

func (r *RedisStates) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
