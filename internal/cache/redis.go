package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/notexe/ledger-reminders/internal/config"
	"github.com/notexe/ledger-reminders/internal/reminder"
	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "ledger-reminders:list"

// Redis keeps the list as a JSON blob under a single key, so several
// machines of the same user can share it.
type Redis struct {
	client *redis.Client
	key    string
}

// OpenRedis connects to cfg.Addr and checks the server answers.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	key := cfg.Key
	if key == "" {
		key = defaultRedisKey
	}
	return &Redis{client: client, key: key}, nil
}

func (r *Redis) Load(ctx context.Context) ([]reminder.Reminder, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached reminders: %w", err)
	}

	var list []reminder.Reminder
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode cached reminders: %w", err)
	}
	return list, nil
}

func (r *Redis) Save(ctx context.Context, list []reminder.Reminder) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode reminders: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set cached reminders: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
