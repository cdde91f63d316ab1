package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventease/internal/models"

	"github.com/redis/go-redis/v9"
)

const eventsKey = "events:baseline"

type Config struct {
	Enabled   bool
	Addr      string
	Password  string
	EventsTTL time.Duration
	LockTTL   time.Duration
}

// ValkeyClient caches the baseline event listing
type ValkeyClient struct {
	client    *redis.Client
	eventsTTL time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:    rdb,
		eventsTTL: cfg.EventsTTL,
	}, nil
}

// GetEvents returns the cached listing; ok is false on a miss
func (v *ValkeyClient) GetEvents(ctx context.Context) ([]models.Event, bool, error) {
	data, err := v.client.Get(ctx, eventsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache lookup error: %w", err)
	}

	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false, fmt.Errorf("invalid events in cache: %w", err)
	}

	return events, true, nil
}

func (v *ValkeyClient) SetEvents(ctx context.Context, events []models.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	if err := v.client.Set(ctx, eventsKey, data, v.eventsTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache events: %w", err)
	}
	return nil
}

// InvalidateEvents drops the listing after an event changes
func (v *ValkeyClient) InvalidateEvents(ctx context.Context) error {
	if err := v.client.Del(ctx, eventsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate events: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
