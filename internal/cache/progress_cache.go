// Package cache mirrors reading positions into Redis so dashboard reads
// don't hit the database. The canonical position lives on the profile row;
// the cache is an optimization and every method no-ops when Redis is not
// configured.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Position struct {
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	Page       int       `json:"page"`
	LastReadAt time.Time `json:"last_read_at"`
}

type ProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressCache connects to Redis at addr. An empty addr returns a
// disabled cache whose methods are all no-ops.
func NewProgressCache(addr, password string, ttl time.Duration) (*ProgressCache, error) {
	if addr == "" {
		return &ProgressCache{ttl: ttl}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ProgressCache{client: rdb, ttl: ttl}, nil
}

func key(userID, bookID string) string {
	return fmt.Sprintf("progress:user:%s:book:%s", userID, bookID)
}

// Save upserts the reading position (no-op when disabled).
func (c *ProgressCache) Save(ctx context.Context, pos *Position) error {
	if c == nil || c.client == nil {
		return nil
	}

	fields := map[string]any{
		"user_id":      pos.UserID,
		"book_id":      pos.BookID,
		"page":         pos.Page,
		"last_read_at": pos.LastReadAt.Format(time.RFC3339Nano),
	}
	k := key(pos.UserID, pos.BookID)
	if err := c.client.HSet(ctx, k, fields).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, k, c.ttl).Err()
}

// Get returns the cached position, or nil on miss or when disabled.
func (c *ProgressCache) Get(ctx context.Context, userID, bookID string) (*Position, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	fields, err := c.client.HGetAll(ctx, key(userID, bookID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	pos := &Position{UserID: userID, BookID: bookID}
	if p, ok := fields["page"]; ok {
		pos.Page, _ = strconv.Atoi(p)
	}
	if ts, ok := fields["last_read_at"]; ok {
		pos.LastReadAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return pos, nil
}

// Delete drops the cached position (no-op when disabled).
func (c *ProgressCache) Delete(ctx context.Context, userID, bookID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, key(userID, bookID)).Err()
}

func (c *ProgressCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
