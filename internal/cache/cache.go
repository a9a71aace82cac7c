// Package cache puts a Redis read-through cache in front of a note.Store.
package cache

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/Vinw199/Voice-note/internal/note"
)

// Cache wraps a note.Store with Redis-backed caching for the unfiltered
// list and single-note reads. Writes go to the base store and evict.
type Cache struct {
	base  note.Store
	redis *redis.Client
	ttl   time.Duration
}

var _ note.Store = (*Cache)(nil)

// New creates a caching store using the provided Redis client and TTL. A nil
// client or zero TTL disables caching.
func New(base note.Store, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("cache.New: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) Create(ctx context.Context, n note.NewNote) (string, error) {
	id, err := c.base.Create(ctx, n)
	if err != nil {
		return "", err
	}
	c.evict(ctx, listKey(n.Owner))
	return id, nil
}

func (c *Cache) Update(ctx context.Context, id, owner string, f note.Fields) error {
	if err := c.base.Update(ctx, id, owner, f); err != nil {
		return err
	}
	c.evict(ctx, listKey(owner), noteKey(owner, id))
	return nil
}

func (c *Cache) Delete(ctx context.Context, id, owner string) error {
	if err := c.base.Delete(ctx, id, owner); err != nil {
		return err
	}
	c.evict(ctx, listKey(owner), noteKey(owner, id))
	return nil
}

func (c *Cache) Get(ctx context.Context, id, owner string) (note.Note, error) {
	var n note.Note
	if c.load(ctx, noteKey(owner, id), &n) {
		return n, nil
	}
	n, err := c.base.Get(ctx, id, owner)
	if err != nil {
		return note.Note{}, err
	}
	c.store(ctx, noteKey(owner, id), n)
	return n, nil
}

// List serves the unfiltered listing from cache. Searches always hit the
// base store.
func (c *Cache) List(ctx context.Context, owner string, opts note.ListOptions) ([]note.Summary, error) {
	if opts.TitleMatches != "" {
		return c.base.List(ctx, owner, opts)
	}
	var notes []note.Summary
	if c.load(ctx, listKey(owner), &notes) {
		return notes, nil
	}
	notes, err := c.base.List(ctx, owner, opts)
	if err != nil {
		return nil, err
	}
	c.store(ctx, listKey(owner), notes)
	return notes, nil
}

func (c *Cache) load(ctx context.Context, key string, v any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the base store without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}

func listKey(owner string) string {
	return "notes:" + owner
}

func noteKey(owner, id string) string {
	return "note:" + owner + ":" + id
}
