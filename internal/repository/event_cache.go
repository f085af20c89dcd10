package repository

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/festopiya/stall-booking/internal/model"
)

// EventSource is the slice of the event catalog the cache can front.
type EventSource interface {
	GetEvent(ctx context.Context, id string) (model.Event, error)
	GetEvents(ctx context.Context, ids []string) (map[string]model.Event, error)
}

// EventCache is a read-through Redis cache over an EventSource. Entries may
// be stale for up to the TTL; that is acceptable because an event's
// organizer never changes. Any Redis failure falls back to the source.
type EventCache struct {
	src    EventSource
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewEventCache wraps src. A nil client disables caching entirely.
func NewEventCache(src EventSource, rdb *redis.Client, ttl time.Duration) *EventCache {
	c := &EventCache{src: src, ttl: ttl, prefix: "event:"}
	if rdb != nil {
		c.rdb = rdb
	}
	if c.ttl <= 0 {
		c.ttl = 5 * time.Minute
	}
	return c
}

// GetEvent returns the cached event or loads and caches it.
func (c *EventCache) GetEvent(ctx context.Context, id string) (model.Event, error) {
	if c.rdb == nil {
		return c.src.GetEvent(ctx, id)
	}
	if bs, err := c.rdb.Get(ctx, c.prefix+id).Bytes(); err == nil {
		var e model.Event
		if json.Unmarshal(bs, &e) == nil {
			return e, nil
		}
	} else if err != redis.Nil {
		log.Printf("event-cache: get %s: %v", id, err)
	}
	e, err := c.src.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	c.store(ctx, e)
	return e, nil
}

// GetEvents resolves ids from the cache first and loads the misses from the
// source in one call.
func (c *EventCache) GetEvents(ctx context.Context, ids []string) (map[string]model.Event, error) {
	if c.rdb == nil || len(ids) == 0 {
		return c.src.GetEvents(ctx, ids)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.prefix + id
	}
	out := make(map[string]model.Event, len(ids))
	var misses []string
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("event-cache: mget: %v", err)
		vals = make([]any, len(ids))
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var e model.Event
		if json.Unmarshal([]byte(s), &e) != nil {
			misses = append(misses, ids[i])
			continue
		}
		out[e.ID] = e
	}
	if len(misses) == 0 {
		return out, nil
	}
	loaded, err := c.src.GetEvents(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, e := range loaded {
		out[id] = e
		c.store(ctx, e)
	}
	return out, nil
}

func (c *EventCache) store(ctx context.Context, e model.Event) {
	bs, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.rdb.SetEx(ctx, c.prefix+e.ID, bs, c.ttl).Err(); err != nil {
		log.Printf("event-cache: set %s: %v", e.ID, err)
	}
}
