package discord

import (
	"context"
	"sync"
	"time"
)

type fetchChannelFunc func(ctx context.Context, id string) (*channel, error)

type cachedChannel struct {
	ch      *channel
	fetched time.Time
}

// channelCache memoises channel metadata for a fixed TTL.
// A failed refresh leaves the stale entry in place and returns the error.
type channelCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	fetch   fetchChannelFunc
	entries map[string]cachedChannel
}

func newChannelCache(ttl time.Duration, fetch fetchChannelFunc) *channelCache {
	return &channelCache{
		ttl:     ttl,
		now:     time.Now,
		fetch:   fetch,
		entries: make(map[string]cachedChannel),
	}
}

func (c *channelCache) get(ctx context.Context, id string) (*channel, error) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	c.mu.Unlock()

	if ok && c.now().Sub(entry.fetched) <= c.ttl {
		return entry.ch, nil
	}

	ch, err := c.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = cachedChannel{ch: ch, fetched: c.now()}
	c.mu.Unlock()
	return ch, nil
}
