// Package cache is a look-aside store for completed research documents,
// Redis primary with an in-memory fallback. Redis keeps the cache shared
// across serving processes; the fallback keeps a single process working when
// Redis is unreachable.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tickerbrief/config"
	"tickerbrief/types"
)

type memoryEntry struct {
	doc       *types.ResearchDocument
	expiresAt time.Time
}

// Cache stores serialized ResearchDocuments with a TTL. The Redis connection
// is attempted once at construction; on failure the in-memory fallback is
// used permanently rather than re-dialing per call.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string

	mu     sync.RWMutex
	memory map[string]memoryEntry
}

// Options configures the cache backend. An empty Addr disables Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New builds the cache, probing Redis once.
func New(opts Options) *Cache {
	if opts.TTL == 0 {
		opts.TTL = config.CacheTTL
	}

	c := &Cache{
		ttl:    opts.TTL,
		prefix: config.CacheKeyPrefix,
		memory: make(map[string]memoryEntry),
	}

	if opts.Addr == "" {
		log.Println("Cache: Redis not configured, using in-memory store")
		return c
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Cache: Redis unavailable, using in-memory fallback: %v", err)
		return c
	}

	c.rdb = rdb
	log.Println("Cache: Redis connected")
	return c
}

// Key builds the canonical cache key for a ticker/exchange pair.
func Key(ticker, exchange string) string {
	return ticker + "_" + exchange
}

func (c *Cache) fullKey(key string) string {
	return c.prefix + ":" + key
}

// Get returns the cached document for key, or nil on miss.
func (c *Cache) Get(ctx context.Context, key string) *types.ResearchDocument {
	full := c.fullKey(key)

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, full).Result()
		if err == nil {
			var doc types.ResearchDocument
			if err := json.Unmarshal([]byte(raw), &doc); err == nil {
				return &doc
			}
			log.Printf("Cache: corrupt entry for %s, treating as miss", full)
		} else if err != redis.Nil {
			log.Printf("Cache: Redis get error: %v", err)
		}
		return nil
	}

	c.mu.RLock()
	entry, ok := c.memory[full]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.memory, full)
		c.mu.Unlock()
		return nil
	}
	return entry.doc
}

// Set stores a document under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, doc *types.ResearchDocument) {
	full := c.fullKey(key)

	if c.rdb != nil {
		raw, err := json.Marshal(doc)
		if err == nil {
			if err := c.rdb.Set(ctx, full, raw, c.ttl).Err(); err != nil {
				log.Printf("Cache: Redis set error: %v", err)
			}
		}
		return
	}

	c.mu.Lock()
	c.memory[full] = memoryEntry{doc: doc, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate removes the entry for key. Succeeds whether or not it existed.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	full := c.fullKey(key)

	if c.rdb != nil {
		if err := c.rdb.Del(ctx, full).Err(); err != nil {
			log.Printf("Cache: Redis delete error: %v", err)
		}
	}

	c.mu.Lock()
	delete(c.memory, full)
	c.mu.Unlock()
}

// Backend reports which store is serving requests, for health reporting.
func (c *Cache) Backend() string {
	if c.rdb != nil {
		return "redis"
	}
	return "memory"
}
