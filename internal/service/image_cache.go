package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"post-recommender/internal/domain"
)

// DefaultImageCacheTTL es la ventana de frescura de una busqueda de fotos.
const DefaultImageCacheTTL = 30 * time.Minute

// ImageCache guarda resultados de busqueda de fotos por query normalizada.
// Un miss solo cuesta latencia.
type ImageCache interface {
	Get(ctx context.Context, query string) ([]domain.Image, bool, error)
	Set(ctx context.Context, query string, images []domain.Image, ttl time.Duration) error
}

func normalizeImageQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

type memoryImageEntry struct {
	images    []domain.Image
	expiresAt time.Time
}

type memoryImageCache struct {
	mu    sync.Mutex
	items map[string]memoryImageEntry
	now   func() time.Time
}

func NewMemoryImageCache() ImageCache {
	return &memoryImageCache{
		items: make(map[string]memoryImageEntry),
		now:   time.Now,
	}
}

func (c *memoryImageCache) Get(_ context.Context, query string) ([]domain.Image, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := normalizeImageQuery(query)
	e, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.items, key)
		return nil, false, nil
	}
	return append([]domain.Image(nil), e.images...), true, nil
}

func (c *memoryImageCache) Set(_ context.Context, query string, images []domain.Image, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := normalizeImageQuery(query)
	if key == "" {
		return nil
	}
	c.items[key] = memoryImageEntry{
		images:    append([]domain.Image(nil), images...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisImageCache struct {
	client redisKV
	prefix string
}

// NewRedisImageCache comparte la cache entre replicas. Devuelve nil si no hay cliente.
func NewRedisImageCache(client *redis.Client) ImageCache {
	if client == nil {
		return nil
	}
	return &redisImageCache{
		client: client,
		prefix: "images:q:",
	}
}

func (c *redisImageCache) Get(ctx context.Context, query string) ([]domain.Image, bool, error) {
	key := normalizeImageQuery(query)
	if key == "" {
		return nil, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var images []domain.Image
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, false, err
	}
	return images, true, nil
}

func (c *redisImageCache) Set(ctx context.Context, query string, images []domain.Image, ttl time.Duration) error {
	key := normalizeImageQuery(query)
	if key == "" {
		return nil
	}
	if images == nil {
		images = []domain.Image{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.prefix+key, b, ttl).Err()
}
