package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"post-recommender/internal/domain"
)

const unsplashBody = `{"results":[
	{"alt_description":"","urls":{"regular":"https://img/1.jpg","small":"https://img/1s.jpg"},"user":{"name":"Ana","links":{"html":"https://unsplash.com/@ana"}},"links":{"html":"https://unsplash.com/photos/1"}},
	{"alt_description":"second","urls":{"regular":"https://img/2.jpg","small":"https://img/2s.jpg"},"user":{"name":"Bo","links":{"html":"https://unsplash.com/@bo"}},"links":{"html":"https://unsplash.com/photos/2"}}
]}`

func newUnsplashServer(t *testing.T, status int, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.Header.Get("Authorization") != "Client-ID key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/search/photos" || r.URL.Query().Get("per_page") != "3" || r.URL.Query().Get("orientation") != "landscape" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(unsplashBody))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImageSearcherCachesByNormalizedQuery(t *testing.T) {
	var hits int32
	srv := newUnsplashServer(t, http.StatusOK, &hits)
	s := NewImageSearcher(srv.URL, "key", NewMemoryImageCache(), time.Minute, zap.NewNop())

	img := s.SearchImage(context.Background(), "Calm Lake")
	if img == nil {
		t.Fatalf("expected image")
	}
	if img.URL != "https://img/1.jpg" || img.ThumbURL != "https://img/1s.jpg" || img.Photographer != "Ana" {
		t.Fatalf("unexpected image %+v", img)
	}
	if img.Alt != "Image for: Calm Lake" {
		t.Fatalf("expected fallback alt text, got %q", img.Alt)
	}
	if !strings.HasSuffix(img.PhotographerURL, "utm_medium=referral") {
		t.Fatalf("expected utm params, got %q", img.PhotographerURL)
	}

	if again := s.SearchImage(context.Background(), "  calm lake "); again == nil || again.URL != img.URL {
		t.Fatalf("expected cached image, got %+v", again)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", hits)
	}
}

func TestImageSearcherDisabledAndFailures(t *testing.T) {
	var hits int32
	s := NewImageSearcher("http://unused", "", nil, 0, zap.NewNop())
	if s.SearchImage(context.Background(), "sunrise") != nil {
		t.Fatalf("expected nil image without access key")
	}

	srv := newUnsplashServer(t, http.StatusForbidden, &hits)
	s = NewImageSearcher(srv.URL, "key", nil, 0, zap.NewNop())
	if s.SearchImage(context.Background(), "sunrise") != nil {
		t.Fatalf("expected nil image on upstream error")
	}
	// Los errores no se cachean.
	s.SearchImage(context.Background(), "sunrise")
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected failures not cached, got %d calls", hits)
	}
}

func TestAttachImages(t *testing.T) {
	var hits int32
	srv := newUnsplashServer(t, http.StatusOK, &hits)
	s := NewImageSearcher(srv.URL, "key", nil, 0, zap.NewNop())

	posts := []domain.Post{
		{PostID: "a", ImageKeywords: "artisan bread"},
		{PostID: "b", Content: strings.Repeat("é", 100)},
	}
	refs := []*domain.Post{&posts[0], &posts[1]}
	s.AttachImages(context.Background(), refs)

	for _, p := range posts {
		if p.SuggestedImage == nil {
			t.Fatalf("expected image on post %s", p.PostID)
		}
	}
	if q := imageQuery(posts[1]); len([]rune(q)) != 60 {
		t.Fatalf("expected content query truncated to 60 runes, got %d", len([]rune(q)))
	}
}

func TestMemoryImageCacheExpires(t *testing.T) {
	c := NewMemoryImageCache().(*memoryImageCache)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(context.Background(), "Sea", []domain.Image{{URL: "u"}}, 30*time.Minute)
	if _, ok, _ := c.Get(context.Background(), "sea"); !ok {
		t.Fatalf("expected hit before ttl")
	}
	now = now.Add(30 * time.Minute)
	if _, ok, _ := c.Get(context.Background(), "sea"); ok {
		t.Fatalf("expected miss after ttl")
	}
}

type mockRedisKV struct {
	store   map[string]string
	lastTTL time.Duration
	getErr  error
}

func (m *mockRedisKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	v, ok := m.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mockRedisKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.store[key] = string(value.([]byte))
	m.lastTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func TestRedisImageCache(t *testing.T) {
	kv := &mockRedisKV{store: map[string]string{}}
	c := &redisImageCache{client: kv, prefix: "images:q:"}
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "forest"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, " Forest ", []domain.Image{{URL: "f"}}, DefaultImageCacheTTL); err != nil {
		t.Fatalf("unexpected set error %v", err)
	}
	if _, ok := kv.store["images:q:forest"]; !ok {
		t.Fatalf("expected normalized key, got %v", kv.store)
	}
	if kv.lastTTL != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %v", kv.lastTTL)
	}
	images, ok, err := c.Get(ctx, "FOREST")
	if err != nil || !ok || len(images) != 1 || images[0].URL != "f" {
		t.Fatalf("unexpected get result %v %v %v", images, ok, err)
	}

	kv.getErr = errors.New("redis down")
	if _, ok, err := c.Get(ctx, "forest"); ok || err == nil {
		t.Fatalf("expected error on redis failure")
	}
}

func TestImageSearcherSharedFetchSurvivesCallerCancel(t *testing.T) {
	var hits int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			close(started)
		}
		<-release
		_, _ = w.Write([]byte(unsplashBody))
	}))
	t.Cleanup(srv.Close)
	s := NewImageSearcher(srv.URL, "key", nil, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *domain.Image, 1)
	go func() { done <- s.SearchImage(ctx, "ocean") }()

	<-started
	cancel()
	close(release)

	if img := <-done; img == nil || img.URL != "https://img/1.jpg" {
		t.Fatalf("expected shared fetch to finish after caller cancel, got %+v", img)
	}
	if again := s.SearchImage(context.Background(), "ocean"); again == nil {
		t.Fatalf("expected result cached for later callers")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}
