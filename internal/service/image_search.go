package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"post-recommender/internal/domain"
	"post-recommender/internal/metrics"
)

const (
	DefaultUnsplashBaseURL = "https://api.unsplash.com"

	imageQueryFallbackRunes = 60
	imageAttachParallelism  = 4
	unsplashFetchTimeout    = 10 * time.Second
	unsplashUTM             = "?utm_source=social_post_recommender&utm_medium=referral"
)

// ImageSearcher busca fotos de stock en Unsplash. Sin access key no hace nada y los
// posts se devuelven sin imagen.
type ImageSearcher struct {
	baseURL   string
	accessKey string
	client    *http.Client
	cache     ImageCache
	ttl       time.Duration
	logger    *zap.Logger
	group     singleflight.Group
}

func NewImageSearcher(baseURL, accessKey string, cache ImageCache, ttl time.Duration, logger *zap.Logger) *ImageSearcher {
	if baseURL == "" {
		baseURL = DefaultUnsplashBaseURL
	}
	if cache == nil {
		cache = NewMemoryImageCache()
	}
	if ttl <= 0 {
		ttl = DefaultImageCacheTTL
	}
	return &ImageSearcher{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		client:    &http.Client{Timeout: unsplashFetchTimeout},
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *ImageSearcher) Enabled() bool {
	return s != nil && strings.TrimSpace(s.accessKey) != ""
}

// SearchImage devuelve la primera foto para la query, o nil. Nunca falla: los errores
// se loguean y se tratan como "sin imagen".
func (s *ImageSearcher) SearchImage(ctx context.Context, query string) *domain.Image {
	if !s.Enabled() {
		return nil
	}
	key := normalizeImageQuery(query)
	if key == "" {
		return nil
	}

	images, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("image cache get failed", zap.Error(err))
	}
	if ok {
		metrics.IncImageCache("hit")
		return firstImage(images)
	}
	metrics.IncImageCache("miss")

	// La busqueda compartida no se cancela con el request que la inicio.
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unsplashFetchTimeout)
		defer cancel()
		found, err := s.fetch(fetchCtx, query)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(fetchCtx, key, found, s.ttl); err != nil {
			s.logger.Warn("image cache set failed", zap.Error(err))
		}
		return found, nil
	})
	if err != nil {
		s.logger.Warn("image search failed", zap.Error(err), zap.String("query", key))
		return nil
	}
	return firstImage(v.([]domain.Image))
}

func firstImage(images []domain.Image) *domain.Image {
	if len(images) == 0 {
		return nil
	}
	img := images[0]
	return &img
}

type unsplashSearchResponse struct {
	Results []struct {
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"results"`
}

func (s *ImageSearcher) fetch(ctx context.Context, query string) ([]domain.Image, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "3")
	params.Set("orientation", "landscape")
	params.Set("content_filter", "high")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+s.accessKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.ObserveUpstream("unsplash", start)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash http error: status=%d", resp.StatusCode)
	}

	var body unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	images := make([]domain.Image, 0, len(body.Results))
	for _, r := range body.Results {
		alt := r.AltDescription
		if alt == "" {
			alt = "Image for: " + query
		}
		images = append(images, domain.Image{
			URL:             r.URLs.Regular,
			ThumbURL:        r.URLs.Small,
			Alt:             alt,
			Photographer:    r.User.Name,
			PhotographerURL: r.User.Links.HTML + unsplashUTM,
			UnsplashURL:     r.Links.HTML + unsplashUTM,
		})
	}
	return images, nil
}

// AttachImages agrega una foto sugerida a cada post usando image_keywords o el inicio
// del contenido. Las busquedas corren en paralelo.
func (s *ImageSearcher) AttachImages(ctx context.Context, posts []*domain.Post) {
	if !s.Enabled() || len(posts) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageAttachParallelism)
	for _, p := range posts {
		g.Go(func() error {
			p.SuggestedImage = s.SearchImage(gctx, imageQuery(*p))
			return nil
		})
	}
	_ = g.Wait()
}

func imageQuery(p domain.Post) string {
	if q := strings.TrimSpace(p.ImageKeywords); q != "" {
		return q
	}
	runes := []rune(p.Content)
	if len(runes) > imageQueryFallbackRunes {
		runes = runes[:imageQueryFallbackRunes]
	}
	return string(runes)
}
