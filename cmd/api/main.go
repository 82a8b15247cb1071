package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"post-recommender/internal/config"
	"post-recommender/internal/corpus"
	"post-recommender/internal/db"
	apihttp "post-recommender/internal/http"
	"post-recommender/internal/llm"
	"post-recommender/internal/repository"
	"post-recommender/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	posts, err := loadCorpus(cfg.CorpusPath)
	if err != nil {
		logger.Fatal("load corpus", zap.Error(err), zap.String("path", cfg.CorpusPath))
	}
	logger.Info("corpus loaded", zap.Int("posts", posts.Len()))

	var (
		feedbackRepo repository.FeedbackRepository
		imageCache   service.ImageCache
		limiter      service.RateLimiter
	)

	pool, err := db.NewPool(ctx, cfg)
	switch {
	case errors.Is(err, db.ErrNoDatabase):
		logger.Info("feedback persistence disabled")
	case err != nil:
		logger.Warn("db connect failed, feedback will only be logged", zap.Error(err))
	default:
		defer pool.Close()
		repo := repository.NewPgFeedbackRepository(pool)
		if err := db.Ping(ctx, pool); err != nil {
			logger.Warn("db ping failed, feedback will only be logged", zap.Error(err))
		} else if err := repo.EnsureSchema(ctx); err != nil {
			logger.Warn("feedback schema failed", zap.Error(err))
		} else {
			feedbackRepo = repo
		}
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			imageCache = service.NewRedisImageCache(redisClient)
			limiter = service.NewRedisRateLimiter(redisClient, time.Minute, cfg.RateLimitPerMinute)
		}
		cancel()
	}
	if limiter == nil {
		limiter = service.NewMemoryRateLimiter(time.Minute, cfg.RateLimitPerMinute)
	}

	if cfg.LLMAPIKey == "" {
		logger.Warn("llm api key not configured, analysis will use fallback posts")
	}
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, logger)

	images := service.NewImageSearcher(cfg.UnsplashBaseURL, cfg.UnsplashAccessKey, imageCache, cfg.ImageCacheTTL, logger)
	if !images.Enabled() {
		logger.Info("unsplash access key not configured, posts will have no images")
	}

	recHandler := apihttp.NewRecommendationHandler(
		logger,
		service.NewEmotionAnalyzer(llmClient, logger),
		service.NewRecommendationEngine(posts),
		service.NewPostGenerator(llmClient, logger),
		images,
		service.NewFeedbackService(feedbackRepo, logger),
	)
	router := apihttp.NewRouter(logger, recHandler, limiter, apihttp.RouterOptions{
		StaticDir:      cfg.StaticDir,
		MetricsEnabled: cfg.MetricsEnabled,
		TrustedProxies: cfg.TrustedProxies,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func loadCorpus(path string) (*corpus.Corpus, error) {
	if path == "" {
		return corpus.Default()
	}
	return corpus.LoadFile(path)
}
