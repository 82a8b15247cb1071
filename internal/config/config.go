package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio. Ningun campo es obligatorio:
// sin LLM_API_KEY el analisis falla y los handlers devuelven posts de respaldo.
type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"3001"`
	LLMAPIKey          string        `env:"LLM_API_KEY"`
	LLMBaseURL         string        `env:"LLM_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai"`
	LLMModel           string        `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	UnsplashAccessKey  string        `env:"UNSPLASH_ACCESS_KEY"`
	UnsplashBaseURL    string        `env:"UNSPLASH_BASE_URL" envDefault:"https://api.unsplash.com"`
	ImageCacheTTL      time.Duration `env:"IMAGE_CACHE_TTL" envDefault:"30m"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	CorpusPath         string        `env:"CORPUS_PATH"`
	StaticDir          string        `env:"STATIC_DIR" envDefault:"client/build"`
	MetricsEnabled     bool          `env:"METRICS_ENABLED" envDefault:"true"`
	TrustedProxies     []string      `env:"TRUSTED_PROXIES" envSeparator:","`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
