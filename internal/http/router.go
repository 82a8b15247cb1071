package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"post-recommender/internal/service"
)

// RouterOptions agrupa lo opcional del router.
type RouterOptions struct {
	StaticDir      string
	MetricsEnabled bool
	// TrustedProxies son los proxies cuyo X-Forwarded-For se acepta. Vacio: se usa la IP del socket.
	TrustedProxies []string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	recH *RecommendationHandler,
	limiter service.RateLimiter,
	opts RouterOptions,
) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, using socket address", zap.Error(err), zap.Strings("proxies", opts.TrustedProxies))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), securityHeadersMiddleware(), corsMiddleware(), bodyLimitMiddleware(MaxBodyBytes))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api", RateLimitMiddleware(limiter), jsonContentTypeMiddleware())
	api.POST("/analyze-emotion", recH.AnalyzeEmotion)
	api.GET("/recommend-posts", recH.RecommendPosts)
	api.POST("/generate-posts", recH.GeneratePosts)
	api.POST("/feedback", recH.Feedback)
	api.GET("/crisis-resources", recH.CrisisResources)

	r.NoRoute(spaHandler(opts.StaticDir))

	return r
}

// spaHandler sirve el build del cliente y cae a index.html para rutas del cliente.
func spaHandler(staticDir string) gin.HandlerFunc {
	index := filepath.Join(staticDir, "index.html")
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || staticDir == "" {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found."})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		name := filepath.Join(staticDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found."})
			return
		}
		c.File(index)
	}
}
