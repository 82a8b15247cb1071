package http

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"post-recommender/internal/domain"
	"post-recommender/internal/metrics"
	"post-recommender/internal/service"
)

const (
	minTextRunes = 2
	maxTextRunes = 2000
)

// RecommendationHandler expone analisis, ranking, generacion y feedback.
type RecommendationHandler struct {
	logger    *zap.Logger
	analyzer  *service.EmotionAnalyzer
	engine    *service.RecommendationEngine
	generator *service.PostGenerator
	images    *service.ImageSearcher
	feedback  *service.FeedbackService
}

func NewRecommendationHandler(
	logger *zap.Logger,
	analyzer *service.EmotionAnalyzer,
	engine *service.RecommendationEngine,
	generator *service.PostGenerator,
	images *service.ImageSearcher,
	feedback *service.FeedbackService,
) *RecommendationHandler {
	return &RecommendationHandler{
		logger:    logger,
		analyzer:  analyzer,
		engine:    engine,
		generator: generator,
		images:    images,
		feedback:  feedback,
	}
}

type textRequest struct {
	Text *string `json:"text"`
}

// bindText valida el texto libre del usuario; si falla ya respondio 400.
func (h *RecommendationHandler) bindText(c *gin.Context) (string, bool) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		if bodyTooLarge(c, err) {
			return "", false
		}
		badRequest(c, http.StatusBadRequest, "Please provide some text to analyze.")
		return "", false
	}
	trimmed := strings.TrimSpace(*req.Text)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0 && *req.Text == "":
		badRequest(c, http.StatusBadRequest, "Please provide some text to analyze.")
		return "", false
	case n < minTextRunes:
		badRequest(c, http.StatusBadRequest, "Please write a bit more so we can understand how you feel.")
		return "", false
	case n > maxTextRunes:
		badRequest(c, http.StatusBadRequest, "Text is too long. Please keep it under 2000 characters.")
		return "", false
	}
	return trimmed, true
}

// bodyTooLarge responde 413 si el cuerpo supero MaxBodyBytes.
func bodyTooLarge(c *gin.Context, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	badRequest(c, http.StatusRequestEntityTooLarge, "Request body is too large.")
	return true
}

func badRequest(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// AnalyzeEmotion maneja POST /api/analyze-emotion.
func (h *RecommendationHandler) AnalyzeEmotion(c *gin.Context) {
	text, ok := h.bindText(c)
	if !ok {
		return
	}

	profile, err := h.analyzer.Analyze(c.Request.Context(), text)
	if err != nil {
		h.logger.Error("analysis failed", zap.Error(err))
		metrics.IncFallback("analyze-emotion")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":        false,
			"message":        "We're having trouble analyzing emotions right now. Please try again.",
			"fallback_posts": h.engine.RandomPosts(service.DefaultFallbackCount),
		})
		return
	}

	if profile.CrisisIndicators {
		metrics.CrisisResponses.Inc()
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"crisis_mode": true,
			"emotion":     profile,
			"resources":   service.CrisisResources(),
			"posts":       []domain.ScoredPost{},
		})
		return
	}

	posts := h.engine.Recommend(profile, service.DefaultRecommendationCount)
	h.images.AttachImages(c.Request.Context(), scoredRefs(posts))
	metrics.IncRecommendation("analysis")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"crisis_mode": false,
		"emotion":     profile,
		"posts":       posts,
	})
}

// RecommendPosts maneja GET /api/recommend-posts?emotion=&intensity=.
func (h *RecommendationHandler) RecommendPosts(c *gin.Context) {
	emotion := c.Query("emotion")
	if strings.TrimSpace(emotion) == "" {
		badRequest(c, http.StatusBadRequest, "Please provide an emotion parameter.")
		return
	}

	profile := service.ProfileFromQuery(emotion, c.Query("intensity"))
	posts := h.engine.Recommend(profile, service.DefaultRecommendationCount)
	metrics.IncRecommendation("query")

	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

// GeneratePosts maneja POST /api/generate-posts.
func (h *RecommendationHandler) GeneratePosts(c *gin.Context) {
	text, ok := h.bindText(c)
	if !ok {
		return
	}

	out, err := h.generator.Generate(c.Request.Context(), text, service.DefaultGeneratedCount)
	if err != nil {
		h.logger.Error("post generation failed", zap.Error(err))
		metrics.IncFallback("generate-posts")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "We're having trouble generating posts right now. Please try again.",
			"posts":     h.engine.RandomPosts(service.DefaultFallbackCount),
			"generated": false,
		})
		return
	}

	refs := make([]*domain.Post, len(out.Posts))
	for i := range out.Posts {
		refs[i] = &out.Posts[i]
	}
	h.images.AttachImages(c.Request.Context(), refs)
	metrics.IncRecommendation("generated")

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"topic_summary": out.TopicSummary,
		"posts":         out.Posts,
		"generated":     true,
	})
}

// Feedback maneja POST /api/feedback.
func (h *RecommendationHandler) Feedback(c *gin.Context) {
	var req struct {
		PostID  string `json:"postId"`
		Helpful *bool  `json:"helpful"`
	}
	err := c.ShouldBindJSON(&req)
	if bodyTooLarge(c, err) {
		return
	}
	if err != nil || strings.TrimSpace(req.PostID) == "" || req.Helpful == nil {
		badRequest(c, http.StatusBadRequest, "Please provide postId and helpful (boolean).")
		return
	}

	if err := h.feedback.Record(c.Request.Context(), req.PostID, *req.Helpful); err != nil {
		if errors.Is(err, service.ErrInvalidFeedback) {
			badRequest(c, http.StatusBadRequest, "Please provide postId and helpful (boolean).")
			return
		}
		// Best-effort: el feedback ya quedo logueado.
		h.logger.Warn("persist feedback failed", zap.Error(err), zap.String("post_id", req.PostID))
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CrisisResources maneja GET /api/crisis-resources.
func (h *RecommendationHandler) CrisisResources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "resources": service.CrisisResources()})
}

func scoredRefs(posts []domain.ScoredPost) []*domain.Post {
	refs := make([]*domain.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i].Post
	}
	return refs
}
