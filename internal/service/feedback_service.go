package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"post-recommender/internal/domain"
	"post-recommender/internal/metrics"
	"post-recommender/internal/repository"
)

var ErrInvalidFeedback = errors.New("invalid feedback")

// FeedbackService registra si un post le sirvio al usuario. Sin repo solo loguea.
type FeedbackService struct {
	repo   repository.FeedbackRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewFeedbackService(repo repository.FeedbackRepository, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, logger: logger, now: time.Now}
}

func (s *FeedbackService) Record(ctx context.Context, postID string, helpful bool) error {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return ErrInvalidFeedback
	}

	s.logger.Info("feedback", zap.String("post_id", postID), zap.Bool("helpful", helpful))
	metrics.IncFeedback(helpful)

	if s.repo == nil {
		return nil
	}
	return s.repo.Create(ctx, domain.Feedback{
		PostID:    postID,
		Helpful:   helpful,
		CreatedAt: s.now().UTC(),
	})
}
