package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"post-recommender/internal/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, fb domain.Feedback) error
}

const feedbackSchema = `
	CREATE TABLE IF NOT EXISTS post_feedback (
		id         BIGSERIAL PRIMARY KEY,
		post_id    TEXT NOT NULL,
		helpful    BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type PgFeedbackRepository struct {
	pool *pgxpool.Pool
}

func NewPgFeedbackRepository(pool *pgxpool.Pool) *PgFeedbackRepository {
	return &PgFeedbackRepository{pool: pool}
}

// EnsureSchema crea la tabla si no existe. Es idempotente.
func (r *PgFeedbackRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, feedbackSchema)
	return err
}

func (r *PgFeedbackRepository) Create(ctx context.Context, fb domain.Feedback) error {
	const query = `
		INSERT INTO post_feedback (post_id, helpful, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query,
		fb.PostID,
		fb.Helpful,
		fb.CreatedAt,
	)
	return err
}
