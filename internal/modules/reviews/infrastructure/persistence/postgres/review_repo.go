package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/beatmatch/backend/internal/modules/reviews/domain"
)

type PgReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL-based review repository.
func NewReviewRepository(db *sqlx.DB) *PgReviewRepository {
	return &PgReviewRepository{db: db}
}

func (r *PgReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.IsActive = true
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	review.UpdatedAt = time.Now()

	query := `
        INSERT INTO reviews (
            id, musician_id, reviewer_id, rating, title, comment, event_type,
            musician_reply, helpful_count, is_active, created_at, updated_at
        ) VALUES (
            :id, :musician_id, :reviewer_id, :rating, :title, :comment, :event_type,
            :musician_reply, :helpful_count, :is_active, :created_at, :updated_at
        )`
	_, err := r.db.NamedExecContext(ctx, query, review)
	return err
}

func (r *PgReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review := &domain.Review{}
	err := r.db.GetContext(ctx, review, `SELECT * FROM reviews WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

// ListForMusician returns the musician's active reviews in the requested
// order. Ties always break on creation time, newest first, so pagination is
// stable.
func (r *PgReviewRepository) ListForMusician(ctx context.Context, musicianID uuid.UUID, sortBy string, limit, offset int) ([]domain.ReviewWithReviewer, error) {
	orderBy := "r.created_at DESC"
	switch sortBy {
	case domain.SortHighest:
		orderBy = "r.rating DESC, r.created_at DESC"
	case domain.SortLowest:
		orderBy = "r.rating ASC, r.created_at DESC"
	}

	reviews := []domain.ReviewWithReviewer{}
	query := fmt.Sprintf(`SELECT r.*, u.first_name AS reviewer_first_name, u.last_name AS reviewer_last_name
	          FROM reviews r
	          JOIN users u ON u.id = r.reviewer_id
	          WHERE r.musician_id = $1 AND r.is_active = TRUE
	          ORDER BY %s
	          LIMIT $2 OFFSET $3`, orderBy)
	err := r.db.SelectContext(ctx, &reviews, query, musicianID, limit, offset)
	return reviews, err
}

// Aggregate computes the mean and the 1..5 distribution over active rows.
func (r *PgReviewRepository) Aggregate(ctx context.Context, musicianID uuid.UUID) (*domain.RatingSummary, error) {
	summary := &domain.RatingSummary{
		Distribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}

	var agg struct {
		Average float64 `db:"average"`
		Total   int     `db:"total"`
	}
	query := `SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0) AS average, COUNT(*) AS total
	          FROM reviews WHERE musician_id = $1 AND is_active = TRUE`
	if err := r.db.GetContext(ctx, &agg, query, musicianID); err != nil {
		return nil, err
	}
	summary.AverageRating = agg.Average
	summary.TotalReviews = agg.Total

	rows := []struct {
		Rating int `db:"rating"`
		Count  int `db:"count"`
	}{}
	distQuery := `SELECT rating, COUNT(*) AS count FROM reviews
	              WHERE musician_id = $1 AND is_active = TRUE GROUP BY rating`
	if err := r.db.SelectContext(ctx, &rows, distQuery, musicianID); err != nil {
		return nil, err
	}
	for _, row := range rows {
		summary.Distribution[strconv.Itoa(row.Rating)] = row.Count
	}
	return summary, nil
}

func (r *PgReviewRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	if patch.Rating != nil {
		setClauses = append(setClauses, fmt.Sprintf("rating = $%d", argIndex))
		args = append(args, *patch.Rating)
		argIndex++
	}
	addString := func(column string, value *string) {
		if value != nil {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
			args = append(args, *value)
			argIndex++
		}
	}
	addString("title", patch.Title)
	addString("comment", patch.Comment)
	addString("event_type", patch.EventType)

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now())
	argIndex++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE reviews SET %s WHERE id = $%d AND is_active = TRUE",
		strings.Join(setClauses, ", "), argIndex)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return r.GetByID(ctx, id)
}

// SoftDelete hides the review from listings and aggregates. The row stays.
func (r *PgReviewRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET is_active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *PgReviewRepository) SetReply(ctx context.Context, id uuid.UUID, reply string) (*domain.Review, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET musician_reply = $2, updated_at = $3 WHERE id = $1 AND is_active = TRUE`,
		id, reply, time.Now())
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return r.GetByID(ctx, id)
}
