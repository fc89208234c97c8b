package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/beatmatch/backend/internal/modules/payment/domain"
)

type PgOrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new PostgreSQL-based payment order repository.
func NewOrderRepository(db *sqlx.DB) *PgOrderRepository {
	return &PgOrderRepository{db: db}
}

func (r *PgOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = time.Now()

	query := `
        INSERT INTO payment_orders (
            id, user_id, amount, currency, provider_order_id, status, created_at, updated_at
        ) VALUES (
            :id, :user_id, :amount, :currency, :provider_order_id, :status, :created_at, :updated_at
        )`
	_, err := r.db.NamedExecContext(ctx, query, order)
	return err
}

func (r *PgOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order := &domain.Order{}
	err := r.db.GetContext(ctx, order, `SELECT * FROM payment_orders WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PgOrderRepository) GetByProviderID(ctx context.Context, providerOrderID string) (*domain.Order, error) {
	order := &domain.Order{}
	err := r.db.GetContext(ctx, order,
		`SELECT * FROM payment_orders WHERE provider_order_id = $1`, providerOrderID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PgOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
