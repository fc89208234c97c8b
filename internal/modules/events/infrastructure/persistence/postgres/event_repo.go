package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/beatmatch/backend/internal/modules/events/domain"
)

type PgEventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new PostgreSQL-based event repository.
func NewEventRepository(db *sqlx.DB) *PgEventRepository {
	return &PgEventRepository{db: db}
}

func (r *PgEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = domain.StatusOpen
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.UpdatedAt = time.Now()

	query := `
        INSERT INTO events (
            id, event_type, event_date, location, instruments, budget_min,
            budget_max, description, status, created_by, created_at, updated_at
        ) VALUES (
            :id, :event_type, :event_date, :location, :instruments, :budget_min,
            :budget_max, :description, :status, :created_by, :created_at, :updated_at
        )`
	_, err := r.db.NamedExecContext(ctx, query, event)
	return err
}

func (r *PgEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	event := &domain.Event{}
	err := r.db.GetContext(ctx, event, `SELECT * FROM events WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListOpen returns every open event newest-first with the poster's public
// fields joined in.
func (r *PgEventRepository) ListOpen(ctx context.Context) ([]domain.EventWithCreator, error) {
	events := []domain.EventWithCreator{}
	query := `SELECT e.*, u.first_name AS creator_first_name, u.last_name AS creator_last_name
	          FROM events e
	          JOIN users u ON u.id = e.created_by
	          WHERE e.status = 'open'
	          ORDER BY e.created_at DESC`
	err := r.db.SelectContext(ctx, &events, query)
	return events, err
}

func (r *PgEventRepository) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events WHERE status = 'open'`)
	return count, err
}

func (r *PgEventRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]domain.Event, error) {
	events := []domain.Event{}
	query := `SELECT * FROM events WHERE created_by = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &events, query, creatorID)
	return events, err
}

func (r *PgEventRepository) Update(ctx context.Context, id uuid.UUID, patch domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	addString := func(column string, value *string) {
		if value != nil {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
			args = append(args, *value)
			argIndex++
		}
	}
	addString("event_type", patch.EventType)
	addString("event_date", patch.EventDate)
	addString("location", patch.Location)
	if patch.Instruments != nil {
		setClauses = append(setClauses, fmt.Sprintf("instruments = $%d", argIndex))
		args = append(args, pq.Array(*patch.Instruments))
		argIndex++
	}
	if patch.BudgetMin != nil {
		setClauses = append(setClauses, fmt.Sprintf("budget_min = $%d", argIndex))
		args = append(args, *patch.BudgetMin)
		argIndex++
	}
	if patch.BudgetMax != nil {
		setClauses = append(setClauses, fmt.Sprintf("budget_max = $%d", argIndex))
		args = append(args, *patch.BudgetMax)
		argIndex++
	}
	addString("description", patch.Description)

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now())
	argIndex++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argIndex)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrEventNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PgEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Close flips an open event to closed. The status guard in the WHERE clause
// makes concurrent closes race-safe: exactly one caller wins, the rest see
// the conflict.
func (r *PgEventRepository) Close(ctx context.Context, id, closerID uuid.UUID) (*domain.Event, error) {
	query := `UPDATE events
	          SET status = 'closed', closed_by = $2, closed_at = $3, updated_at = $3
	          WHERE id = $1 AND status = 'open'`
	res, err := r.db.ExecContext(ctx, query, id, closerID, time.Now())
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either missing or already closed; look to tell which.
		event, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if event.Status == domain.StatusClosed {
			return nil, domain.ErrEventClosed
		}
		return nil, domain.ErrEventNotFound
	}
	return r.GetByID(ctx, id)
}
