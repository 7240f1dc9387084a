package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/task-service/internal/domain"
)

// TaskStatusRepository exposes the read-only classifier table.
type TaskStatusRepository interface {
	List(ctx context.Context) ([]domain.TaskStatus, error)
	GetByID(ctx context.Context, id int64) (*domain.TaskStatus, error)
}

type taskStatusRepository struct {
	pool *pgxpool.Pool
}

// NewTaskStatusRepository returns a Postgres-backed implementation.
func NewTaskStatusRepository(pool *pgxpool.Pool) TaskStatusRepository {
	return &taskStatusRepository{pool: pool}
}

func (r *taskStatusRepository) List(ctx context.Context) ([]domain.TaskStatus, error) {
	const query = `SELECT id, name FROM task_statuses ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TaskStatus
	for rows.Next() {
		var status domain.TaskStatus
		if err := rows.Scan(&status.ID, &status.Name); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}

func (r *taskStatusRepository) GetByID(ctx context.Context, id int64) (*domain.TaskStatus, error) {
	const query = `SELECT id, name FROM task_statuses WHERE id=$1`
	var status domain.TaskStatus
	if err := r.pool.QueryRow(ctx, query, id).Scan(&status.ID, &status.Name); err != nil {
		return nil, err
	}
	return &status, nil
}
