package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/task-service/internal/domain"
)

// TaskFilter captures list parameters. OwnerID is mandatory: listing is
// always scoped to the calling principal.
type TaskFilter struct {
	OwnerID            string
	StatusID           *int64
	SearchTerm         *string
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
	UpdatedFrom        *time.Time
	UpdatedTo          *time.Time
	CompleteBeforeFrom *time.Time
	CompleteBeforeTo   *time.Time
	CompletedFrom      *time.Time
	CompletedTo        *time.Time
	OrderBy            string
	OrderDesc          bool
}

// sortableColumns whitelists ordering keys; anything else falls back to
// the default created_at descending ordering.
var sortableColumns = map[string]string{
	"id":              "t.id",
	"title":           "t.title",
	"status":          "t.status_id",
	"created_at":      "t.created_at",
	"updated_at":      "t.updated_at",
	"complete_before": "t.complete_before",
	"completed_at":    "t.completed_at",
}

// TaskRepository encapsulates task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `t.id, t.owner_id, t.status_id, s.name, t.title, t.description,
               t.created_at, t.updated_at, t.complete_before, t.completed_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (id, owner_id, status_id, title, description, complete_before, completed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.StatusID,
		task.Title,
		task.Description,
		task.CompleteBefore,
		task.CompletedAt,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET status_id=$1, title=$2, description=$3,
            complete_before=$4, completed_at=$5, updated_at=NOW()
        WHERE id=$6 AND owner_id=$7
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		task.StatusID,
		task.Title,
		task.Description,
		task.CompleteBefore,
		task.CompletedAt,
		task.ID,
		task.OwnerID,
	).Scan(&task.UpdatedAt)
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM tasks t JOIN task_statuses s ON s.id = t.status_id
        WHERE t.id=$1`, taskColumns)

	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.OwnerID,
		&task.StatusID,
		&task.StatusName,
		&task.Title,
		&task.Description,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.CompleteBefore,
		&task.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM tasks WHERE id=$1 AND owner_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	base := fmt.Sprintf(`SELECT %s
             FROM tasks t JOIN task_statuses s ON s.id = t.status_id`, taskColumns)

	args := []any{filter.OwnerID}
	clauses := []string{"t.owner_id=$1"}

	if filter.StatusID != nil {
		args = append(args, *filter.StatusID)
		clauses = append(clauses, fmt.Sprintf("t.status_id=$%d", len(args)))
	}
	addRange := func(column string, from, to *time.Time) {
		if from != nil {
			args = append(args, *from)
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", column, len(args)))
		}
		if to != nil {
			args = append(args, *to)
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", column, len(args)))
		}
	}
	addRange("t.created_at", filter.CreatedFrom, filter.CreatedTo)
	addRange("t.updated_at", filter.UpdatedFrom, filter.UpdatedTo)
	addRange("t.complete_before", filter.CompleteBeforeFrom, filter.CompleteBeforeTo)
	addRange("t.completed_at", filter.CompletedFrom, filter.CompletedTo)

	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + escapeLike(strings.ToLower(strings.TrimSpace(*filter.SearchTerm))) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.title) LIKE %s OR LOWER(t.description) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s`,
		base, strings.Join(clauses, " AND "), orderClause(filter))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so search terms match
// literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func orderClause(filter TaskFilter) string {
	column, ok := sortableColumns[filter.OrderBy]
	if !ok {
		return "t.created_at DESC"
	}
	if filter.OrderDesc {
		return column + " DESC"
	}
	return column + " ASC"
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.OwnerID,
			&task.StatusID,
			&task.StatusName,
			&task.Title,
			&task.Description,
			&task.CreatedAt,
			&task.UpdatedAt,
			&task.CompleteBefore,
			&task.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
