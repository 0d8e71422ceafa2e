package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// handles task database operations
type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// timeout bounds every call; non-positive values fall back to five seconds
func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Repository{db: db, timeout: timeout}
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Repository) Create(ctx context.Context, userID int64, req CreateTaskRequest) (*Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return scanTask(r.db.QueryRow(ctx, queryCreate, userID, req.Title, req.Description))
}

func (r *Repository) List(ctx context.Context, userID int64, opts ListOptions) ([]Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	direction := "DESC"
	if opts.Ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf(queryList, opts.sortColumn(), direction, direction)

	rows, err := r.db.Query(ctx, query, userID, opts.Completed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// initialize empty slice to avoid null in JSON responses
	list := []Task{}

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}

		list = append(list, *task)
	}

	return list, rows.Err()
}

func (r *Repository) Get(ctx context.Context, taskID, userID int64) (*Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return scanTask(r.db.QueryRow(ctx, queryGet, taskID, userID))
}

func (r *Repository) Update(ctx context.Context, taskID, userID int64, req UpdateTaskRequest) (*Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return scanTask(r.db.QueryRow(ctx, queryUpdate, taskID, userID, req.Title, req.Description, req.Completed))
}

// applies one update to every listed task the user owns; ErrTaskNotFound if none matched
func (r *Repository) BulkUpdate(ctx context.Context, userID int64, taskIDs []int64, req UpdateTaskRequest) ([]Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, queryBulkUpdate, userID, taskIDs, req.Title, req.Description, req.Completed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updated := []Task{}

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}

		updated = append(updated, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(updated) == 0 {
		return nil, ErrTaskNotFound
	}

	return updated, nil
}

func (r *Repository) Delete(ctx context.Context, taskID, userID int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, queryDelete, taskID, userID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *Repository) Stats(ctx context.Context, userID int64) (*Stats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total, completed int

	if err := r.db.QueryRow(ctx, queryStats, userID).Scan(&total, &completed); err != nil {
		return nil, err
	}

	return newStats(total, completed), nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var task Task

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	}

	if err != nil {
		return nil, err
	}

	return &task, nil
}
