package tasks

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

// maximum title length in characters
const MaxTitleLength = 200

// sortable columns accepted by List
var sortColumns = map[string]string{
	"title":      "title",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"completed":  "completed",
}

// represents a task owned by one user
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// data for a new task
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// partial update; nil fields are left unchanged
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// filtering and ordering for List
type ListOptions struct {
	Completed *bool
	SortBy    string
	Ascending bool
}

// aggregate counts for one user
type Stats struct {
	Total          int     `json:"total_tasks"`
	Completed      int     `json:"completed_tasks"`
	Pending        int     `json:"pending_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

// task persistence, always scoped to the owning user
type Store interface {
	Create(ctx context.Context, userID int64, req CreateTaskRequest) (*Task, error)
	List(ctx context.Context, userID int64, opts ListOptions) ([]Task, error)
	Get(ctx context.Context, taskID, userID int64) (*Task, error)
	Update(ctx context.Context, taskID, userID int64, req UpdateTaskRequest) (*Task, error)
	BulkUpdate(ctx context.Context, userID int64, taskIDs []int64, req UpdateTaskRequest) ([]Task, error)
	Delete(ctx context.Context, taskID, userID int64) error
	Stats(ctx context.Context, userID int64) (*Stats, error)
}

// returns the column to sort by, defaulting to created_at
func (o ListOptions) sortColumn() string {
	if col, ok := sortColumns[o.SortBy]; ok {
		return col
	}

	return "created_at"
}

// computes derived stats fields
func newStats(total, completed int) *Stats {
	stats := &Stats{
		Total:     total,
		Completed: completed,
		Pending:   total - completed,
	}

	if total > 0 {
		rate := float64(completed) / float64(total) * 100
		stats.CompletionRate = float64(int(rate*100+0.5)) / 100
	}

	return stats
}
