package tasks

import (
	"encoding/json"

	"codeberg.org/tasklist/server/api/rest/pagination"
	"codeberg.org/tasklist/server/tasklist/tasks"
)

// TaskListResponse for GET /todos; pagination is set only when limit or offset was given
type TaskListResponse struct {
	Todos      []tasks.Task     `json:"todos"`
	Count      int              `json:"count"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// TaskResponse wraps a single task
type TaskResponse struct {
	Message string      `json:"message,omitempty"`
	Todo    *tasks.Task `json:"todo"`
}

// BulkUpdateResponse for PUT /todos/bulk-update
type BulkUpdateResponse struct {
	Message string       `json:"message"`
	Todos   []tasks.Task `json:"todos"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTaskRequest for POST /todos
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskRequest for PUT /todos/:id; completed is raw so a non-boolean can be reported
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Completed   json.RawMessage `json:"completed"`
}

// BulkUpdateRequest applies the same updates to several tasks
type BulkUpdateRequest struct {
	TodoIDs []int64                    `json:"todo_ids"`
	Updates map[string]json.RawMessage `json:"updates"`
}
