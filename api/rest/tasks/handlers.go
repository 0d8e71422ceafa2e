package tasks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"codeberg.org/tasklist/server/api/rest/pagination"
	"codeberg.org/tasklist/server/api/rest/respond"
	"codeberg.org/tasklist/server/internal/auth"
	"codeberg.org/tasklist/server/internal/errors"
	"codeberg.org/tasklist/server/internal/notifications"
	"codeberg.org/tasklist/server/tasklist/tasks"
)

// ListTasksHandler godoc
// @Summary List tasks
// @Description List the caller's tasks with optional completion filter and ordering
// @Tags tasks
// @Produce json
// @Param completed query string false "Filter by completion (true/false)"
// @Param sort_by query string false "title, created_at, updated_at or completed"
// @Param order query string false "asc or desc"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Items to skip"
// @Success 200 {object} TaskListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/todos [get]
// @Security BearerAuth
func ListTasksHandler(store tasks.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		opts := tasks.ListOptions{
			SortBy:    c.DefaultQuery("sort_by", "created_at"),
			Ascending: strings.EqualFold(c.Query("order"), "asc"),
		}

		if raw, ok := c.GetQuery("completed"); ok {
			completed := parseTruthy(raw)
			opts.Completed = &completed
		}

		list, err := store.List(c.Request.Context(), userID, opts)
		if err != nil {
			respond.Error(c, err)
			return
		}

		params, paged := pagination.FromQuery(c)
		if !paged {
			c.JSON(http.StatusOK, TaskListResponse{Todos: list, Count: len(list)})
			return
		}

		start, end := params.Window(len(list))
		meta := pagination.NewMeta(params, len(list))

		c.JSON(http.StatusOK, TaskListResponse{
			Todos:      list[start:end],
			Count:      end - start,
			Pagination: &meta,
		})
	}
}

// CreateTaskHandler godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body CreateTaskRequest true "Task"
// @Success 201 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/todos [post]
// @Security BearerAuth
func CreateTaskHandler(store tasks.Store, notifier *notifications.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req CreateTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		title := strings.TrimSpace(req.Title)
		if msg := validateTitle(title); msg != "" {
			errors.ValidationError(c, "title", msg)
			return
		}

		task, err := store.Create(c.Request.Context(), userID, tasks.CreateTaskRequest{
			Title:       title,
			Description: strings.TrimSpace(req.Description),
		})
		if err != nil {
			respond.Error(c, err)
			return
		}

		notifier.Dispatch(c.Request.Context(), notifications.Event{
			Type:   notifications.EventTaskCreated,
			UserID: userID,
			Data:   map[string]any{"task_id": task.ID, "title": task.Title},
		})

		c.JSON(http.StatusCreated, TaskResponse{Message: "todo created successfully", Todo: task})
	}
}

// GetTaskHandler godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/todos/{id} [get]
// @Security BearerAuth
func GetTaskHandler(store tasks.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		taskID, ok := errors.ParsePathID(c, "id")
		if !ok {
			return
		}

		task, err := store.Get(c.Request.Context(), taskID, userID)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, TaskResponse{Todo: task})
	}
}

// UpdateTaskHandler godoc
// @Summary Update a task
// @Description Partial update; omitted fields are unchanged
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/todos/{id} [put]
// @Security BearerAuth
func UpdateTaskHandler(store tasks.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		taskID, ok := errors.ParsePathID(c, "id")
		if !ok {
			return
		}

		var req UpdateTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		update := tasks.UpdateTaskRequest{Description: req.Description}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if msg := validateTitle(title); msg != "" {
				errors.ValidationError(c, "title", msg)
				return
			}
			update.Title = &title
		}

		if len(req.Completed) > 0 {
			completed, err := parseBool(req.Completed)
			if err != nil {
				errors.ValidationError(c, "completed", "completed must be a boolean value")
				return
			}
			update.Completed = &completed
		}

		task, err := store.Update(c.Request.Context(), taskID, userID, update)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, TaskResponse{Message: "todo updated successfully", Todo: task})
	}
}

// BulkUpdateTasksHandler godoc
// @Summary Update several tasks at once
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body BulkUpdateRequest true "Task ids and updates"
// @Success 200 {object} BulkUpdateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/todos/bulk-update [put]
// @Security BearerAuth
func BulkUpdateTasksHandler(store tasks.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		var req BulkUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		if len(req.TodoIDs) == 0 || len(req.Updates) == 0 {
			errors.ValidationError(c, "todo_ids", "todo ids and updates are required")
			return
		}

		update, field, msg := parseBulkUpdates(req.Updates)
		if msg != "" {
			errors.ValidationError(c, field, msg)
			return
		}

		updated, err := store.BulkUpdate(c.Request.Context(), userID, req.TodoIDs, update)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, BulkUpdateResponse{
			Message: fmt.Sprintf("%d todos updated successfully", len(updated)),
			Todos:   updated,
		})
	}
}

// DeleteTaskHandler godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/todos/{id} [delete]
// @Security BearerAuth
func DeleteTaskHandler(store tasks.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		taskID, ok := errors.ParsePathID(c, "id")
		if !ok {
			return
		}

		if err := store.Delete(c.Request.Context(), taskID, userID); err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "todo deleted successfully"})
	}
}

// StatsHandler godoc
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Success 200 {object} tasks.Stats
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/todos/stats [get]
// @Security BearerAuth
func StatsHandler(store tasks.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		stats, err := store.Stats(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func validateTitle(title string) string {
	if title == "" {
		return "title is required"
	}

	if utf8.RuneCountInString(title) > tasks.MaxTitleLength {
		return fmt.Sprintf("title must be %d characters or less", tasks.MaxTitleLength)
	}

	return ""
}

func parseTruthy(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func parseBool(raw json.RawMessage) (bool, error) {
	var v bool
	err := json.Unmarshal(raw, &v)
	return v, err
}

// returns the update plus the offending field and message when invalid
func parseBulkUpdates(updates map[string]json.RawMessage) (tasks.UpdateTaskRequest, string, string) {
	var update tasks.UpdateTaskRequest

	for field, raw := range updates {
		switch field {
		case "completed":
			completed, err := parseBool(raw)
			if err != nil {
				return update, field, "completed must be a boolean value"
			}
			update.Completed = &completed

		case "title":
			var title string
			if err := json.Unmarshal(raw, &title); err != nil {
				return update, field, "title must be a string"
			}

			// an empty title leaves titles unchanged
			if title = strings.TrimSpace(title); title != "" {
				if msg := validateTitle(title); msg != "" {
					return update, field, msg
				}
				update.Title = &title
			}

		case "description":
			var description string
			if err := json.Unmarshal(raw, &description); err != nil {
				return update, field, "description must be a string"
			}
			update.Description = &description

		default:
			return update, field, "invalid field: " + field
		}
	}

	return update, "", ""
}
