package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// in-memory Store used by tests and local runs without postgres
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*Task
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[int64]*Task),
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, userID int64, req CreateTaskRequest) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now().UTC()

	task := &Task{
		ID:          s.nextID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.tasks[task.ID] = task
	copied := *task

	return &copied, nil
}

func (s *MemoryStore) List(_ context.Context, userID int64, opts ListOptions) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []Task{}

	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}

		if opts.Completed != nil && task.Completed != *opts.Completed {
			continue
		}

		list = append(list, *task)
	}

	col := opts.sortColumn()
	sort.SliceStable(list, func(i, j int) bool {
		less, equal := compareTasks(list[i], list[j], col)
		if equal {
			less = list[i].ID < list[j].ID
		}

		if opts.Ascending {
			return less
		}

		return !less
	})

	return list, nil
}

func (s *MemoryStore) Get(_ context.Context, taskID, userID int64) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, ErrTaskNotFound
	}

	copied := *task
	return &copied, nil
}

func (s *MemoryStore) Update(_ context.Context, taskID, userID int64, req UpdateTaskRequest) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, ErrTaskNotFound
	}

	applyUpdate(task, req, s.now().UTC())

	copied := *task
	return &copied, nil
}

func (s *MemoryStore) BulkUpdate(_ context.Context, userID int64, taskIDs []int64, req UpdateTaskRequest) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := []Task{}
	seen := make(map[int64]bool, len(taskIDs))

	for _, id := range taskIDs {
		task, ok := s.tasks[id]
		if !ok || task.UserID != userID || seen[id] {
			continue
		}

		seen[id] = true
		applyUpdate(task, req, s.now().UTC())
		updated = append(updated, *task)
	}

	if len(updated) == 0 {
		return nil, ErrTaskNotFound
	}

	return updated, nil
}

func (s *MemoryStore) Delete(_ context.Context, taskID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return ErrTaskNotFound
	}

	delete(s.tasks, taskID)
	return nil
}

func (s *MemoryStore) Stats(_ context.Context, userID int64) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total, completed int

	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}

		total++
		if task.Completed {
			completed++
		}
	}

	return newStats(total, completed), nil
}

func applyUpdate(task *Task, req UpdateTaskRequest, now time.Time) {
	if req.Title != nil {
		task.Title = *req.Title
	}

	if req.Description != nil {
		task.Description = *req.Description
	}

	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	task.UpdatedAt = now
}

// reports a < b and a == b for the given column
func compareTasks(a, b Task, col string) (bool, bool) {
	switch col {
	case "title":
		return a.Title < b.Title, a.Title == b.Title
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
	case "completed":
		return !a.Completed && b.Completed, a.Completed == b.Completed
	default:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}
