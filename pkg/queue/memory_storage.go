package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements all queue repository interfaces for testing and
// local development.
type MemoryStorage struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task

	byStatus map[TaskStatus][]uuid.UUID

	lockTicker *time.Ticker
	done       chan struct{}
}

// NewMemoryStorage creates a new in-memory storage implementation
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		tasks:    make(map[uuid.UUID]*Task),
		byStatus: make(map[TaskStatus][]uuid.UUID),
		done:     make(chan struct{}),
	}

	// Recover tasks locked by workers that died mid-processing.
	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationLoop()

	return ms
}

// Close stops the background goroutines
func (ms *MemoryStorage) Close() error {
	close(ms.done)
	ms.lockTicker.Stop()
	return nil
}

// CreateTask implements EnqueuerRepository
func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}

	// Clone to prevent external modifications.
	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy
	ms.byStatus[task.Status] = append(ms.byStatus[task.Status], task.ID)

	return nil
}

// ClaimTask implements WorkerRepository. The oldest claimable pending task
// wins.
func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Task
	for _, taskID := range ms.byStatus[TaskStatusPending] {
		task := ms.tasks[taskID]

		if !slices.Contains(queues, task.Queue) {
			continue
		}
		if task.ScheduledAt.After(now) {
			continue
		}
		if task.LockedUntil != nil && task.LockedUntil.After(now) {
			continue
		}
		if best == nil || task.ScheduledAt.Before(best.ScheduledAt) {
			best = task
		}
	}

	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	ms.removeFromStatusIndex(best.ID, TaskStatusPending)
	ms.byStatus[TaskStatusProcessing] = append(ms.byStatus[TaskStatusProcessing], best.ID)

	taskCopy := *best
	return &taskCopy, nil
}

// CompleteTask implements WorkerRepository
func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %s not found", taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil

	ms.removeFromStatusIndex(taskID, TaskStatusProcessing)
	ms.byStatus[TaskStatusCompleted] = append(ms.byStatus[TaskStatusCompleted], taskID)

	return nil
}

// FailTask implements WorkerRepository. Tasks with retries left are reset
// to pending with a linear backoff; exhausted tasks stay failed.
func (ms *MemoryStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %s not found", taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	ms.removeFromStatusIndex(taskID, TaskStatusProcessing)
	if task.RetryCount >= task.MaxRetries {
		task.Status = TaskStatusFailed
		ms.byStatus[TaskStatusFailed] = append(ms.byStatus[TaskStatusFailed], taskID)
	} else {
		task.Status = TaskStatusPending
		ms.byStatus[TaskStatusPending] = append(ms.byStatus[TaskStatusPending], taskID)

		// 30s, 60s, 90s... keeps persistent failures from hammering the
		// provider API.
		task.ScheduledAt = time.Now().Add(time.Duration(task.RetryCount) * 30 * time.Second)
	}

	return nil
}

// TaskByID returns a copy of the stored task, for tests and inspection.
func (ms *MemoryStorage) TaskByID(taskID uuid.UUID) (*Task, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return nil, false
	}
	taskCopy := *task
	return &taskCopy, true
}

// PendingTasks returns copies of all pending tasks, for tests and
// inspection.
func (ms *MemoryStorage) PendingTasks() []*Task {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]*Task, 0, len(ms.byStatus[TaskStatusPending]))
	for _, taskID := range ms.byStatus[TaskStatusPending] {
		taskCopy := *ms.tasks[taskID]
		out = append(out, &taskCopy)
	}
	return out
}

func (ms *MemoryStorage) removeFromStatusIndex(taskID uuid.UUID, status TaskStatus) {
	ms.byStatus[status] = slices.DeleteFunc(ms.byStatus[status], func(id uuid.UUID) bool {
		return id == taskID
	})
}

func (ms *MemoryStorage) lockExpirationLoop() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

// expireLocks resets processing tasks whose lock has lapsed back to
// pending so another worker can claim them.
func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for _, taskID := range ms.byStatus[TaskStatusProcessing] {
		task := ms.tasks[taskID]
		if task.LockedUntil != nil && task.LockedUntil.Before(now) {
			task.Status = TaskStatusPending
			task.LockedUntil = nil
			task.LockedBy = nil

			ms.removeFromStatusIndex(taskID, TaskStatusProcessing)
			ms.byStatus[TaskStatusPending] = append(ms.byStatus[TaskStatusPending], taskID)
		}
	}
}
