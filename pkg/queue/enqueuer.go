package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository defines the interface for task creation
type EnqueuerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
}

// Enqueuer handles task enqueueing
type Enqueuer struct {
	repo         EnqueuerRepository
	defaultQueue string
}

// EnqueuerOption is a functional option for configuring an Enqueuer
type EnqueuerOption func(*Enqueuer)

// WithDefaultQueue sets the default queue name
func WithDefaultQueue(queue string) EnqueuerOption {
	return func(e *Enqueuer) {
		if queue != "" {
			e.defaultQueue = queue
		}
	}
}

// NewEnqueuer creates a new Enqueuer
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	e := &Enqueuer{
		repo:         repo,
		defaultQueue: DefaultQueueName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EnqueueOption is a functional option for the Enqueue method
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	queue      string
	maxRetries int8
	delay      time.Duration
	taskName   string
}

// WithQueue sets the queue for the task
func WithQueue(queue string) EnqueueOption {
	return func(o *enqueueOptions) {
		if queue != "" {
			o.queue = queue
		}
	}
}

// WithMaxRetries sets the maximum number of retries (0-10)
// Capped at 10 to prevent infinite retry loops on persistent failures
func WithMaxRetries(maxRetries int8) EnqueueOption {
	return func(o *enqueueOptions) {
		if maxRetries >= 0 && maxRetries <= 10 {
			o.maxRetries = maxRetries
		}
	}
}

// WithDelay sets a delay before the task can be processed
func WithDelay(delay time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if delay > 0 {
			o.delay = delay
		}
	}
}

// WithTaskName sets a custom task name
func WithTaskName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.taskName = name
		}
	}
}

// Enqueue adds a new task to the queue. The task name defaults to the
// payload's qualified struct name, matching NewTaskHandler.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) error {
	if payload == nil {
		return ErrPayloadNil
	}

	options := &enqueueOptions{
		queue:      e.defaultQueue,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(options)
	}

	task, err := buildTask(payload, options)
	if err != nil {
		return err
	}

	if err := e.repo.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("failed to create task %q in queue %q: %w", task.TaskName, task.Queue, err)
	}
	return nil
}

func buildTask(payload any, options *enqueueOptions) (*Task, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload of type %T: %w", payload, err)
	}

	taskName := options.taskName
	if taskName == "" {
		taskName = qualifiedStructName(payload)
	}

	now := time.Now()
	return &Task{
		ID:          uuid.New(),
		Queue:       options.queue,
		TaskName:    taskName,
		Payload:     payloadBytes,
		Status:      TaskStatusPending,
		MaxRetries:  options.maxRetries,
		ScheduledAt: now.Add(options.delay),
		CreatedAt:   now,
	}, nil
}
