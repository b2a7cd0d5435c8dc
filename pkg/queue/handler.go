package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type (
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) error
	}

	TaskHandlerFunc[T any] func(ctx context.Context, payload T) error
)

// NewTaskHandler binds a typed handler function to the task name derived
// from the payload type.
func NewTaskHandler[T any](handler TaskHandlerFunc[T]) Handler {
	var payload T
	return &taskHandler[T]{
		name:    qualifiedStructName(payload),
		handler: handler,
	}
}

type taskHandler[T any] struct {
	name    string
	handler TaskHandlerFunc[T]
}

func (h *taskHandler[T]) Name() string {
	return h.name
}

func (h *taskHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	return h.handler(ctx, t)
}

// qualifiedStructName names a task after its payload type, e.g.
// "socialgraph.StoreFriendsTask".
func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
