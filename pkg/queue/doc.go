// Package queue provides a repository-agnostic task queue for deferred
// work such as social graph imports.
//
// The package is organised around two components:
//
//   - Enqueuer adds tasks to the queue
//   - Worker claims pending tasks and dispatches them to a user supplied Handler
//
// Components interact only through a set of small repository interfaces,
// keeping the business logic decoupled from persistence. The bundled
// MemoryStorage serves tests and local development; production deployments
// back the same interfaces with a database table.
//
// Handlers are typed: NewTaskHandler binds a function taking a payload
// struct to the task name derived from that struct's type, so enqueueing a
// payload and registering its handler stay in sync without string
// constants.
//
// A claimed task is locked for a bounded duration; locks left behind by a
// crashed worker expire and the task becomes claimable again. Failed tasks
// are retried with a linear backoff until their retry budget is spent.
//
// # Usage
//
//	type StoreFriendsPayload struct {
//	    UserID uuid.UUID
//	}
//
//	func example(repo queue.EnqueuerRepository) error {
//	    e, err := queue.NewEnqueuer(repo)
//	    if err != nil {
//	        return err
//	    }
//	    return e.Enqueue(context.Background(), StoreFriendsPayload{UserID: id})
//	}
//
// Package-level sentinel errors (e.g. ErrNoHandlers) signal violations of
// business invariants and can be checked with errors.Is.
package queue
