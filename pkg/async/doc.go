// Package async provides simple, generic helpers for running computations
// asynchronously and waiting for their completion.
//
// The package is centred around the generic type Future that represents
// the eventual result of an asynchronous operation. A Future is obtained
// by calling Async, which starts the supplied function in its own
// goroutine and immediately returns a *Future instance. The caller can
// then wait for completion with Await or block with a timeout using
// AwaitWithTimeout. WaitAll coordinates multiple concurrent tasks of the
// same result type.
//
// All helpers are context-aware: if the provided context is cancelled
// before the computation starts, the Future completes with the context
// error.
//
// # Usage
//
//	future := async.Async(ctx, client, func(ctx context.Context, c *graph.Client) (profile.Raw, error) {
//	    return profile.FetchProfile(ctx, c)
//	})
//	raw, err := future.Await()
package async
