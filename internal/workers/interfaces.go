// Package workers runs the CLI's background workers, such as the vault's
// idle locker, for the lifetime of a command.
package workers

import "context"

// Worker is a background task. Run blocks until ctx is done.
type Worker interface {
	Run(ctx context.Context)
}

// WorkerFunc adapts a function to [Worker].
type WorkerFunc func(ctx context.Context)

func (f WorkerFunc) Run(ctx context.Context) { f(ctx) }
