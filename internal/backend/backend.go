// Package backend talks to the ws-flare REST services (users, projects,
// jobs, monitor) using their LoopBack-style filter query encoding.
package backend

import "context"

// Querier reads filtered collections.
type Querier interface {
	Find(ctx context.Context, resource string, filter Filter, out any) error
	Count(ctx context.Context, resource string, where Where) (int64, error)
}

// Writer performs plain reads and writes against resource paths.
type Writer interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Put(ctx context.Context, path string, body any, out any) error
	PostBasicAuth(ctx context.Context, path, username, password string, out any) error
}

// Service is a full backend connection.
type Service interface {
	Querier
	Writer
}
