package health

import "context"

// Backend is a registered search engine that can report availability.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
}
