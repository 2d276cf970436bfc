package out

import "context"

// Observer streams paths that changed below root. The channel closes when
// ctx ends or Close is called.
type Observer interface {
	Watch(ctx context.Context, root string) (<-chan string, error)
	Close() error
}
