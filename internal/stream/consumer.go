// Package stream consumes queued search requests from a message broker and
// publishes completed results.
package stream

import "context"

type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
