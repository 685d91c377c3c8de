// Package event carries lifecycle notifications out of the artifact
// service without entangling them with its control flow. Sinks log,
// publish to NATS, or both; the service never acts on a sink's outcome.
package event

import "context"

// Step names emitted by the artifact service. Tolerated partial failures
// surface here rather than as operation errors.
const (
	AppPublished        = "app.published"
	AppReplaced         = "app.replaced"
	AppRemoved          = "app.removed"
	IconStoreFailed     = "icon.store.failed"
	BlobDeleteFailed    = "blob.delete.failed"
	RecordDeleteRetried = "record.delete.retried"
)

// Sink receives one named event with structured fields per major step of
// a lifecycle operation.
type Sink interface {
	Emit(ctx context.Context, name string, fields map[string]any)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(context.Context, string, map[string]any) {}

// Fanout forwards each event to every wrapped sink in order.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, name string, fields map[string]any) {
	for _, sink := range f {
		sink.Emit(ctx, name, fields)
	}
}
