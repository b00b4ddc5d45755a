package audit

import "context"

// Store persists audit events. The Postgres implementation is an outbox;
// the memory implementation backs tests and local runs.
type Store interface {
	Append(ctx context.Context, event Event) error
}
