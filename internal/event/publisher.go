package event

import "context"

// Publisher delivers envelopes to the event channel. key selects the
// partition; delivery is at-least-once.
type Publisher interface {
	Publish(ctx context.Context, key string, env Envelope) error
}
