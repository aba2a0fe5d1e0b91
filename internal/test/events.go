package test

import (
	"context"
	"sync"

	"github.com/omnicart/fulfillment/internal/event"
)

// PublisherRecorder captures published envelopes for assertions.
type PublisherRecorder struct {
	mu        sync.Mutex
	Keys      []string
	Envelopes []event.Envelope

	PublishFn func(context.Context, string, event.Envelope) error
}

// Publish records the envelope or delegates to the override.
func (p *PublisherRecorder) Publish(ctx context.Context, key string, env event.Envelope) error {
	if p.PublishFn != nil {
		return p.PublishFn(ctx, key, env)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Keys = append(p.Keys, key)
	p.Envelopes = append(p.Envelopes, env)
	return nil
}

// Published returns a snapshot of the captured envelopes.
func (p *PublisherRecorder) Published() []event.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Envelope, len(p.Envelopes))
	copy(out, p.Envelopes)
	return out
}

// Kinds returns the envelope kinds in publish order.
func (p *PublisherRecorder) Kinds() []event.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]event.Kind, 0, len(p.Envelopes))
	for _, env := range p.Envelopes {
		kinds = append(kinds, env.Kind)
	}
	return kinds
}
