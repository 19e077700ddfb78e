package events

import "context"

// NoopPublisher discards all events. Used when no broker is configured -
// every publish succeeds and nothing leaves the process.
type NoopPublisher struct{}

// NewNoopPublisher creates a new no-op publisher instance.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish does nothing and always succeeds.
func (p *NoopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}

// Close does nothing and always succeeds.
func (p *NoopPublisher) Close() error {
	return nil
}
