package event

import (
	"context"

	"github.com/rs/zerolog/log"

	"hangar/pkg/bus"
)

// subjectPrefix namespaces all published subjects, e.g. hangar.apps.app.published.
const subjectPrefix = "hangar.apps."

// Publisher forwards events to a NATS bus. Publish failures are logged
// and dropped; event delivery never blocks or fails an operation.
type Publisher struct {
	bus *bus.Bus
}

// NewPublisher returns a Sink that publishes events to NATS.
func NewPublisher(b *bus.Bus) *Publisher {
	return &Publisher{bus: b}
}

func (p *Publisher) Emit(ctx context.Context, name string, fields map[string]any) {
	if p == nil || p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, subjectPrefix+name, fields); err != nil {
		log.Warn().Err(err).Str("event", name).Msg("publish event")
	}
}
