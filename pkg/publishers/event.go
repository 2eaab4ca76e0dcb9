package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-request-client/internal/domain"
)

// EventTypeTokenEvicted identifies token eviction events.
const EventTypeTokenEvicted = "session.token_evicted"

// Event represents the payload published downstream.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Eviction  domain.Eviction `json:"eviction"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// NewEvent constructs an Event for the given eviction.
func NewEvent(ev domain.Eviction) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      EventTypeTokenEvicted,
		Eviction:  ev,
		EmittedAt: time.Now().UTC(),
	}
}

// attributes returns the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type": e.Type,
		"reason":     e.Eviction.Reason,
	}
}
