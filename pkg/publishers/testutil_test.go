package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-request-client/internal/domain"
)

func sampleEvent() Event {
	evt := NewEvent(domain.Eviction{
		Reason:    domain.ReasonUnauthorized,
		Status:    401,
		Method:    "GET",
		URL:       "https://api.samvad.test/me/",
		EvictedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	return evt
}
