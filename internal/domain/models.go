package domain

import "time"

// Domain contains core models shared by the client and its collaborators.

// Eviction reasons.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonForbidden    = "forbidden"
)

// Eviction records a forced removal of the stored auth token after the backend
// rejected a request with 401 or 403.
type Eviction struct {
	Reason    string    `json:"reason"`
	Status    int       `json:"status"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	EvictedAt time.Time `json:"evicted_at"`
}
