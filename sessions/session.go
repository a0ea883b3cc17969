package sessions

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one logical unit of work on a project, bounded by
// Start/End and correlated to one backing document.
type Session struct {
	ID                string    // Generated identifier (timestamp + random suffix)
	Project           string    // Project this session belongs to
	DocumentID        string    // Correlated document id (empty until attached)
	DocumentName      string    // Deterministic display name (project + operator + date)
	StartedAt         time.Time // When the session was started
	Objective         string    // What this session sets out to do
	Template          string    // Template kind used for document entries
	PreviousSessionID string    // Most recent earlier session for the same project, if any
	Active            bool      // Exactly one session may be active at a time
}

// newSessionID generates a monotonic-ish identifier: a millisecond
// timestamp for ordering plus a random suffix for uniqueness.
func newSessionID(now time.Time) string {
	return fmt.Sprintf("session-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
