package cache

import (
	"encoding/json"
	"time"
)

// Entry is a value held by the memory backend.
type Entry struct {
	// Value is the cached JSON document
	Value json.RawMessage

	// ExpiresAt is when the entry stops being served
	ExpiresAt time.Time
}

// NewEntry creates an entry for value that expires ttl after now.
func NewEntry(value json.RawMessage, now time.Time, ttl time.Duration) Entry {
	return Entry{
		Value:     cloneValue(value),
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the entry is no longer valid at now.
func (e Entry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// TTL returns the time left until expiration.
// Returns 0 if already expired.
func (e Entry) TTL(now time.Time) time.Duration {
	ttl := e.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}

func cloneValue(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out
}
