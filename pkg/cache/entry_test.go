package cache

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "expired entry",
			expiresAt: now.Add(-1 * time.Hour),
			want:      true,
		},
		{
			name:      "valid entry",
			expiresAt: now.Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "expires exactly now",
			expiresAt: now,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Entry{ExpiresAt: tt.expiresAt}
			if got := entry.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	entry := NewEntry(json.RawMessage(`{"a":1}`), now, 5*time.Minute)
	if got := entry.TTL(now); got != 5*time.Minute {
		t.Errorf("TTL() = %v, want %v", got, 5*time.Minute)
	}

	if got := entry.TTL(now.Add(time.Hour)); got != 0 {
		t.Errorf("TTL() after expiry = %v, want 0", got)
	}
}

func TestNewEntry_CopiesValue(t *testing.T) {
	value := json.RawMessage(`{"a":1}`)
	entry := NewEntry(value, time.Now(), time.Minute)

	value[2] = 'b'

	if string(entry.Value) != `{"a":1}` {
		t.Errorf("entry value changed with caller buffer: %s", entry.Value)
	}
}
