package cache

import (
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{
			name:    "expired entry",
			expires: time.Now().Add(-1 * time.Hour),
			want:    true,
		},
		{
			name:    "valid entry",
			expires: time.Now().Add(1 * time.Hour),
			want:    false,
		},
		{
			name:    "just expired",
			expires: time.Now().Add(-1 * time.Second),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{
				Expires: tt.expires,
			}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	expired := &Entry{Expires: time.Now().Add(-time.Minute)}
	if got := expired.TTL(); got != 0 {
		t.Errorf("TTL() of expired entry = %v, want 0", got)
	}

	valid := &Entry{Expires: time.Now().Add(10 * time.Minute)}
	if got := valid.TTL(); got <= 9*time.Minute || got > 10*time.Minute {
		t.Errorf("TTL() = %v, want ~10m", got)
	}
}

func TestNewEntry(t *testing.T) {
	before := time.Now()
	entry := NewEntry([]byte(`{"id":25}`), 30*time.Minute)

	if string(entry.Data) != `{"id":25}` {
		t.Errorf("Data = %s", entry.Data)
	}
	if entry.CachedAt.Before(before) {
		t.Errorf("CachedAt = %v, should not be before %v", entry.CachedAt, before)
	}
	if got := entry.Expires.Sub(entry.CachedAt); got != 30*time.Minute {
		t.Errorf("Expires - CachedAt = %v, want 30m", got)
	}
}
