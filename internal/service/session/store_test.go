package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/edabot/internal/core"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStore_GetOrCreate(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		setup       func(s *Store)
		id          string
		wantHistory int
		wantLen     int
	}{
		{
			name:        "unseen id creates empty session",
			setup:       func(s *Store) {},
			id:          "a",
			wantHistory: 0,
			wantLen:     1,
		},
		{
			name: "existing session returns history",
			setup: func(s *Store) {
				s.GetOrCreate("a")
				s.Append("a",
					core.Turn{Role: core.RoleUser, Content: "hi"},
					core.Turn{Role: core.RoleAssistant, Content: "hello"},
				)
			},
			id:          "a",
			wantHistory: 2,
			wantLen:     1,
		},
		{
			name: "distinct ids are independent",
			setup: func(s *Store) {
				s.GetOrCreate("a")
				s.Append("a", core.Turn{Role: core.RoleUser, Content: "hi"})
			},
			id:          "b",
			wantHistory: 0,
			wantLen:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(time.Hour)
			s.SetClock(fixedClock(base))
			tt.setup(s)

			history := s.GetOrCreate(tt.id)

			if len(history) != tt.wantHistory {
				t.Errorf("history length = %d, want %d", len(history), tt.wantHistory)
			}
			if s.Len() != tt.wantLen {
				t.Errorf("store length = %d, want %d", s.Len(), tt.wantLen)
			}
		})
	}
}

func TestStore_Eviction(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := NewStore(time.Hour)
	s.SetClock(fixedClock(base))
	s.GetOrCreate("a")
	s.Append("a", core.Turn{Role: core.RoleUser, Content: "hi"})

	// Just inside the window: history survives.
	s.SetClock(fixedClock(base.Add(time.Hour)))
	if got := s.GetOrCreate("a"); len(got) != 1 {
		t.Errorf("history inside window = %d turns, want 1", len(got))
	}

	// Past the window: the id behaves like a brand-new session.
	s.SetClock(fixedClock(base.Add(2*time.Hour + time.Second)))
	if got := s.GetOrCreate("a"); len(got) != 0 {
		t.Errorf("history past window = %d turns, want 0", len(got))
	}
}

func TestStore_EvictionDiscardsOtherSessions(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := NewStore(time.Hour)
	s.SetClock(fixedClock(base))
	s.GetOrCreate("stale")
	s.GetOrCreate("fresh")

	s.SetClock(fixedClock(base.Add(30 * time.Minute)))
	s.GetOrCreate("fresh")

	// Accessing one id sweeps the other expired one too.
	s.SetClock(fixedClock(base.Add(61 * time.Minute)))
	s.GetOrCreate("fresh")

	if s.Len() != 1 {
		t.Errorf("store length = %d, want 1", s.Len())
	}
}

func TestStore_Sweep(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := NewStore(time.Hour)
	s.SetClock(fixedClock(base))
	for i := 0; i < 5; i++ {
		s.GetOrCreate(fmt.Sprintf("s%d", i))
	}

	if removed := s.Sweep(base.Add(30 * time.Minute)); removed != 0 {
		t.Errorf("early sweep removed %d, want 0", removed)
	}
	if removed := s.Sweep(base.Add(2 * time.Hour)); removed != 5 {
		t.Errorf("late sweep removed %d, want 5", removed)
	}
	if s.Len() != 0 {
		t.Errorf("store length = %d, want 0", s.Len())
	}
}

func TestStore_AppendRecreatesEvictedSession(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := NewStore(time.Hour)
	s.SetClock(fixedClock(base))
	s.GetOrCreate("a")
	s.Sweep(base.Add(2 * time.Hour))

	s.Append("a", core.Turn{Role: core.RoleUser, Content: "late"})

	if got := s.GetOrCreate("a"); len(got) != 1 {
		t.Errorf("history = %d turns, want 1", len(got))
	}
}

func TestStore_HistoryIsCopied(t *testing.T) {
	s := NewStore(time.Hour)
	s.GetOrCreate("a")
	s.Append("a", core.Turn{Role: core.RoleUser, Content: "original"})

	history := s.GetOrCreate("a")
	history[0].Content = "mutated"

	if got := s.GetOrCreate("a"); got[0].Content != "original" {
		t.Errorf("stored content = %q, want original", got[0].Content)
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore(time.Hour)
	s.GetOrCreate("a")

	const writers = 10
	const perWriter = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				s.Append("a", core.Turn{Role: core.RoleUser, Content: fmt.Sprintf("w%d-%d", n, j)})
			}
		}(i)
	}
	wg.Wait()

	if got := s.GetOrCreate("a"); len(got) != writers*perWriter {
		t.Errorf("history length = %d, want %d", len(got), writers*perWriter)
	}
}
