package terminal

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"clipper/internal/clipper"
)

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func TestManager_OpenAppendsNotice(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: &stubDispatcher{}, Notices: constSource(0.9), Now: fixedNow})
	snap := m.Open("sid", clipper.MacOS)

	want := len(clipper.Banner) + len(clipper.StartupNotice(constSource(0.9)))
	if len(snap.Transcript) != want {
		t.Fatalf("transcript has %d entries, want %d", len(snap.Transcript), want)
	}
	if snap.Transcript[len(clipper.Banner)].Kind != KindWarning {
		t.Errorf("notice kind = %v", snap.Transcript[len(clipper.Banner)].Kind)
	}
	if snap.Platform != clipper.MacOS || snap.ID != "sid" || snap.Cursor != -1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestManager_OpenWithoutNotice(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: &stubDispatcher{}, Notices: constSource(0.1)})
	if snap := m.Open("sid", clipper.Linux); len(snap.Transcript) != len(clipper.Banner) {
		t.Errorf("got %d entries", len(snap.Transcript))
	}
}

func TestManager_OpenResetsSession(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: &stubDispatcher{}})
	m.Open("sid", clipper.Linux)
	m.Do("sid", func(s *Session) { s.Submit("hello") })

	snap := m.Open("sid", clipper.Linux)
	if len(snap.History) != 0 || len(snap.Transcript) != len(clipper.Banner) {
		t.Errorf("session not reset: %+v", snap)
	}
}

func TestManager_DoCreatesLazily(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: &stubDispatcher{}})
	var got clipper.Platform = clipper.Windows
	m.Do("new", func(s *Session) { got = s.Platform() })
	if got != clipper.Unknown {
		t.Errorf("platform = %v", got)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestManager_CloseAndSnapshot(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: &stubDispatcher{}})
	m.Open("a", clipper.Linux)
	if _, ok := m.Snapshot("a"); !ok {
		t.Fatal("snapshot missing")
	}
	m.Close("a")
	m.Close("a")
	if _, ok := m.Snapshot("a"); ok {
		t.Error("snapshot after close")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	now := epoch
	m := NewManager(ManagerOptions{
		Dispatcher:  &stubDispatcher{},
		MaxSessions: 2,
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	m.Open("a", clipper.Linux)
	m.Open("b", clipper.Linux)
	m.Do("a", func(*Session) {})
	m.Open("c", clipper.Linux)

	if m.Len() != 2 {
		t.Fatalf("Len = %d", m.Len())
	}
	if _, ok := m.Snapshot("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, id := range []string{"a", "c"} {
		if _, ok := m.Snapshot(id); !ok {
			t.Errorf("%s evicted", id)
		}
	}
}

func TestManager_ConcurrentSubmits(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: clipper.New(clipper.Options{Source: clipper.NewSource(1)})})
	m.Open("sid", clipper.Linux)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Do("sid", func(s *Session) { s.Submit(fmt.Sprintf("echo-%d", i)) })
		}(i)
	}
	wg.Wait()

	snap, _ := m.Snapshot("sid")
	if len(snap.History) != 20 {
		t.Errorf("history has %d entries", len(snap.History))
	}
	seen := map[uint64]bool{}
	for _, e := range snap.Transcript {
		if seen[e.ID] {
			t.Fatalf("duplicate entry id %d", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestManager_Sweep(t *testing.T) {
	now := epoch
	m := NewManager(ManagerOptions{Dispatcher: &stubDispatcher{}, Now: func() time.Time { return now }})
	m.Open("old", clipper.Linux)
	now = now.Add(10 * time.Minute)
	m.Open("fresh", clipper.Linux)

	if n := m.Sweep(5 * time.Minute); n != 1 {
		t.Fatalf("swept %d sessions, want 1", n)
	}
	if _, ok := m.Snapshot("old"); ok {
		t.Error("old session survived sweep")
	}
	if _, ok := m.Snapshot("fresh"); !ok {
		t.Error("fresh session swept")
	}
}

func TestManager_ReleaseKeepsNewerSession(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: &stubDispatcher{}})
	first := m.Open("sid", clipper.Linux)
	second := m.Open("sid", clipper.Linux)
	if second.Generation <= first.Generation {
		t.Fatalf("generations %d then %d", first.Generation, second.Generation)
	}

	if m.Release("sid", first.Generation) {
		t.Error("stale release closed the reopened session")
	}
	if _, ok := m.Snapshot("sid"); !ok {
		t.Fatal("session gone after stale release")
	}
	if !m.Release("sid", second.Generation) {
		t.Error("current release did not close the session")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d", m.Len())
	}
}

// echoDispatcher keeps no state, so sessions may dispatch in parallel.
type echoDispatcher struct{}

func (echoDispatcher) Dispatch(line string, _ clipper.Platform) clipper.Outcome {
	return clipper.Outcome{Lines: []clipper.Line{{Text: "echo " + line}}}
}

func TestManager_OpenWhileSubmitting(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: echoDispatcher{}})
	m.Open("sid", clipper.Linux)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			snap := m.Open("sid", clipper.Linux)
			if len(snap.History) != 0 || len(snap.Transcript) != len(clipper.Banner) {
				t.Errorf("fresh snapshot carries later input: %+v", snap)
			}
		}()
		go func() {
			defer wg.Done()
			m.Do("sid", func(s *Session) { s.Submit("help") })
		}()
	}
	wg.Wait()

	if m.Len() != 1 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestManager_EvictionTieKeepsNewest(t *testing.T) {
	m := NewManager(ManagerOptions{Dispatcher: &stubDispatcher{}, MaxSessions: 2, Now: fixedNow})
	for _, id := range []string{"a", "b", "c", "d"} {
		m.Open(id, clipper.Linux)
		if _, ok := m.Snapshot(id); !ok {
			t.Fatalf("%s evicted by its own Open", id)
		}
	}
	for _, id := range []string{"c", "d"} {
		if _, ok := m.Snapshot(id); !ok {
			t.Errorf("%s evicted before older sessions", id)
		}
	}

	m.Do("e", func(*Session) {})
	if _, ok := m.Snapshot("e"); !ok {
		t.Error("lazily created session evicted by its own Do")
	}
	if _, ok := m.Snapshot("d"); !ok {
		t.Error("newest opened session evicted on a tie")
	}
}
