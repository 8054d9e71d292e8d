package terminal

import (
	"log/slog"
	"sync"
	"time"

	"clipper/internal/clipper"
)

const defaultMaxSessions = 1000

// Snapshot is a point-in-time copy of a session, safe to hand to renderers.
type Snapshot struct {
	ID         string `json:"id"`
	// Generation identifies the Open call that created the session.
	Generation uint64 `json:"generation"`

	Platform   clipper.Platform `json:"platform"`
	Transcript []Entry          `json:"transcript"`
	History    []string         `json:"history"`
	Cursor     int              `json:"cursor"`
	Draft      string           `json:"draft"`
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Dispatcher  Dispatcher
	MaxSessions int
	// Notices drives the update announcement shown when a view opens.
	// Nil disables the announcement.
	Notices clipper.Source
	Now     func() time.Time
}

// Manager keeps the in-memory sessions of every connected browser.
// Sessions are never persisted; Close or eviction drops them for good.
type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*managedSession
	dispatcher  Dispatcher
	maxSessions int
	notices     clipper.Source
	now         func() time.Time
	generation  uint64
}

type managedSession struct {
	mu         sync.Mutex
	session    *Session
	lastUsed   time.Time
	generation uint64
}

// NewManager creates a Manager.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		sessions:    make(map[string]*managedSession),
		dispatcher:  opts.Dispatcher,
		maxSessions: opts.MaxSessions,
		notices:     opts.Notices,
		now:         opts.Now,
	}
	if m.maxSessions <= 0 {
		m.maxSessions = defaultMaxSessions
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Open starts a fresh session for id, replacing any existing one, and
// returns its initial snapshot.
func (m *Manager) Open(id string, p clipper.Platform) Snapshot {
	ms := &managedSession{session: m.newSession(p), lastUsed: m.now()}
	if m.notices != nil {
		for _, l := range clipper.StartupNotice(m.notices) {
			ms.session.Append(l.Kind, l.Text)
		}
	}

	m.mu.Lock()
	m.generation++
	ms.generation = m.generation
	// the snapshot must be taken before ms is visible to Do
	snap := snapshotOf(id, ms)
	m.sessions[id] = ms
	m.evictLocked(id)
	m.mu.Unlock()

	slog.Info("terminal: session opened", "sid", id, "platform", p)
	return snap
}

// Close drops the session for id. Closing an unknown id is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		slog.Info("terminal: session closed", "sid", id)
	}
}

// Release closes the session for id only if it is still the one created by
// the Open call that returned generation. A reloaded view that opened a newer
// session is left alone.
func (m *Manager) Release(id string, generation uint64) bool {
	m.mu.Lock()
	ms, ok := m.sessions[id]
	if ok && ms.generation == generation {
		delete(m.sessions, id)
	} else {
		ok = false
	}
	m.mu.Unlock()
	if ok {
		slog.Info("terminal: session released", "sid", id)
	}
	return ok
}

// Do runs fn with exclusive access to the session for id, creating one for
// an unknown platform if none exists yet.
func (m *Manager) Do(id string, fn func(*Session)) {
	m.mu.Lock()
	ms, ok := m.sessions[id]
	if !ok {
		ms = &managedSession{session: m.newSession(clipper.Unknown), lastUsed: m.now()}
		m.sessions[id] = ms
		m.evictLocked(id)
	}
	ms.lastUsed = m.now()
	m.mu.Unlock()

	ms.mu.Lock()
	defer ms.mu.Unlock()
	fn(ms.session)
}

// Snapshot returns a copy of the session for id.
func (m *Manager) Snapshot(id string) (Snapshot, bool) {
	m.mu.Lock()
	ms, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return snapshotOf(id, ms), true
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions that have not been used for longer than maxIdle and
// returns how many were dropped.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, ms := range m.sessions {
		if ms.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		slog.Info("terminal: idle sessions swept", "count", n, "max_idle", maxIdle)
	}
	return n
}

func (m *Manager) newSession(p clipper.Platform) *Session {
	return NewSession(m.dispatcher, p, WithClock(m.now))
}

// evictLocked drops least recently used sessions until the limit holds.
// keep is never evicted; ties on lastUsed go to the older generation.
func (m *Manager) evictLocked(keep string) {
	for len(m.sessions) > m.maxSessions {
		var oldestID string
		var oldest *managedSession
		for id, ms := range m.sessions {
			if id == keep {
				continue
			}
			if oldest == nil || ms.lastUsed.Before(oldest.lastUsed) ||
				(ms.lastUsed.Equal(oldest.lastUsed) && ms.generation < oldest.generation) {
				oldestID, oldest = id, ms
			}
		}
		if oldest == nil {
			return
		}
		delete(m.sessions, oldestID)
		slog.Warn("terminal: session evicted", "sid", oldestID, "limit", m.maxSessions)
	}
}

func snapshotOf(id string, ms *managedSession) Snapshot {
	s := ms.session
	return Snapshot{
		ID:         id,
		Generation: ms.generation,
		Platform:   s.Platform(),
		Transcript: s.Transcript(),
		History:    s.History(),
		Cursor:     s.Cursor(),
		Draft:      s.Draft(),
	}
}
