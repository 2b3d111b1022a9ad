package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/observability/metrics"
)

const (
	DefaultMaxSessions     = 1000
	DefaultTTL             = 12 * time.Hour
	DefaultCleanupInterval = time.Minute
	teardownTimeout        = 5 * time.Second
)

// Registry holds live workspaces keyed by session id with an idle TTL and a
// capacity limit. Dropped workspaces have their timers released and their
// hand-off values cleared.
type Registry struct {
	mu          sync.Mutex
	workspaces  map[string]*Workspace
	deps        Deps
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

func NewRegistry(deps Deps, maxSessions int, ttl time.Duration) *Registry {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		workspaces:  make(map[string]*Workspace),
		deps:        deps,
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// ValidSessionID reports whether id could have been issued by NewSessionID.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get retrieves a workspace and refreshes its last access time.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[id]
	if !ok {
		return nil, false
	}
	ws.LastAccess = r.now()
	return ws, true
}

// Open returns the workspace for id, creating it when absent. At capacity
// the least recently used workspace is evicted first.
func (r *Registry) Open(id string) *Workspace {
	r.mu.Lock()
	if ws, ok := r.workspaces[id]; ok {
		ws.LastAccess = r.now()
		r.mu.Unlock()
		return ws
	}

	var evicted *Workspace
	if len(r.workspaces) >= r.maxSessions {
		for _, ws := range r.workspaces {
			if evicted == nil || ws.LastAccess.Before(evicted.LastAccess) {
				evicted = ws
			}
		}
		delete(r.workspaces, evicted.ID)
	}

	ws := newWorkspace(id, r.deps, r.now())
	r.workspaces[id] = ws
	count := len(r.workspaces)
	r.mu.Unlock()

	metrics.SetActiveSessions(count)
	if evicted != nil {
		logger.Log.WithField("session_id", evicted.ID).Info("evicted least recently used workspace")
		r.release(evicted)
	}
	return ws
}

// Cleanup drops workspaces idle for longer than the TTL.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	var expired []*Workspace
	for id, ws := range r.workspaces {
		if ws.LastAccess.Before(cutoff) {
			expired = append(expired, ws)
			delete(r.workspaces, id)
		}
	}
	count := len(r.workspaces)
	r.mu.Unlock()

	metrics.SetActiveSessions(count)
	for _, ws := range expired {
		r.release(ws)
	}
	if len(expired) > 0 {
		logger.Log.WithField("expired", len(expired)).Info("expired idle workspaces")
	}
}

// StartCleanup starts a background cleanup goroutine and returns a stop function.
func (r *Registry) StartCleanup(interval time.Duration) func() {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				r.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Close releases every workspace. Hand-off values are kept so a restarted
// process backed by a shared store can pick them up again.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Workspace, 0, len(r.workspaces))
	for id, ws := range r.workspaces {
		all = append(all, ws)
		delete(r.workspaces, id)
	}
	r.mu.Unlock()

	metrics.SetActiveSessions(0)
	for _, ws := range all {
		ws.teardown()
	}
}

func (r *Registry) release(ws *Workspace) {
	ws.teardown()

	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()
	if err := r.deps.Backend.Clear(ctx, ws.ID); err != nil {
		logger.Log.WithError(err).WithField("session_id", ws.ID).Warn("failed to clear session hand-off")
	}
}
