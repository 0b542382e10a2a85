package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "matchpredict_session"

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// sessionRegistry maps session cookies to controllers, one per browser page session.
type sessionRegistry struct {
	ttl     time.Duration
	limit   int
	newCtrl func(ctx context.Context) *Controller
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionRegistry(ttl time.Duration, limit int, newCtrl func(ctx context.Context) *Controller) *sessionRegistry {
	return &sessionRegistry{
		ttl:      ttl,
		limit:    limit,
		newCtrl:  newCtrl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// lookup returns the controller of the request's session, if it is still live.
func (r *sessionRegistry) lookup(req *http.Request) (*Controller, bool) {
	cookie, err := req.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[cookie.Value]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.ctrl, true
}

// obtain returns the request's controller, creating a session and setting the
// cookie on w when there is none. Creating a controller loads the match list.
func (r *sessionRegistry) obtain(w http.ResponseWriter, req *http.Request) *Controller {
	if ctrl, ok := r.lookup(req); ok {
		return ctrl
	}

	id := uuid.NewString()
	ctrl := r.newCtrl(req.Context())

	r.mu.Lock()
	r.sessions[id] = &session{ctrl: ctrl, lastSeen: r.now()}
	evicted := r.evictLocked()
	r.mu.Unlock()

	for _, old := range evicted {
		old.Close()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Debug("Session created", "session", id)
	return ctrl
}

// evictLocked drops the least recently seen sessions while the registry is
// over its limit. r.mu must be held.
func (r *sessionRegistry) evictLocked() []*Controller {
	if r.limit <= 0 {
		return nil
	}

	var evicted []*Controller
	for len(r.sessions) > r.limit {
		var oldestID string
		var oldest *session
		for id, s := range r.sessions {
			if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
				oldestID, oldest = id, s
			}
		}
		delete(r.sessions, oldestID)
		evicted = append(evicted, oldest.ctrl)
		slog.Debug("Session evicted", "session", oldestID)
	}
	return evicted
}

// sweep drops sessions idle for longer than the TTL.
func (r *sessionRegistry) sweep() int {
	cutoff := r.now().Add(-r.ttl)

	var expired []*Controller
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s.ctrl)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Close()
	}
	return len(expired)
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// run sweeps periodically until ctx is done, then closes every session.
func (r *sessionRegistry) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				slog.Debug("Expired sessions removed", "count", n)
			}
		}
	}
}

func (r *sessionRegistry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range all {
		s.ctrl.Close()
	}
}
