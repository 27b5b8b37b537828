package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

// Factory builds a fresh orchestrator for one surface of a new session.
type Factory func(orchestrator.Surface) *orchestrator.Orchestrator

// Session owns one client's text and PDF orchestrators. Nothing in it is
// shared with other sessions.
type Session struct {
	ID   string
	Text *orchestrator.Orchestrator
	PDF  *orchestrator.Orchestrator

	lastSeen time.Time
}

func (s *Session) surface(sf orchestrator.Surface) *orchestrator.Orchestrator {
	if sf == orchestrator.SurfacePDF {
		return s.PDF
	}
	return s.Text
}

func (s *Session) close() {
	s.Text.Clear()
	s.PDF.Clear()
}

// Sessions is the registry of live sessions. Idle sessions are dropped lazily
// on the next Create or Get.
type Sessions struct {
	mu    sync.Mutex
	byID  map[string]*Session
	build Factory
	ttl   time.Duration
	max   int
	now   func() time.Time
	log   *zap.Logger
}

// NewSessions returns an empty registry. A zero ttl keeps sessions until
// deleted; a zero max leaves the count unbounded.
func NewSessions(build Factory, ttl time.Duration, limit int, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{
		byID:  make(map[string]*Session),
		build: build,
		ttl:   ttl,
		max:   limit,
		now:   time.Now,
		log:   log,
	}
}

func (s *Sessions) Create() *Session {
	sess := &Session{
		ID:   uuid.NewString(),
		Text: s.build(orchestrator.SurfaceText),
		PDF:  s.build(orchestrator.SurfacePDF),
	}

	s.mu.Lock()
	now := s.now()
	s.sweepLocked(now)
	if s.max > 0 && len(s.byID) >= s.max {
		s.evictOldestLocked()
	}
	sess.lastSeen = now
	s.byID[sess.ID] = sess
	n := len(s.byID)
	s.mu.Unlock()

	s.log.Debug("session created", zap.String("session", sess.ID), zap.Int("live", n))
	return sess
}

// Get returns the session and marks it used.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	sess, ok := s.byID[id]
	if ok {
		sess.lastSeen = now
	}
	return sess, ok
}

func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.byID[id]
	delete(s.byID, id)
	s.mu.Unlock()
	if ok {
		sess.close()
	}
	return ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Sessions) sweepLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.byID {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.byID, id)
			sess.close()
			s.log.Debug("session expired", zap.String("session", id))
		}
	}
}

func (s *Sessions) evictOldestLocked() {
	var oldest *Session
	for _, sess := range s.byID {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.byID, oldest.ID)
		oldest.close()
		s.log.Info("session evicted", zap.String("session", oldest.ID))
	}
}
