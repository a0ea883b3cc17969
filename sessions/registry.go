// Package sessions owns the single active work session, the per-project
// session history, and the start/continue/end transitions.
package sessions

import (
	"sync"
	"time"

	"github.com/bishnubista/vibe-logger/docindex"
	apperrors "github.com/bishnubista/vibe-logger/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Registry tracks sessions for every project. Invariant: at most one
// session is active at any time; starting a new session deactivates the
// previous one first. Histories are append-only and ordered
// chronologically.
type Registry struct {
	mu        sync.Mutex
	index     *docindex.Index
	operator  string
	histories map[string][]*Session
	byID      map[string]*Session // secondary index, no scans on attach
	active    *Session
	nowTime   func() time.Time
}

// Option defines a function type to modify the Registry instance.
type Option func(*Registry)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *Registry) {
		r.nowTime = nowFunc
	}
}

// New creates a registry. The operator identity feeds the deterministic
// document name; the index supplies same-day document correlation.
func New(index *docindex.Index, operator string, options ...Option) (*Registry, error) {
	if index == nil {
		return nil, errors.New("[sessions.New] document index is required")
	}
	if operator == "" {
		operator = "operator"
	}

	r := &Registry{
		index:     index,
		operator:  operator,
		histories: make(map[string][]*Session),
		byID:      make(map[string]*Session),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// StartResult is returned by Start. IsNewDocument tells the caller that
// no document exists for (project, today) yet and it must create one,
// then report back through AttachDocument.
type StartResult struct {
	Session       *Session
	IsNewDocument bool
}

// Start begins a new session for the project, deactivating any current
// active session regardless of which project it belongs to.
func (r *Registry) Start(project, objective, template string) (*StartResult, error) {
	if project == "" {
		return nil, errors.New("[Registry.Start] project is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		r.active.Active = false
		r.active = nil
	}

	now := r.nowTime()
	session := &Session{
		ID:           newSessionID(now),
		Project:      project,
		DocumentName: docindex.DocumentName(project, r.operator, docindex.DateKey(now)),
		StartedAt:    now,
		Objective:    objective,
		Template:     template,
		Active:       true,
	}

	if history := r.histories[project]; len(history) > 0 {
		session.PreviousSessionID = history[len(history)-1].ID
	}

	documentID, haveDocument := r.index.DocumentIDForToday(project)
	if haveDocument {
		session.DocumentID = documentID
	}

	r.histories[project] = append(r.histories[project], session)
	r.byID[session.ID] = session
	r.active = session

	log.Info().
		Str("session_id", session.ID).
		Str("project", project).
		Bool("new_document", !haveDocument).
		Msg("session started")

	return &StartResult{Session: session, IsNewDocument: !haveDocument}, nil
}

// Continue reactivates the project's most recent session if it was
// started today. A session from a prior day is never carried across the
// day boundary: the caller gets (nil, nil) and must Start fresh.
func (r *Registry) Continue(project string) (*Session, error) {
	if project == "" {
		return nil, errors.New("[Registry.Continue] project is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.histories[project]
	if len(history) == 0 {
		return nil, nil
	}

	session := history[len(history)-1]
	if !r.startedToday(session) {
		return nil, nil
	}

	if r.active != nil && r.active != session {
		r.active.Active = false
	}
	session.Active = true
	r.active = session
	return session, nil
}

// ContinueActive applies the same day-check to the current active
// session. A stale active session is cleared as a side effect of the
// check, not merely reported.
func (r *Registry) ContinueActive() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return nil, nil
	}
	if !r.startedToday(r.active) {
		r.active.Active = false
		r.active = nil
		return nil, nil
	}
	return r.active, nil
}

// End deactivates the active session and returns it so the caller can
// write a closing summary. The session stays in history.
func (r *Registry) End() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return nil, errors.Wrap(apperrors.ErrNoActiveSession, "[Registry.End]")
	}

	session := r.active
	session.Active = false
	r.active = nil

	log.Info().
		Str("session_id", session.ID).
		Str("project", session.Project).
		Msg("session ended")

	return session, nil
}

// AttachDocument records the document created for a session and
// publishes the mapping to the index. This is the only writer of the
// index. Idempotent for a repeated (sessionID, documentID) pair.
func (r *Registry) AttachDocument(sessionID, documentID string) error {
	if documentID == "" {
		return errors.New("[Registry.AttachDocument] documentID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.byID[sessionID]
	if !ok {
		return errors.Errorf("[Registry.AttachDocument] unknown session %q", sessionID)
	}

	session.DocumentID = documentID
	r.index.RecordDocument(session.Project, documentID)
	return nil
}

// MarkDocumentMissing reacts to the collaborator reporting that a
// session's document no longer resolves: the session is invalidated,
// the index entry dropped, and a typed error returned for the caller to
// surface. No replacement document is fabricated here.
func (r *Registry) MarkDocumentMissing(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.byID[sessionID]
	if !ok {
		return errors.Errorf("[Registry.MarkDocumentMissing] unknown session %q", sessionID)
	}

	session.Active = false
	if r.active == session {
		r.active = nil
	}
	r.index.Forget(session.Project)

	log.Warn().
		Str("session_id", session.ID).
		Str("project", session.Project).
		Str("document_id", session.DocumentID).
		Msg("correlated document missing, session invalidated")

	return errors.Wrapf(apperrors.ErrDocumentMissing,
		"document %q for project %q", session.DocumentID, session.Project)
}

// Active returns the current active session, or nil.
func (r *Registry) Active() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// History returns the project's sessions in chronological order.
func (r *Registry) History(project string) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := r.histories[project]
	out := make([]*Session, len(history))
	copy(out, history)
	return out
}

func (r *Registry) startedToday(s *Session) bool {
	return docindex.DateKey(s.StartedAt) == docindex.DateKey(r.nowTime())
}
