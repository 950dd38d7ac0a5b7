package storefront

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/autocare/autocare-backend/pkg/errors"
	"github.com/autocare/autocare-backend/pkg/logger"
	"github.com/autocare/autocare-backend/pkg/snapshot"
)

// SessionState is the lifecycle position of the session manager.
type SessionState string

const (
	SessionUninitialized  SessionState = "UNINITIALIZED"
	SessionAnonymous      SessionState = "ANONYMOUS"
	SessionAuthenticating SessionState = "AUTHENTICATING"
	SessionAuthenticated  SessionState = "AUTHENTICATED"
)

// Authenticator performs the credential exchange against the identity
// backend.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*Session, error)
}

// SessionManager owns the authenticated-identity lifecycle. The transient
// AUTHENTICATING state is never persisted; only a completed session reaches
// the snapshot store.
type SessionManager struct {
	mu      sync.Mutex
	state   SessionState
	session *Session
	loading bool

	store snapshot.Store
	key   string
	auth  Authenticator
	logg  *logger.Logger

	nextSubID int
	subs      map[int]func(SessionState, *Session)
}

// SessionParams configures a session manager.
type SessionParams struct {
	Store         snapshot.Store
	Key           string
	Authenticator Authenticator
	Logger        *logger.Logger
}

// NewSessionManager builds a session manager in the UNINITIALIZED state.
func NewSessionManager(params SessionParams) (*SessionManager, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if params.Authenticator == nil {
		return nil, fmt.Errorf("authenticator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	key := params.Key
	if key == "" {
		key = SessionSnapshotKey
	}
	return &SessionManager{
		state: SessionUninitialized,
		store: params.Store,
		key:   key,
		auth:  params.Authenticator,
		logg:  params.Logger,
		subs:  map[int]func(SessionState, *Session){},
	}, nil
}

// Hydrate recovers a previously persisted session. A valid snapshot moves the
// manager straight to AUTHENTICATED; otherwise it lands on ANONYMOUS. The
// loading flag stays raised until the check completes so callers never read
// "not yet checked" as "not logged in".
func (m *SessionManager) Hydrate(ctx context.Context) error {
	m.mu.Lock()
	if m.state != SessionUninitialized {
		m.mu.Unlock()
		return nil
	}
	m.loading = true
	m.mu.Unlock()

	var sess Session
	found, err := m.store.Load(ctx, m.key, &sess)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.state = SessionAnonymous
		m.notifyLocked()
		return fmt.Errorf("loading session snapshot: %w", err)
	}
	if found && sess.AccessToken != "" {
		m.session = &sess
		m.state = SessionAuthenticated
	} else {
		m.state = SessionAnonymous
	}
	m.notifyLocked()
	return nil
}

// Authenticate performs the credential exchange. A second call while one is
// already pending is rejected so the final session always corresponds to the
// last completed exchange. On failure the manager returns to ANONYMOUS with
// the session untouched on disk.
func (m *SessionManager) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	m.mu.Lock()
	if m.state == SessionAuthenticating {
		m.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "authentication already in progress")
	}
	prior := m.state
	m.state = SessionAuthenticating
	m.notifyLocked()
	m.mu.Unlock()

	sess, err := m.auth.Authenticate(ctx, email, password)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = SessionAnonymous
		if prior == SessionAuthenticated {
			// A failed re-login ends the prior session rather than keeping a
			// half-valid one.
			m.session = nil
			m.clearSnapshotLocked(ctx)
		}
		m.notifyLocked()
		return nil, classifyAuthError(err)
	}

	m.session = sess
	m.state = SessionAuthenticated
	if saveErr := m.store.Save(ctx, m.key, sess); saveErr != nil {
		m.logg.Warn(ctx, fmt.Sprintf("session: persisting snapshot failed: %v", saveErr))
	}
	m.notifyLocked()
	return sess, nil
}

// EndSession drops to ANONYMOUS and erases the persisted snapshot. It never
// fails, even when no session existed.
func (m *SessionManager) EndSession(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.state = SessionAnonymous
	m.clearSnapshotLocked(ctx)
	m.notifyLocked()
}

// State returns the current lifecycle state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the active session, or nil when anonymous.
func (m *SessionManager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// IsLoading reports whether hydration is still in flight.
func (m *SessionManager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Subscribe registers a listener invoked on every state change. The returned
// function removes the listener.
func (m *SessionManager) Subscribe(fn func(SessionState, *Session)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *SessionManager) clearSnapshotLocked(ctx context.Context) {
	if err := m.store.Clear(ctx, m.key); err != nil {
		m.logg.Warn(ctx, fmt.Sprintf("session: clearing snapshot failed: %v", err))
	}
}

func (m *SessionManager) notifyLocked() {
	if len(m.subs) == 0 {
		return
	}
	var sess *Session
	if m.session != nil {
		copied := *m.session
		sess = &copied
	}
	for _, fn := range m.subs {
		fn(m.state, sess)
	}
}

func classifyAuthError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "authentication failed")
}
