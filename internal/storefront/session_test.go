package storefront

import (
	"context"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/autocare/autocare-backend/pkg/errors"
	"github.com/autocare/autocare-backend/pkg/enums"
	"github.com/autocare/autocare-backend/pkg/snapshot"
)

type stubAuthenticator struct {
	mu      sync.Mutex
	session *Session
	err     error
	release chan struct{}
	calls   int
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	s.mu.Lock()
	s.calls++
	release := s.release
	s.mu.Unlock()
	if release != nil {
		<-release
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func testSession() *Session {
	return &Session{
		AccessToken: "token-abc",
		User: Identity{
			ID:        "user-1",
			Email:     "driver@example.com",
			Name:      "Driver",
			Role:      enums.UserRoleUser,
			CreatedAt: time.Now().UTC(),
		},
	}
}

func newTestSessionManager(t *testing.T, store snapshot.Store, auth Authenticator) *SessionManager {
	t.Helper()
	mgr, err := NewSessionManager(SessionParams{Store: store, Authenticator: auth, Logger: testLogger()})
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}
	return mgr
}

func TestHydrateWithoutSnapshotIsAnonymous(t *testing.T) {
	ctx := context.Background()
	mgr := newTestSessionManager(t, snapshot.NewMemoryStore(), &stubAuthenticator{})

	if got := mgr.State(); got != SessionUninitialized {
		t.Fatalf("expected UNINITIALIZED before hydrate, got %s", got)
	}
	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if got := mgr.State(); got != SessionAnonymous {
		t.Fatalf("expected ANONYMOUS, got %s", got)
	}
	if mgr.IsLoading() {
		t.Fatal("loading flag should drop after hydrate")
	}
	if mgr.Current() != nil {
		t.Fatal("expected nil session when anonymous")
	}
}

func TestHydrateRecoversPersistedSession(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	if err := store.Save(ctx, SessionSnapshotKey, testSession()); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	mgr := newTestSessionManager(t, store, &stubAuthenticator{})
	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if got := mgr.State(); got != SessionAuthenticated {
		t.Fatalf("expected AUTHENTICATED, got %s", got)
	}
	sess := mgr.Current()
	if sess == nil || sess.User.Email != "driver@example.com" {
		t.Fatalf("unexpected recovered session: %+v", sess)
	}
}

func TestHydrateCorruptSnapshotIsAnonymous(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	store.SeedRaw(SessionSnapshotKey, []byte("<<broken>>"))

	mgr := newTestSessionManager(t, store, &stubAuthenticator{})
	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("corrupt snapshot must not fail hydrate: %v", err)
	}
	if got := mgr.State(); got != SessionAnonymous {
		t.Fatalf("expected ANONYMOUS after corrupt snapshot, got %s", got)
	}
}

func TestAuthenticateSuccessPersistsSession(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	mgr := newTestSessionManager(t, store, &stubAuthenticator{session: testSession()})
	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	sess, err := mgr.Authenticate(ctx, "driver@example.com", "secret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if sess.AccessToken != "token-abc" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if got := mgr.State(); got != SessionAuthenticated {
		t.Fatalf("expected AUTHENTICATED, got %s", got)
	}

	var persisted Session
	found, err := store.Load(ctx, SessionSnapshotKey, &persisted)
	if err != nil || !found {
		t.Fatalf("expected persisted session, found=%v err=%v", found, err)
	}
	if persisted.User.ID != "user-1" {
		t.Fatalf("unexpected persisted session: %+v", persisted)
	}
}

func TestAuthenticateFailureReturnsToAnonymous(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	auth := &stubAuthenticator{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	mgr := newTestSessionManager(t, store, auth)
	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	_, err := mgr.Authenticate(ctx, "driver@example.com", "wrong")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected classified unauthorized error, got %v", err)
	}
	if got := mgr.State(); got != SessionAnonymous {
		t.Fatalf("expected ANONYMOUS after failure, got %s", got)
	}

	var persisted Session
	if found, _ := store.Load(ctx, SessionSnapshotKey, &persisted); found {
		t.Fatal("failed authentication must not persist a session")
	}
}

func TestConcurrentAuthenticateIsRejected(t *testing.T) {
	ctx := context.Background()
	auth := &stubAuthenticator{session: testSession(), release: make(chan struct{})}
	mgr := newTestSessionManager(t, snapshot.NewMemoryStore(), auth)
	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := mgr.Authenticate(ctx, "driver@example.com", "secret")
		done <- err
	}()

	// Wait for the first exchange to be in flight.
	deadline := time.After(time.Second)
	for mgr.State() != SessionAuthenticating {
		select {
		case <-deadline:
			t.Fatal("first authenticate never reached AUTHENTICATING")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	_, err := mgr.Authenticate(ctx, "driver@example.com", "secret")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for concurrent authenticate, got %v", err)
	}

	close(auth.release)
	if err := <-done; err != nil {
		t.Fatalf("first authenticate: %v", err)
	}
	if got := mgr.State(); got != SessionAuthenticated {
		t.Fatalf("expected AUTHENTICATED after first exchange, got %s", got)
	}
	if auth.calls != 1 {
		t.Fatalf("rejected call must not hit the backend, calls=%d", auth.calls)
	}
}

func TestAuthenticatingStateIsNeverPersisted(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	auth := &stubAuthenticator{session: testSession(), release: make(chan struct{})}
	mgr := newTestSessionManager(t, store, auth)
	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_, _ = mgr.Authenticate(ctx, "driver@example.com", "secret")
		close(done)
	}()

	deadline := time.After(time.Second)
	for mgr.State() != SessionAuthenticating {
		select {
		case <-deadline:
			t.Fatal("never reached AUTHENTICATING")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	var persisted Session
	if found, _ := store.Load(ctx, SessionSnapshotKey, &persisted); found {
		t.Fatal("in-flight authentication must not write a snapshot")
	}

	close(auth.release)
	<-done
}

func TestEndSessionNeverFails(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	mgr := newTestSessionManager(t, store, &stubAuthenticator{session: testSession()})
	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	// Ending without a session is fine.
	mgr.EndSession(ctx)
	if got := mgr.State(); got != SessionAnonymous {
		t.Fatalf("expected ANONYMOUS, got %s", got)
	}

	if _, err := mgr.Authenticate(ctx, "driver@example.com", "secret"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	mgr.EndSession(ctx)
	if mgr.Current() != nil {
		t.Fatal("expected session dropped after end")
	}
	var persisted Session
	if found, _ := store.Load(ctx, SessionSnapshotKey, &persisted); found {
		t.Fatal("expected snapshot erased after end")
	}
}

func TestSessionSubscribeSeesTransitions(t *testing.T) {
	ctx := context.Background()
	mgr := newTestSessionManager(t, snapshot.NewMemoryStore(), &stubAuthenticator{session: testSession()})

	var states []SessionState
	mgr.Subscribe(func(state SessionState, _ *Session) {
		states = append(states, state)
	})

	if err := mgr.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if _, err := mgr.Authenticate(ctx, "driver@example.com", "secret"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	mgr.EndSession(ctx)

	want := []SessionState{SessionAnonymous, SessionAuthenticating, SessionAuthenticated, SessionAnonymous}
	if len(states) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], states[i])
		}
	}
}
