package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/autocare/autocare-backend/pkg/snapshot"
)

type stubMerger struct {
	result []LineItem
	err    error
	calls  int
	tokens []string
}

func (s *stubMerger) MergeGuestCart(ctx context.Context, accessToken string, guest []LineItem) ([]LineItem, error) {
	s.calls++
	s.tokens = append(s.tokens, accessToken)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestContext(t *testing.T, store snapshot.Store, auth Authenticator, merger CartMerger) *Context {
	t.Helper()
	cart := newTestCart(t, store)
	session := newTestSessionManager(t, store, auth)
	appCtx, err := NewContext(ContextParams{Cart: cart, Session: session, Merger: merger, Logger: testLogger()})
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	if err := appCtx.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate context: %v", err)
	}
	return appCtx
}

func TestSignInMergesGuestCartThroughBackend(t *testing.T) {
	ctx := context.Background()
	merger := &stubMerger{result: []LineItem{item("a", 100, 5, 5), item("b", 40, 1, 3)}}
	appCtx := newTestContext(t, snapshot.NewMemoryStore(), &stubAuthenticator{session: testSession()}, merger)

	appCtx.Cart().AddItem(ctx, item("a", 100, 3, 5))

	if _, err := appCtx.SignIn(ctx, "driver@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if merger.calls != 1 {
		t.Fatalf("expected exactly one merge per sign-in, got %d", merger.calls)
	}
	if merger.tokens[0] != "token-abc" {
		t.Fatalf("merge must carry the new access token, got %q", merger.tokens[0])
	}
	items := appCtx.Cart().Items()
	if len(items) != 2 || items[0].Quantity != 5 {
		t.Fatalf("expected backend merge result applied, got %+v", items)
	}
}

func TestSignInWithEmptyGuestCartSkipsMerge(t *testing.T) {
	ctx := context.Background()
	merger := &stubMerger{}
	appCtx := newTestContext(t, snapshot.NewMemoryStore(), &stubAuthenticator{session: testSession()}, merger)

	if _, err := appCtx.SignIn(ctx, "driver@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if merger.calls != 0 {
		t.Fatalf("empty guest cart must not trigger a merge, calls=%d", merger.calls)
	}
}

func TestSignInMergeFailureKeepsGuestCart(t *testing.T) {
	ctx := context.Background()
	merger := &stubMerger{err: errors.New("cart backend unreachable")}
	appCtx := newTestContext(t, snapshot.NewMemoryStore(), &stubAuthenticator{session: testSession()}, merger)

	appCtx.Cart().AddItem(ctx, item("a", 100, 2, 5))

	if _, err := appCtx.SignIn(ctx, "driver@example.com", "secret"); err != nil {
		t.Fatalf("sign in should succeed despite merge failure: %v", err)
	}

	items := appCtx.Cart().Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("guest cart must survive a failed merge, got %+v", items)
	}
	if got := appCtx.Session().State(); got != SessionAuthenticated {
		t.Fatalf("expected AUTHENTICATED, got %s", got)
	}
}

func TestSignInWithoutBackendUsesLocalMerge(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	appCtx := newTestContext(t, store, &stubAuthenticator{session: testSession()}, nil)

	appCtx.Cart().AddItem(ctx, item("p1", 200, 2, 9))

	if _, err := appCtx.SignIn(ctx, "driver@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	items := appCtx.Cart().Items()
	if len(items) != 1 || items[0].ProductID != "p1" || items[0].Quantity != 2 {
		t.Fatalf("expected guest cart carried over unchanged, got %+v", items)
	}
}

func TestSignInAuthFailureLeavesCartUntouched(t *testing.T) {
	ctx := context.Background()
	merger := &stubMerger{}
	auth := &stubAuthenticator{err: errors.New("boom")}
	appCtx := newTestContext(t, snapshot.NewMemoryStore(), auth, merger)

	appCtx.Cart().AddItem(ctx, item("a", 100, 2, 5))

	if _, err := appCtx.SignIn(ctx, "driver@example.com", "bad"); err == nil {
		t.Fatal("expected sign-in failure")
	}
	if merger.calls != 0 {
		t.Fatal("failed sign-in must not merge")
	}
	if items := appCtx.Cart().Items(); len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("cart changed on failed sign-in: %+v", items)
	}
}

func TestSignOutKeepsCart(t *testing.T) {
	ctx := context.Background()
	appCtx := newTestContext(t, snapshot.NewMemoryStore(), &stubAuthenticator{session: testSession()}, nil)

	appCtx.Cart().AddItem(ctx, item("a", 100, 1, 5))
	if _, err := appCtx.SignIn(ctx, "driver@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	appCtx.SignOut(ctx)
	if got := appCtx.Session().State(); got != SessionAnonymous {
		t.Fatalf("expected ANONYMOUS after sign-out, got %s", got)
	}
	if len(appCtx.Cart().Items()) != 1 {
		t.Fatal("cart must survive sign-out")
	}
}
