package storefront

import (
	"context"
	"fmt"

	"github.com/autocare/autocare-backend/pkg/logger"
)

// CartMerger is the backend contract for reconciling a guest cart with the
// account's stored cart. MergeGuestItems is the reference behavior a remote
// implementation must reproduce.
type CartMerger interface {
	MergeGuestCart(ctx context.Context, accessToken string, guest []LineItem) ([]LineItem, error)
}

// Context is the storefront application object constructed once at startup
// and handed to every consumer. It replaces ad hoc global state with one
// explicit wiring point and coordinates the merge-on-sign-in handoff between
// the two managers.
type Context struct {
	cart    *Cart
	session *SessionManager
	merger  CartMerger
	logg    *logger.Logger
}

// ContextParams wires a storefront context.
type ContextParams struct {
	Cart    *Cart
	Session *SessionManager
	Merger  CartMerger
	Logger  *logger.Logger
}

// NewContext validates the wiring. Merger is optional; without one the
// in-process merge is used with an empty destination cart.
func NewContext(params ContextParams) (*Context, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart manager required")
	}
	if params.Session == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Context{
		cart:    params.Cart,
		session: params.Session,
		merger:  params.Merger,
		logg:    params.Logger,
	}, nil
}

// Cart exposes the cart manager.
func (c *Context) Cart() *Cart { return c.cart }

// Session exposes the session manager.
func (c *Context) Session() *SessionManager { return c.session }

// Hydrate restores both managers from their snapshots at startup.
func (c *Context) Hydrate(ctx context.Context) error {
	if err := c.session.Hydrate(ctx); err != nil {
		return err
	}
	return c.cart.Hydrate(ctx)
}

// SignIn authenticates and, on success, merges the guest cart into the
// account cart exactly once. A merge failure keeps the guest cart intact and
// unmerged; sign-in still succeeds.
func (c *Context) SignIn(ctx context.Context, email, password string) (*Session, error) {
	guest := c.cart.Items()

	sess, err := c.session.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	c.mergeGuestCart(ctx, sess, guest)
	return sess, nil
}

// SignOut ends the session. The cart is left as-is so the next visitor on
// this profile keeps their items.
func (c *Context) SignOut(ctx context.Context) {
	c.session.EndSession(ctx)
}

func (c *Context) mergeGuestCart(ctx context.Context, sess *Session, guest []LineItem) {
	if len(guest) == 0 {
		return
	}

	if c.merger == nil {
		c.cart.ReplaceItems(ctx, MergeGuestItems(nil, guest))
		return
	}

	merged, err := c.merger.MergeGuestCart(ctx, sess.AccessToken, guest)
	if err != nil {
		// Never lossy: the guest cart stays as-is until a later merge.
		c.logg.Warn(ctx, fmt.Sprintf("storefront: guest cart merge failed, keeping guest items: %v", err))
		return
	}
	c.cart.ReplaceItems(ctx, merged)
}
