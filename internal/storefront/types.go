// Package storefront holds the client-facing cart and session state managers.
// Both managers mirror every in-memory mutation to a snapshot store so that a
// restart resumes from the last committed state.
package storefront

import (
	"time"

	"github.com/autocare/autocare-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Snapshot keys used by the state managers. One key per state object; the
// stored value is the full serialized graph, replaced on every write.
const (
	CartSnapshotKey    = "storefront:cart"
	SessionSnapshotKey = "storefront:session"
)

// LineItem is one product's presence in a cart.
type LineItem struct {
	ProductID string          `json:"productId"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	StockQty  int             `json:"stockQty"`
}

// Identity is the signed-in user's profile.
type Identity struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Session wraps one Identity plus its credential reference. A nil *Session
// means anonymous.
type Session struct {
	AccessToken string   `json:"accessToken"`
	User        Identity `json:"user"`
}

type cartSnapshot struct {
	Items []LineItem `json:"items"`
}
