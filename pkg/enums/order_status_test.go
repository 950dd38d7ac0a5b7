package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCancelled, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusConfirmed, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusDelivered.IsTerminal() {
		t.Fatal("delivered should be terminal")
	}
	if !OrderStatusCancelled.IsTerminal() {
		t.Fatal("cancelled should be terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Fatal("pending should not be terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("  Shipped ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if status != OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", status)
	}

	if _, err := ParseOrderStatus("teleported"); err == nil {
		t.Fatal("expected invalid status to error")
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("admin")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if role != UserRoleAdmin {
		t.Fatalf("expected ADMIN, got %s", role)
	}

	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatal("expected invalid role to error")
	}
}
