package storefront

// MergeGuestItems combines guest line items into the account cart that existed
// before sign-in. When both carts hold the same product the quantities are
// summed and clamped at the guest item's stock ceiling; otherwise the guest
// item is appended unchanged. Destination items keep their position and guest
// items append in their original order, so the merged display order is
// reproducible. Neither input slice is modified.
func MergeGuestItems(destination, guest []LineItem) []LineItem {
	merged := append([]LineItem(nil), destination...)

	index := make(map[string]int, len(merged))
	for i, item := range merged {
		index[item.ProductID] = i
	}

	for _, item := range guest {
		if i, ok := index[item.ProductID]; ok {
			requested := merged[i].Quantity + item.Quantity
			merged[i].Quantity = clampQuantity(requested, item.StockQty)
			merged[i].StockQty = item.StockQty
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	return merged
}
