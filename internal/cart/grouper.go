package cart

import (
	"github.com/sellpoint-ua/cart-engine/pkg/types"
	"github.com/shopspring/decimal"
)

// GroupBySeller partitions enriched lines into per-seller groups, keeping
// sellers in first-appearance order. Lines without product data fall into
// the default seller bucket so they stay visible.
func GroupBySeller(lines []types.EnrichedLine) []types.SellerGroup {
	order := make([]string, 0, len(lines))
	byID := make(map[string]*types.SellerGroup, len(lines))

	for _, line := range lines {
		sellerID := line.SellerID()
		group, ok := byID[sellerID]
		if !ok {
			order = append(order, sellerID)
			group = &types.SellerGroup{SellerID: sellerID}
			byID[sellerID] = group
		}
		group.Lines = append(group.Lines, line)
	}

	groups := make([]types.SellerGroup, 0, len(order))
	for _, sellerID := range order {
		group := byID[sellerID]
		group.Subtotal = groupSubtotal(group.Lines)
		groups = append(groups, *group)
	}
	return groups
}

// groupSubtotal sums effective line totals and rounds once per group.
func groupSubtotal(lines []types.EnrichedLine) int64 {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.LineTotal())
	}
	return sum.Round(0).IntPart()
}
