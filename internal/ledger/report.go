package ledger

// LowStockEntry is one variant whose balance is under the threshold.
type LowStockEntry struct {
	ItemID       int64  `json:"itemId"`
	ItemName     string `json:"itemName"`
	Category     string `json:"category"`
	VariantCode  string `json:"variantCode"`
	VariantLabel string `json:"variantLabel"`
	Balance      int    `json:"balance"`
}

// Summary aggregates the catalog.
type Summary struct {
	TotalItems    int `json:"totalItems"`
	TotalVariants int `json:"totalVariants"`
	TotalQuantity int `json:"totalQuantity"`
	LowStockCount int `json:"lowStockCount"`
}

// LowStock lists variants with balance below threshold.
func (l *Ledger) LowStock(threshold int) []LowStockEntry {
	var out []LowStockEntry
	for _, it := range l.items {
		for _, v := range it.Variants {
			if v.Balance < threshold {
				out = append(out, LowStockEntry{
					ItemID:       it.ID,
					ItemName:     it.Name,
					Category:     it.Category,
					VariantCode:  v.Code,
					VariantLabel: v.Label,
					Balance:      v.Balance,
				})
			}
		}
	}
	return out
}

// Summary totals items, variants and units on hand.
func (l *Ledger) Summary(threshold int) Summary {
	var s Summary
	for _, it := range l.items {
		s.TotalItems++
		for _, v := range it.Variants {
			s.TotalVariants++
			s.TotalQuantity += v.Balance
		}
	}
	s.LowStockCount = len(l.LowStock(threshold))
	return s
}
