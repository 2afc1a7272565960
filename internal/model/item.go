package model

// Item is a trackable equipment type. Balances live on its variants.
type Item struct {
	ID       int64     `json:"id"`
	Category string    `json:"category"`
	Name     string    `json:"name"`
	Brand    string    `json:"brand"`
	Variants []Variant `json:"variants"`
	ImageRef string    `json:"imageRef,omitempty"`
}

// Variant is a size or style of an item, the unit at which balance is tracked.
type Variant struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Balance int    `json:"balance"`
}

// Variant returns the variant with the given code.
func (it *Item) Variant(code string) (*Variant, bool) {
	for i := range it.Variants {
		if it.Variants[i].Code == code {
			return &it.Variants[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	out.Variants = append([]Variant(nil), it.Variants...)
	return out
}

// CloneItems deep-copies a catalog.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
