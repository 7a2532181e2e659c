package model

import (
	"encoding/json"
	"sort"

	"github.com/dukerupert/mercando/internal/grocery"
)

// ListWithItems is a list together with its items. Counts, progress and
// grouping are derived on every call and never stored.
type ListWithItems struct {
	List  List   `json:"list"`
	Items []Item `json:"items"`
}

// CategoryGroup holds the unpurchased items of one category.
type CategoryGroup struct {
	Category grocery.Category `json:"category"`
	Items    []Item           `json:"items"`
}

func (l ListWithItems) TotalItems() int {
	return len(l.Items)
}

func (l ListWithItems) PurchasedCount() int {
	n := 0
	for _, it := range l.Items {
		if it.Purchased {
			n++
		}
	}
	return n
}

// Progress is floor(purchased/total*100). An empty list is 0.
func Progress(purchased, total int) int {
	if total <= 0 {
		return 0
	}
	return purchased * 100 / total
}

func (l ListWithItems) ProgressPercent() int {
	return Progress(l.PurchasedCount(), l.TotalItems())
}

// ByCategory groups unpurchased items by canonical category in display order.
// Categories without pending items are omitted. Items keep their relative order.
func (l ListWithItems) ByCategory() []CategoryGroup {
	groups := make(map[grocery.Category][]Item)
	for _, it := range l.Items {
		if it.Purchased {
			continue
		}
		cat := grocery.ParseCategory(it.Category)
		groups[cat] = append(groups[cat], it)
	}

	out := make([]CategoryGroup, 0, len(groups))
	for _, cat := range grocery.Categories {
		if items, ok := groups[cat]; ok {
			out = append(out, CategoryGroup{Category: cat, Items: items})
		}
	}
	return out
}

// PurchasedItems returns the purchased items ordered by Order.
func (l ListWithItems) PurchasedItems() []Item {
	var out []Item
	for _, it := range l.Items {
		if it.Purchased {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (l ListWithItems) MarshalJSON() ([]byte, error) {
	items := l.Items
	if items == nil {
		items = []Item{}
	}
	purchased := l.PurchasedItems()
	if purchased == nil {
		purchased = []Item{}
	}
	return json.Marshal(struct {
		List            List            `json:"list"`
		Items           []Item          `json:"items"`
		TotalItems      int             `json:"total_items"`
		PurchasedCount  int             `json:"purchased_count"`
		ProgressPercent int             `json:"progress_percent"`
		ByCategory      []CategoryGroup `json:"by_category"`
		PurchasedItems  []Item          `json:"purchased_items"`
	}{
		List:            l.List,
		Items:           items,
		TotalItems:      l.TotalItems(),
		PurchasedCount:  l.PurchasedCount(),
		ProgressPercent: l.ProgressPercent(),
		ByCategory:      l.ByCategory(),
		PurchasedItems:  purchased,
	})
}
