package model

import "fmt"

// CopyFilter selects which items of a source list are carried into a copy.
type CopyFilter int

const (
	CopyAll CopyFilter = iota
	CopyOnlyPurchased
	CopyOnlyUnpurchased
)

// ParseCopyFilter accepts "all", "purchased" and "unpurchased". An empty
// string means CopyAll.
func ParseCopyFilter(s string) (CopyFilter, error) {
	switch s {
	case "", "all":
		return CopyAll, nil
	case "purchased":
		return CopyOnlyPurchased, nil
	case "unpurchased":
		return CopyOnlyUnpurchased, nil
	default:
		return CopyAll, fmt.Errorf("unknown copy filter %q", s)
	}
}

// Keep reports whether an item with the given purchased flag passes the filter.
func (f CopyFilter) Keep(purchased bool) bool {
	switch f {
	case CopyOnlyPurchased:
		return purchased
	case CopyOnlyUnpurchased:
		return !purchased
	default:
		return true
	}
}

// Suffix is appended to the source list name when the copy is not given a
// name of its own.
func (f CopyFilter) Suffix() string {
	switch f {
	case CopyOnlyPurchased:
		return " (Comprados)"
	case CopyOnlyUnpurchased:
		return " (No comprados)"
	default:
		return " (Copia)"
	}
}

func (f CopyFilter) String() string {
	switch f {
	case CopyOnlyPurchased:
		return "purchased"
	case CopyOnlyUnpurchased:
		return "unpurchased"
	default:
		return "all"
	}
}
