package pos

import "github.com/google/uuid"

// BillableSplit is the billed/free outcome for one complement selection.
type BillableSplit struct {
	ComplementID uuid.UUID
	Billed       int
	Free         int
}

// ResolveBillableComplements pools every complement unit attached to one
// principal line into a single count: the first freeLimit units, taken in
// attachment order, are free; every unit beyond that bills at the
// complement's own captured price. The split is recomputed from scratch on
// each call so removals and re-attachments can never leave a stale
// allocation behind.
func ResolveBillableComplements(freeLimit int, selections []ComplementSelection) []BillableSplit {
	remaining := freeLimit
	if remaining < 0 {
		remaining = 0
	}

	splits := make([]BillableSplit, 0, len(selections))
	for _, sel := range selections {
		free := sel.Quantity
		if free > remaining {
			free = remaining
		}
		remaining -= free
		splits = append(splits, BillableSplit{
			ComplementID: sel.Item.ItemID,
			Billed:       sel.Quantity - free,
			Free:         free,
		})
	}
	return splits
}
