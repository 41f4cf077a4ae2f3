package pos

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

func snapshot(name string, price string) ItemSnapshot {
	return ItemSnapshot{
		ItemID:    uuid.New(),
		Name:      name,
		Unit:      "UN",
		UnitPrice: decimal.RequireFromString(price),
	}
}

func quotaFor(freeLimit int, eligible ...ItemSnapshot) *QuotaSnapshot {
	quota := &QuotaSnapshot{
		FreeLimit: freeLimit,
		Eligible:  make(map[uuid.UUID]struct{}, len(eligible)),
	}
	for _, item := range eligible {
		quota.Eligible[item.ItemID] = struct{}{}
	}
	return quota
}

func TestAddPrincipalMergesByIdentity(t *testing.T) {
	cart := NewCart()
	burger := snapshot("burger", "10.00")

	if err := cart.AddPrincipal(burger, nil, 1); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := cart.AddPrincipal(burger, nil, 1); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if cart.Len() != 1 {
		t.Fatalf("expected a single merged line, got %d", cart.Len())
	}
	line, _ := cart.Line(burger.ItemID)
	if line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", line.Quantity)
	}

	// merge law: two adds of 1 equal one add of 2
	other := NewCart()
	if err := other.AddPrincipal(burger, nil, 2); err != nil {
		t.Fatalf("bulk add failed: %v", err)
	}
	if !cart.Total().Equal(other.Total()) {
		t.Fatalf("merged total %s differs from bulk total %s", cart.Total(), other.Total())
	}
}

func TestAddPrincipalRejectsNonPositiveQuantity(t *testing.T) {
	cart := NewCart()
	item := snapshot("soda", "4.50")

	for _, qty := range []int{0, -1} {
		err := cart.AddPrincipal(item, nil, qty)
		if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuantity) {
			t.Fatalf("qty %d: expected INVALID_QUANTITY, got %v", qty, err)
		}
	}
	if cart.Len() != 0 {
		t.Fatalf("rejected add must not mutate the cart")
	}
}

func TestAttachComplementAppliesQuotaSplit(t *testing.T) {
	cart := NewCart()
	acai := snapshot("acai bowl", "22.00")
	topping := snapshot("granola", "3.00")

	if err := cart.AddPrincipal(acai, quotaFor(5, topping), 1); err != nil {
		t.Fatalf("add principal: %v", err)
	}
	if err := cart.AttachComplement(acai.ItemID, topping, 6); err != nil {
		t.Fatalf("attach complement: %v", err)
	}

	line, _ := cart.Line(acai.ItemID)
	if len(line.Complements) != 1 {
		t.Fatalf("expected one merged selection, got %d", len(line.Complements))
	}
	sel := line.Complements[0]
	if sel.Free != 5 || sel.Billed != 1 {
		t.Fatalf("expected 5 free / 1 billed, got free=%d billed=%d", sel.Free, sel.Billed)
	}

	// 22.00 + 1 billed unit at 3.00
	want := decimal.RequireFromString("25.00")
	if !line.LineTotal.Equal(want) {
		t.Fatalf("expected line total %s, got %s", want, line.LineTotal)
	}
	if !cart.Total().Equal(want) {
		t.Fatalf("expected cart total %s, got %s", want, cart.Total())
	}
}

func TestAttachComplementMergesPreservingFirstAttachmentOrder(t *testing.T) {
	cart := NewCart()
	principal := snapshot("combo", "15.00")
	a := snapshot("fries", "5.00")
	b := snapshot("nuggets", "7.00")

	if err := cart.AddPrincipal(principal, quotaFor(3, a, b), 1); err != nil {
		t.Fatalf("add principal: %v", err)
	}
	for _, step := range []struct {
		item ItemSnapshot
		qty  int
	}{{a, 1}, {b, 2}, {a, 1}, {b, 1}} {
		if err := cart.AttachComplement(principal.ItemID, step.item, step.qty); err != nil {
			t.Fatalf("attach %s: %v", step.item.Name, err)
		}
	}

	line, _ := cart.Line(principal.ItemID)
	if len(line.Complements) != 2 {
		t.Fatalf("expected two selections, got %d", len(line.Complements))
	}
	if line.Complements[0].Item.ItemID != a.ItemID || line.Complements[0].Quantity != 2 {
		t.Fatalf("expected fries first with qty 2, got %+v", line.Complements[0])
	}
	if line.Complements[1].Item.ItemID != b.ItemID || line.Complements[1].Quantity != 3 {
		t.Fatalf("expected nuggets second with qty 3, got %+v", line.Complements[1])
	}

	// pooled threshold 3 consumed in attachment order: fries 2 free, nuggets 1 free 2 billed
	if line.Complements[0].Billed != 0 || line.Complements[1].Billed != 2 {
		t.Fatalf("unexpected split: %+v", line.Complements)
	}
}

func TestAttachComplementRejectsIneligible(t *testing.T) {
	cart := NewCart()
	principal := snapshot("espresso", "6.00")
	eligible := snapshot("sugar", "0.50")
	stranger := snapshot("cheese", "4.00")

	if err := cart.AddPrincipal(principal, quotaFor(1, eligible), 1); err != nil {
		t.Fatalf("add principal: %v", err)
	}

	err := cart.AttachComplement(principal.ItemID, stranger, 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidComplement) {
		t.Fatalf("expected INVALID_COMPLEMENT, got %v", err)
	}

	bare := snapshot("water", "2.00")
	if err := cart.AddPrincipal(bare, nil, 1); err != nil {
		t.Fatalf("add bare principal: %v", err)
	}
	err = cart.AttachComplement(bare.ItemID, eligible, 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidComplement) {
		t.Fatalf("expected INVALID_COMPLEMENT for quota-less item, got %v", err)
	}

	err = cart.AttachComplement(uuid.New(), eligible, 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for missing line, got %v", err)
	}
}

func TestSetQuantityRecomputesTotals(t *testing.T) {
	cart := NewCart()
	item := snapshot("pastel", "8.50")

	if err := cart.AddPrincipal(item, nil, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.SetQuantity(item.ItemID, 3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	want := decimal.RequireFromString("25.50")
	if !cart.Total().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, cart.Total())
	}

	if err := cart.SetQuantity(item.ItemID, 0); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuantity) {
		t.Fatalf("expected INVALID_QUANTITY for zero, got %v", err)
	}
	line, _ := cart.Line(item.ItemID)
	if line.Quantity != 3 {
		t.Fatalf("rejected update must not change quantity, got %d", line.Quantity)
	}
}

func TestRemoveLineDropsComplementsAndTotal(t *testing.T) {
	cart := NewCart()
	first := snapshot("first", "10.00")
	second := snapshot("second", "5.00")

	if err := cart.AddPrincipal(first, nil, 1); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := cart.AddPrincipal(second, nil, 2); err != nil {
		t.Fatalf("add second: %v", err)
	}

	cart.RemoveLine(first.ItemID)
	if cart.Len() != 1 {
		t.Fatalf("expected one remaining line, got %d", cart.Len())
	}
	if !cart.Total().Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00 after removal, got %s", cart.Total())
	}

	// absent id is a no-op
	cart.RemoveLine(uuid.New())
	if cart.Len() != 1 {
		t.Fatalf("no-op removal changed the cart")
	}
}

func TestCartPriceCapturedAtAddTime(t *testing.T) {
	cart := NewCart()
	item := snapshot("coffee", "7.00")

	if err := cart.AddPrincipal(item, nil, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	// a later catalog price change never reaches the captured line
	item.UnitPrice = decimal.RequireFromString("9.99")

	want := decimal.RequireFromString("14.00")
	if !cart.Total().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, cart.Total())
	}
}

func TestCartTotalDeterministicUnderReplay(t *testing.T) {
	principal := snapshot("bowl", "20.00")
	topping := snapshot("honey", "2.50")
	extra := snapshot("juice", "6.00")
	quota := quotaFor(2, topping)

	build := func() *Cart {
		cart := NewCart()
		if err := cart.AddPrincipal(principal, quota, 1); err != nil {
			t.Fatalf("add principal: %v", err)
		}
		if err := cart.AttachComplement(principal.ItemID, topping, 3); err != nil {
			t.Fatalf("attach: %v", err)
		}
		if err := cart.AddPrincipal(extra, nil, 2); err != nil {
			t.Fatalf("add extra: %v", err)
		}
		if err := cart.SetQuantity(extra.ItemID, 1); err != nil {
			t.Fatalf("set quantity: %v", err)
		}
		cart.RemoveLine(uuid.New())
		return cart
	}

	first := build()
	second := build()
	if !first.Total().Equal(second.Total()) {
		t.Fatalf("replayed totals differ: %s vs %s", first.Total(), second.Total())
	}
	// 20.00 + 1 billed honey 2.50 + 1 juice 6.00
	want := decimal.RequireFromString("28.50")
	if !first.Total().Equal(want) {
		t.Fatalf("expected %s, got %s", want, first.Total())
	}
}
