package pos

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func sessionWithItem(t *testing.T, price string, qty int) *Session {
	t.Helper()
	session := NewSession("till-1", enums.FulfillmentQuickSale)
	if err := session.Mutate(func(cart *Cart) error {
		return cart.AddPrincipal(snapshot("item", price), nil, qty)
	}); err != nil {
		t.Fatalf("seeding cart: %v", err)
	}
	return session
}

func cashMethod() MethodSnapshot {
	return MethodSnapshot{ID: uuid.New(), Name: "Cash", IsCash: true}
}

func cardMethod() MethodSnapshot {
	return MethodSnapshot{ID: uuid.New(), Name: "Debit card", IsCash: false}
}

func TestInitiateSettlementEmptyCart(t *testing.T) {
	session := NewSession("till-1", enums.FulfillmentQuickSale)

	_, err := session.InitiateSettlement()
	if !pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected EMPTY_CART, got %v", err)
	}
	if session.State() != enums.SessionComposing {
		t.Fatalf("failed settlement must not change state, got %s", session.State())
	}
}

func TestInitiateSettlementCustomerRequired(t *testing.T) {
	session := NewSession("till-1", enums.FulfillmentDelivery)
	if err := session.Mutate(func(cart *Cart) error {
		return cart.AddPrincipal(snapshot("pizza", "30.00"), nil, 1)
	}); err != nil {
		t.Fatalf("seeding cart: %v", err)
	}

	_, err := session.InitiateSettlement()
	if !pkgerrors.HasCode(err, pkgerrors.CodeCustomerRequired) {
		t.Fatalf("expected CUSTOMER_REQUIRED, got %v", err)
	}

	if err := session.Mutate(func(cart *Cart) error {
		cart.SetCustomer(&CustomerSnapshot{ID: uuid.New(), Name: "Ana"})
		return nil
	}); err != nil {
		t.Fatalf("set customer: %v", err)
	}
	if _, err := session.InitiateSettlement(); err != nil {
		t.Fatalf("expected settlement to proceed, got %v", err)
	}
}

func TestAmountDueFrozenAndEditsRejected(t *testing.T) {
	session := sessionWithItem(t, "45.00", 1)

	due, err := session.InitiateSettlement()
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if !due.Equal(dec("45.00")) {
		t.Fatalf("expected due 45.00, got %s", due)
	}

	err = session.Mutate(func(cart *Cart) error {
		return cart.AddPrincipal(snapshot("late", "1.00"), nil, 1)
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT for cart edit, got %v", err)
	}
}

func TestSelectMethodReentrant(t *testing.T) {
	session := sessionWithItem(t, "10.00", 1)
	if _, err := session.InitiateSettlement(); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if err := session.SelectMethod(cashMethod()); err != nil {
		t.Fatalf("first select: %v", err)
	}
	card := cardMethod()
	if err := session.SelectMethod(card); err != nil {
		t.Fatalf("second select: %v", err)
	}

	snap := session.Snapshot()
	if snap.Method == nil || snap.Method.ID != card.ID {
		t.Fatalf("expected last selection to win, got %+v", snap.Method)
	}
}

func TestFinalizeCashChange(t *testing.T) {
	session := sessionWithItem(t, "45.00", 1)
	if _, err := session.InitiateSettlement(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := session.SelectMethod(cashMethod()); err != nil {
		t.Fatalf("select: %v", err)
	}

	tendered := dec("50.00")
	settlement, err := session.Finalize(&tendered, nil)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !settlement.Change.Equal(dec("5.00")) {
		t.Fatalf("expected change 5.00, got %s", settlement.Change)
	}
	if session.State() != enums.SessionPaid {
		t.Fatalf("expected paid, got %s", session.State())
	}
}

func TestFinalizeCashInsufficientTender(t *testing.T) {
	session := sessionWithItem(t, "45.00", 1)
	if _, err := session.InitiateSettlement(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := session.SelectMethod(cashMethod()); err != nil {
		t.Fatalf("select: %v", err)
	}

	tendered := dec("40.00")
	_, err := session.Finalize(&tendered, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientTender) {
		t.Fatalf("expected INSUFFICIENT_TENDER, got %v", err)
	}
	if session.State() != enums.SessionAwaitingPayment {
		t.Fatalf("failed finalize must stay awaiting_payment, got %s", session.State())
	}

	_, err = session.Finalize(nil, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientTender) {
		t.Fatalf("expected INSUFFICIENT_TENDER for missing tender, got %v", err)
	}
}

func TestFinalizeCashFullPrecisionCompare(t *testing.T) {
	session := sessionWithItem(t, "10.005", 1)
	if _, err := session.InitiateSettlement(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := session.SelectMethod(cashMethod()); err != nil {
		t.Fatalf("select: %v", err)
	}

	// 10.00 rounds to the due amount but is still short of it
	tendered := dec("10.00")
	if _, err := session.Finalize(&tendered, nil); !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientTender) {
		t.Fatalf("expected INSUFFICIENT_TENDER, got %v", err)
	}

	exact := dec("10.005")
	settlement, err := session.Finalize(&exact, nil)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !settlement.Change.IsZero() {
		t.Fatalf("expected zero change, got %s", settlement.Change)
	}
}

func TestFinalizeNonCashIgnoresTendered(t *testing.T) {
	session := sessionWithItem(t, "33.00", 1)
	if _, err := session.InitiateSettlement(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := session.SelectMethod(cardMethod()); err != nil {
		t.Fatalf("select: %v", err)
	}

	tendered := dec("100.00")
	settlement, err := session.Finalize(&tendered, nil)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !settlement.Change.IsZero() {
		t.Fatalf("non-cash change must be zero, got %s", settlement.Change)
	}
	if !settlement.Tendered.Equal(dec("33.00")) {
		t.Fatalf("non-cash tendered must equal amount due, got %s", settlement.Tendered)
	}
}

func TestFinalizeRequiresSelectedMethod(t *testing.T) {
	session := sessionWithItem(t, "5.00", 1)
	if _, err := session.InitiateSettlement(); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	_, err := session.Finalize(nil, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT without method, got %v", err)
	}
}

func TestFinalizeWhileComposingRejected(t *testing.T) {
	session := sessionWithItem(t, "5.00", 1)

	_, err := session.Finalize(nil, nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestFinalizeCommitFailureKeepsAwaitingPayment(t *testing.T) {
	session := sessionWithItem(t, "12.00", 1)
	if _, err := session.InitiateSettlement(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := session.SelectMethod(cardMethod()); err != nil {
		t.Fatalf("select: %v", err)
	}

	boom := errors.New("db down")
	if _, err := session.Finalize(nil, func(Settlement) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected commit error surfaced, got %v", err)
	}
	if session.State() != enums.SessionAwaitingPayment {
		t.Fatalf("commit failure must not settle, got %s", session.State())
	}

	// retry succeeds once the write works
	if _, err := session.Finalize(nil, func(Settlement) error { return nil }); err != nil {
		t.Fatalf("retry finalize: %v", err)
	}
	if session.State() != enums.SessionPaid {
		t.Fatalf("expected paid after retry, got %s", session.State())
	}
}

func TestCancelFromBothLiveStates(t *testing.T) {
	composing := sessionWithItem(t, "5.00", 1)
	if err := composing.Cancel(); err != nil {
		t.Fatalf("cancel while composing: %v", err)
	}
	if composing.State() != enums.SessionCancelled {
		t.Fatalf("expected cancelled, got %s", composing.State())
	}

	awaiting := sessionWithItem(t, "5.00", 1)
	if _, err := awaiting.InitiateSettlement(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := awaiting.Cancel(); err != nil {
		t.Fatalf("cancel while awaiting payment: %v", err)
	}

	if err := awaiting.Cancel(); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT on double cancel, got %v", err)
	}
}

func TestSavePendingValidatesAndConsumes(t *testing.T) {
	empty := NewSession("till-1", enums.FulfillmentQuickSale)
	err := empty.SavePending(func(*Cart, enums.FulfillmentType) error { return nil })
	if !pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected EMPTY_CART, got %v", err)
	}
	if empty.State() != enums.SessionComposing {
		t.Fatalf("failed save must stay composing, got %s", empty.State())
	}

	session := sessionWithItem(t, "18.00", 1)
	committed := false
	if err := session.SavePending(func(cart *Cart, fulfillment enums.FulfillmentType) error {
		committed = true
		if fulfillment != enums.FulfillmentQuickSale {
			t.Fatalf("unexpected fulfillment %s", fulfillment)
		}
		return nil
	}); err != nil {
		t.Fatalf("save pending: %v", err)
	}
	if !committed {
		t.Fatal("commit callback not invoked")
	}
	if session.State() != enums.SessionCancelled {
		t.Fatalf("expected consumed session, got %s", session.State())
	}
}
