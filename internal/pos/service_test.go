package pos

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

type stubCatalog struct {
	items  map[uuid.UUID]ItemSnapshot
	quotas map[uuid.UUID]*QuotaSnapshot
}

func (s *stubCatalog) GetSellableItem(_ context.Context, id uuid.UUID) (ItemSnapshot, error) {
	item, ok := s.items[id]
	if !ok {
		return ItemSnapshot{}, pkgerrors.New(pkgerrors.CodeItemUnavailable, "item is not available for sale")
	}
	return item, nil
}

func (s *stubCatalog) GetQuotaForPrincipal(_ context.Context, id uuid.UUID) (*QuotaSnapshot, error) {
	return s.quotas[id], nil
}

type stubCustomers struct {
	customers map[uuid.UUID]CustomerSnapshot
}

func (s *stubCustomers) GetCustomerSnapshot(_ context.Context, id uuid.UUID) (CustomerSnapshot, error) {
	customer, ok := s.customers[id]
	if !ok {
		return CustomerSnapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}

type stubMethods struct {
	methods map[uuid.UUID]MethodSnapshot
}

func (s *stubMethods) GetActiveMethod(_ context.Context, id uuid.UUID) (MethodSnapshot, error) {
	method, ok := s.methods[id]
	if !ok {
		return MethodSnapshot{}, pkgerrors.New(pkgerrors.CodePaymentMethodInactive, "payment method is inactive")
	}
	return method, nil
}

type stubOrderWriter struct {
	created   []*models.Order
	createErr error
}

func (s *stubOrderWriter) WithTx(*gorm.DB) OrderWriter {
	return s
}

func (s *stubOrderWriter) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = append(s.created, order)
	return order, nil
}

type stubLedger struct {
	recorded []*models.Order
	err      error
}

func (s *stubLedger) RecordSale(_ context.Context, order *models.Order) error {
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, order)
	return nil
}

type stubTicketSequence struct {
	last int64
	err  error
}

func (s *stubTicketSequence) Next(context.Context, time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.last++
	return s.last, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type posFixture struct {
	svc     Service
	catalog *stubCatalog
	orders  *stubOrderWriter
	ledger  *stubLedger
	methods *stubMethods
	tickets *stubTicketSequence

	item   ItemSnapshot
	cash   MethodSnapshot
	card   MethodSnapshot
	custID uuid.UUID
}

func newPosFixture(t *testing.T) *posFixture {
	t.Helper()

	item := snapshot("burger", "15.00")
	cash := MethodSnapshot{ID: uuid.New(), Name: "Cash", IsCash: true}
	card := MethodSnapshot{ID: uuid.New(), Name: "Credit card", IsCash: false}
	custID := uuid.New()

	fixture := &posFixture{
		catalog: &stubCatalog{
			items:  map[uuid.UUID]ItemSnapshot{item.ItemID: item},
			quotas: map[uuid.UUID]*QuotaSnapshot{},
		},
		orders:  &stubOrderWriter{},
		ledger:  &stubLedger{},
		tickets: &stubTicketSequence{},
		methods: &stubMethods{methods: map[uuid.UUID]MethodSnapshot{
			cash.ID: cash,
			card.ID: card,
		}},
		item:   item,
		cash:   cash,
		card:   card,
		custID: custID,
	}

	customers := &stubCustomers{customers: map[uuid.UUID]CustomerSnapshot{
		custID: {ID: custID, Name: "Ana"},
	}}

	logg := logger.New(logger.Options{ServiceName: "pos-test", Output: io.Discard})
	svc, err := NewService(NewRegistry(), fixture.catalog, customers, fixture.methods, fixture.orders, fixture.ledger, fixture.tickets, stubTxRunner{}, logg)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	fixture.svc = svc
	return fixture
}

func (f *posFixture) startAndFill(t *testing.T, terminal string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.StartSession(ctx, terminal, enums.FulfillmentQuickSale); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, terminal, f.item.ItemID, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
}

func TestServiceSecondSessionSameTerminalRejected(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, "till-1", enums.FulfillmentQuickSale); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := f.svc.StartSession(ctx, "till-1", enums.FulfillmentQuickSale)
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	// a different terminal is independent
	if _, err := f.svc.StartSession(ctx, "till-2", enums.FulfillmentQuickSale); err != nil {
		t.Fatalf("second terminal: %v", err)
	}
}

func TestServiceAddUnknownItem(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, "till-1", enums.FulfillmentQuickSale); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := f.svc.AddItem(ctx, "till-1", uuid.New(), 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeItemUnavailable) {
		t.Fatalf("expected ITEM_UNAVAILABLE, got %v", err)
	}
}

func TestServiceFinalizeCashPersistsOrderAndLedger(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()
	f.startAndFill(t, "till-1")

	due, err := f.svc.InitiateSettlement(ctx, "till-1")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if !due.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected due 15.00, got %s", due)
	}
	if _, err := f.svc.SelectMethod(ctx, "till-1", f.cash.ID); err != nil {
		t.Fatalf("select method: %v", err)
	}

	tendered := decimal.RequireFromString("20.00")
	order, err := f.svc.Finalize(ctx, "till-1", &tendered)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if order.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid order, got %s", order.Status)
	}
	if order.TicketNumber != 1 {
		t.Fatalf("expected ticket 1, got %d", order.TicketNumber)
	}
	if order.Change == nil || !order.Change.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected change 5.00, got %v", order.Change)
	}
	if len(f.orders.created) != 1 {
		t.Fatalf("expected one persisted order, got %d", len(f.orders.created))
	}
	if len(f.ledger.recorded) != 1 {
		t.Fatalf("expected one ledger write, got %d", len(f.ledger.recorded))
	}

	// session is consumed; the terminal can start again
	if _, err := f.svc.GetSession(ctx, "till-1"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND after settlement, got %v", err)
	}
	if _, err := f.svc.StartSession(ctx, "till-1", enums.FulfillmentQuickSale); err != nil {
		t.Fatalf("restart after settlement: %v", err)
	}
}

func TestServiceFinalizeLedgerFailureNonFatal(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()
	f.startAndFill(t, "till-1")
	f.ledger.err = errors.New("ledger down")

	if _, err := f.svc.InitiateSettlement(ctx, "till-1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := f.svc.SelectMethod(ctx, "till-1", f.card.ID); err != nil {
		t.Fatalf("select: %v", err)
	}

	order, err := f.svc.Finalize(ctx, "till-1", nil)
	if err != nil {
		t.Fatalf("ledger failure must not fail the settlement, got %v", err)
	}
	if order.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
	if len(f.orders.created) != 1 {
		t.Fatalf("expected order persisted despite ledger failure")
	}
}

func TestServiceFinalizePersistFailureKeepsSession(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()
	f.startAndFill(t, "till-1")
	f.orders.createErr = errors.New("db down")

	if _, err := f.svc.InitiateSettlement(ctx, "till-1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := f.svc.SelectMethod(ctx, "till-1", f.card.ID); err != nil {
		t.Fatalf("select: %v", err)
	}

	if _, err := f.svc.Finalize(ctx, "till-1", nil); err == nil {
		t.Fatal("expected persistence error")
	}
	if len(f.ledger.recorded) != 0 {
		t.Fatalf("ledger must not record an unpersisted sale")
	}

	snap, err := f.svc.GetSession(ctx, "till-1")
	if err != nil {
		t.Fatalf("session must survive the failed write: %v", err)
	}
	if snap.State != enums.SessionAwaitingPayment {
		t.Fatalf("expected awaiting_payment, got %s", snap.State)
	}

	f.orders.createErr = nil
	if _, err := f.svc.Finalize(ctx, "till-1", nil); err != nil {
		t.Fatalf("retry finalize: %v", err)
	}
}

func TestServiceFinalizeTicketCounterFailureNonFatal(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()
	f.startAndFill(t, "till-1")
	f.tickets.err = errors.New("counter down")

	if _, err := f.svc.InitiateSettlement(ctx, "till-1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := f.svc.SelectMethod(ctx, "till-1", f.card.ID); err != nil {
		t.Fatalf("select: %v", err)
	}

	order, err := f.svc.Finalize(ctx, "till-1", nil)
	if err != nil {
		t.Fatalf("counter failure must not block the sale, got %v", err)
	}
	if order.TicketNumber != 0 {
		t.Fatalf("expected zero ticket on counter failure, got %d", order.TicketNumber)
	}
}

func TestServiceSelectInactiveMethod(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()
	f.startAndFill(t, "till-1")

	if _, err := f.svc.InitiateSettlement(ctx, "till-1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	_, err := f.svc.SelectMethod(ctx, "till-1", uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodePaymentMethodInactive) {
		t.Fatalf("expected PAYMENT_METHOD_INACTIVE, got %v", err)
	}
}

func TestServiceSavePendingPersistsPendingOrder(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()
	f.startAndFill(t, "till-1")

	if _, err := f.svc.SetCustomer(ctx, "till-1", &f.custID); err != nil {
		t.Fatalf("set customer: %v", err)
	}

	order, err := f.svc.SavePending(ctx, "till-1")
	if err != nil {
		t.Fatalf("save pending: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.TicketNumber != 1 {
		t.Fatalf("pending orders draw from the same ticket sequence, got %d", order.TicketNumber)
	}
	if order.PaymentMethodID != nil || order.AmountTendered != nil {
		t.Fatalf("pending order must carry no payment fields")
	}
	if order.CustomerName != "Ana" {
		t.Fatalf("expected customer name captured, got %q", order.CustomerName)
	}
	if len(f.ledger.recorded) != 0 {
		t.Fatalf("pending orders never reach the ledger")
	}
	if _, err := f.svc.GetSession(ctx, "till-1"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected session consumed, got %v", err)
	}
}

func TestServiceSweepIdle(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()
	f.startAndFill(t, "till-stale")

	// a session touched after the cutoff stays alive
	if _, err := f.svc.StartSession(ctx, "till-busy", enums.FulfillmentQuickSale); err != nil {
		t.Fatalf("start busy: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now().UTC()
	if _, err := f.svc.AddItem(ctx, "till-busy", f.item.ItemID, 1); err != nil {
		t.Fatalf("touch busy: %v", err)
	}

	swept, err := f.svc.SweepIdle(ctx, cutoff)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept session, got %d", swept)
	}
	if _, err := f.svc.GetSession(ctx, "till-stale"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected stale session gone, got %v", err)
	}
	if _, err := f.svc.GetSession(ctx, "till-busy"); err != nil {
		t.Fatalf("busy session must survive: %v", err)
	}
}

func TestServiceOrderSnapshotPreservesPositions(t *testing.T) {
	f := newPosFixture(t)
	ctx := context.Background()

	topping := snapshot("cheese", "2.00")
	f.catalog.items[topping.ItemID] = topping
	f.catalog.quotas[f.item.ItemID] = quotaFor(1, topping)
	second := snapshot("soda", "5.00")
	f.catalog.items[second.ItemID] = second

	f.startAndFill(t, "till-1")
	if _, err := f.svc.AttachComplement(ctx, "till-1", f.item.ItemID, topping.ItemID, 2); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "till-1", second.ItemID, 1); err != nil {
		t.Fatalf("add second: %v", err)
	}

	if _, err := f.svc.InitiateSettlement(ctx, "till-1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := f.svc.SelectMethod(ctx, "till-1", f.card.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	order, err := f.svc.Finalize(ctx, "till-1", nil)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if len(order.Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(order.Lines))
	}
	if order.Lines[0].ItemID != f.item.ItemID || order.Lines[0].Position != 0 {
		t.Fatalf("expected burger first, got %+v", order.Lines[0])
	}
	if order.Lines[1].ItemID != second.ItemID || order.Lines[1].Position != 1 {
		t.Fatalf("expected soda second, got %+v", order.Lines[1])
	}

	comp := order.Lines[0].Complements
	if len(comp) != 1 || comp[0].FreeUnits != 1 || comp[0].BilledUnits != 1 {
		t.Fatalf("unexpected complement snapshot: %+v", comp)
	}

	// 15.00 + 1 billed cheese 2.00 + 5.00
	want := decimal.RequireFromString("22.00")
	if !order.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total)
	}
}
