package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
	"github.com/balcaohq/balcao-backend/pkg/logger"
)

// walkInName is recorded on orders with no attached customer.
const walkInName = "Walk-in"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CatalogLookup supplies item and quota snapshots. Implementations must
// return ITEM_UNAVAILABLE for missing or inactive items so the cart never
// sees a sellable view of them.
type CatalogLookup interface {
	GetSellableItem(ctx context.Context, id uuid.UUID) (ItemSnapshot, error)
	GetQuotaForPrincipal(ctx context.Context, id uuid.UUID) (*QuotaSnapshot, error)
}

// CustomerLookup resolves a customer reference into a snapshot.
type CustomerLookup interface {
	GetCustomerSnapshot(ctx context.Context, id uuid.UUID) (CustomerSnapshot, error)
}

// MethodLookup resolves a payment method; inactive methods must come back as
// PAYMENT_METHOD_INACTIVE.
type MethodLookup interface {
	GetActiveMethod(ctx context.Context, id uuid.UUID) (MethodSnapshot, error)
}

// OrderWriter persists settled and pending orders.
type OrderWriter interface {
	WithTx(tx *gorm.DB) OrderWriter
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

// SaleLedger records the cash movement for a settled order. It is a sink:
// the service calls it once per paid order, after the order row is committed,
// and treats failures as warnings.
type SaleLedger interface {
	RecordSale(ctx context.Context, order *models.Order) error
}

// Service drives terminal sessions end to end: composition against catalog
// snapshots, settlement, persistence, and the ledger hand-off.
type Service interface {
	StartSession(ctx context.Context, terminalID string, fulfillment enums.FulfillmentType) (Snapshot, error)
	GetSession(ctx context.Context, terminalID string) (Snapshot, error)
	AddItem(ctx context.Context, terminalID string, itemID uuid.UUID, qty int) (Snapshot, error)
	AttachComplement(ctx context.Context, terminalID string, principalID, complementID uuid.UUID, qty int) (Snapshot, error)
	SetQuantity(ctx context.Context, terminalID string, itemID uuid.UUID, qty int) (Snapshot, error)
	RemoveLine(ctx context.Context, terminalID string, itemID uuid.UUID) (Snapshot, error)
	SetCustomer(ctx context.Context, terminalID string, customerID *uuid.UUID) (Snapshot, error)
	SetNote(ctx context.Context, terminalID string, note string) (Snapshot, error)
	SetFulfillment(ctx context.Context, terminalID string, fulfillment enums.FulfillmentType) (Snapshot, error)
	InitiateSettlement(ctx context.Context, terminalID string) (decimal.Decimal, error)
	SelectMethod(ctx context.Context, terminalID string, methodID uuid.UUID) (Snapshot, error)
	Finalize(ctx context.Context, terminalID string, tendered *decimal.Decimal) (*models.Order, error)
	Cancel(ctx context.Context, terminalID string) error
	SavePending(ctx context.Context, terminalID string) (*models.Order, error)
	SweepIdle(ctx context.Context, cutoff time.Time) (int, error)
}

type service struct {
	registry  *Registry
	catalog   CatalogLookup
	customers CustomerLookup
	methods   MethodLookup
	orders    OrderWriter
	ledger    SaleLedger
	tickets   TicketSequence
	tx        txRunner
	logg      *logger.Logger
}

// NewService wires the session engine to its collaborators.
func NewService(
	registry *Registry,
	catalog CatalogLookup,
	customers CustomerLookup,
	methods MethodLookup,
	orders OrderWriter,
	ledger SaleLedger,
	tickets TicketSequence,
	tx txRunner,
	logg *logger.Logger,
) (Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("session registry required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer lookup required")
	}
	if methods == nil {
		return nil, fmt.Errorf("payment method lookup required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order writer required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("sale ledger required")
	}
	if tickets == nil {
		return nil, fmt.Errorf("ticket sequence required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		registry:  registry,
		catalog:   catalog,
		customers: customers,
		methods:   methods,
		orders:    orders,
		ledger:    ledger,
		tickets:   tickets,
		tx:        tx,
		logg:      logg,
	}, nil
}

func (s *service) StartSession(ctx context.Context, terminalID string, fulfillment enums.FulfillmentType) (Snapshot, error) {
	if terminalID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "terminal id required")
	}
	if !fulfillment.IsValid() {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown fulfillment type %q", fulfillment))
	}

	session, err := s.registry.Start(terminalID, fulfillment)
	if err != nil {
		return Snapshot{}, err
	}
	s.logg.Info(s.logg.WithTerminalID(ctx, terminalID), "session started")
	return session.Snapshot(), nil
}

func (s *service) GetSession(_ context.Context, terminalID string) (Snapshot, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *service) AddItem(ctx context.Context, terminalID string, itemID uuid.UUID, qty int) (Snapshot, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}

	item, err := s.catalog.GetSellableItem(ctx, itemID)
	if err != nil {
		return Snapshot{}, err
	}
	quota, err := s.catalog.GetQuotaForPrincipal(ctx, itemID)
	if err != nil {
		return Snapshot{}, err
	}

	if err := session.Mutate(func(cart *Cart) error {
		return cart.AddPrincipal(item, quota, qty)
	}); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *service) AttachComplement(ctx context.Context, terminalID string, principalID, complementID uuid.UUID, qty int) (Snapshot, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}

	complement, err := s.catalog.GetSellableItem(ctx, complementID)
	if err != nil {
		return Snapshot{}, err
	}

	if err := session.Mutate(func(cart *Cart) error {
		return cart.AttachComplement(principalID, complement, qty)
	}); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *service) SetQuantity(_ context.Context, terminalID string, itemID uuid.UUID, qty int) (Snapshot, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := session.Mutate(func(cart *Cart) error {
		return cart.SetQuantity(itemID, qty)
	}); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *service) RemoveLine(_ context.Context, terminalID string, itemID uuid.UUID) (Snapshot, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := session.Mutate(func(cart *Cart) error {
		cart.RemoveLine(itemID)
		return nil
	}); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// SetCustomer attaches the customer snapshot, or detaches when customerID is
// nil. The customer-bound fulfillment check runs at settlement, not here.
func (s *service) SetCustomer(ctx context.Context, terminalID string, customerID *uuid.UUID) (Snapshot, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}

	var snapshot *CustomerSnapshot
	if customerID != nil {
		customer, err := s.customers.GetCustomerSnapshot(ctx, *customerID)
		if err != nil {
			return Snapshot{}, err
		}
		snapshot = &customer
	}

	if err := session.Mutate(func(cart *Cart) error {
		cart.SetCustomer(snapshot)
		return nil
	}); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *service) SetNote(_ context.Context, terminalID string, note string) (Snapshot, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := session.Mutate(func(cart *Cart) error {
		cart.SetNote(note)
		return nil
	}); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *service) SetFulfillment(_ context.Context, terminalID string, fulfillment enums.FulfillmentType) (Snapshot, error) {
	if !fulfillment.IsValid() {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown fulfillment type %q", fulfillment))
	}
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := session.SetFulfillment(fulfillment); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

func (s *service) InitiateSettlement(_ context.Context, terminalID string) (decimal.Decimal, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return decimal.Zero, err
	}
	return session.InitiateSettlement()
}

func (s *service) SelectMethod(ctx context.Context, terminalID string, methodID uuid.UUID) (Snapshot, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return Snapshot{}, err
	}

	method, err := s.methods.GetActiveMethod(ctx, methodID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := session.SelectMethod(method); err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Finalize settles the terminal's session and persists the paid order inside
// a transaction. The ledger write happens after commit; a ledger failure is
// logged as a warning and never unsettles the order.
func (s *service) Finalize(ctx context.Context, terminalID string, tendered *decimal.Decimal) (*models.Order, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	_, err = session.Finalize(tendered, func(st Settlement) error {
		order := buildPaidOrder(st)
		order.TicketNumber = s.nextTicket(ctx, order.PlacedAt)
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			persisted, err := s.orders.WithTx(tx).Create(ctx, order)
			if err != nil {
				return err
			}
			created = persisted
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.registry.Remove(terminalID)

	ctx = s.logg.WithOrderID(s.logg.WithTerminalID(ctx, terminalID), created.ID.String())
	if err := s.ledger.RecordSale(ctx, created); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("sale ledger write failed, order remains settled: %v", err))
	}
	s.logg.Info(ctx, "session settled")
	return created, nil
}

func (s *service) Cancel(ctx context.Context, terminalID string) error {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return err
	}
	if err := session.Cancel(); err != nil {
		return err
	}
	s.registry.Remove(terminalID)
	s.logg.Info(s.logg.WithTerminalID(ctx, terminalID), "session cancelled")
	return nil
}

// SavePending validates the cart and stores it as a pending order without
// settlement. On success the session is consumed; a failed write leaves it
// composing.
func (s *service) SavePending(ctx context.Context, terminalID string) (*models.Order, error) {
	session, err := s.registry.Get(terminalID)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = session.SavePending(func(cart *Cart, fulfillment enums.FulfillmentType) error {
		order := buildPendingOrder(cart, fulfillment)
		order.TicketNumber = s.nextTicket(ctx, order.PlacedAt)
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			persisted, err := s.orders.WithTx(tx).Create(ctx, order)
			if err != nil {
				return err
			}
			created = persisted
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.registry.Remove(terminalID)
	s.logg.Info(s.logg.WithOrderID(s.logg.WithTerminalID(ctx, terminalID), created.ID.String()), "pending order saved")
	return created, nil
}

// SweepIdle cancels sessions with no activity since cutoff and reports how
// many it dropped.
func (s *service) SweepIdle(ctx context.Context, cutoff time.Time) (int, error) {
	swept := 0
	for _, session := range s.registry.IdleSessions(cutoff) {
		terminalID := session.TerminalID()
		if err := session.Cancel(); err != nil {
			// Lost the race with an operator action; leave it alone.
			continue
		}
		s.registry.Remove(terminalID)
		s.logg.Info(s.logg.WithTerminalID(ctx, terminalID), "idle session cancelled")
		swept++
	}
	return swept, nil
}

// nextTicket is best-effort: a counter outage must not block the sale, so a
// failed increment leaves the ticket number at zero.
func (s *service) nextTicket(ctx context.Context, day time.Time) int64 {
	ticket, err := s.tickets.Next(ctx, day)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("ticket counter unavailable: %v", err))
		return 0
	}
	return ticket
}

func buildPaidOrder(st Settlement) *models.Order {
	order := snapshotOrder(st.Cart, st.Fulfillment)
	order.Status = enums.OrderStatusPaid
	order.Total = st.AmountDue

	methodID := st.Method.ID
	methodName := st.Method.Name
	tendered := st.Tendered
	change := st.Change
	order.PaymentMethodID = &methodID
	order.PaymentMethodName = &methodName
	order.AmountTendered = &tendered
	order.Change = &change
	return order
}

func buildPendingOrder(cart *Cart, fulfillment enums.FulfillmentType) *models.Order {
	order := snapshotOrder(cart, fulfillment)
	order.Status = enums.OrderStatusPending
	return order
}

// snapshotOrder freezes the cart into order rows, preserving line and
// complement positions so receipts replay the composition order.
func snapshotOrder(cart *Cart, fulfillment enums.FulfillmentType) *models.Order {
	order := &models.Order{
		PlacedAt:        time.Now().UTC(),
		FulfillmentType: fulfillment,
		CustomerName:    walkInName,
		Note:            cart.Note(),
		Total:           cart.Total(),
	}
	if customer := cart.Customer(); customer != nil {
		id := customer.ID
		order.CustomerID = &id
		order.CustomerName = customer.Name
	}

	for pos, line := range cart.Lines() {
		item := models.OrderLineItem{
			ItemID:    line.Item.ItemID,
			Name:      line.Item.Name,
			Unit:      line.Item.Unit,
			UnitPrice: line.Item.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
			Position:  pos,
		}
		for cpos, sel := range line.Complements {
			item.Complements = append(item.Complements, models.OrderLineComplement{
				ItemID:      sel.Item.ItemID,
				Name:        sel.Item.Name,
				UnitPrice:   sel.Item.UnitPrice,
				Quantity:    sel.Quantity,
				BilledUnits: sel.Billed,
				FreeUnits:   sel.Free,
				Position:    cpos,
			})
		}
		order.Lines = append(order.Lines, item)
	}
	return order
}
