package pos

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

// MethodSnapshot is the payment method captured at selection time.
type MethodSnapshot struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	IsCash bool      `json:"is_cash"`
}

// Settlement is the outcome handed to the commit callback when a session
// finalizes. Change is computed at full decimal precision.
type Settlement struct {
	Cart        *Cart
	Fulfillment enums.FulfillmentType
	Method      MethodSnapshot
	AmountDue   decimal.Decimal
	Tendered    decimal.Decimal
	Change      decimal.Decimal
}

// Session is the order composition state machine for one terminal:
// composing -> awaiting_payment -> paid, with cancelled reachable from any
// non-terminal state. All entry points take the session mutex, so discrete
// operator actions against the same terminal serialize; distinct terminals
// never share a session.
type Session struct {
	mu sync.Mutex

	terminalID  string
	fulfillment enums.FulfillmentType
	state       enums.SessionState
	cart        *Cart

	// Frozen on the transition into awaiting_payment. Cart edits are
	// rejected in that state, so the value can never drift from the cart.
	amountDue decimal.Decimal
	method    *MethodSnapshot

	startedAt  time.Time
	lastActive time.Time
}

func NewSession(terminalID string, fulfillment enums.FulfillmentType) *Session {
	now := time.Now().UTC()
	return &Session{
		terminalID:  terminalID,
		fulfillment: fulfillment,
		state:       enums.SessionComposing,
		cart:        NewCart(),
		startedAt:   now,
		lastActive:  now,
	}
}

func (s *Session) TerminalID() string {
	return s.terminalID
}

// Mutate applies a cart edit while the session is still composing. The edit
// either fully applies or leaves the cart untouched; illegal states return a
// STATE_CONFLICT without invoking fn.
func (s *Session) Mutate(fn func(cart *Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != enums.SessionComposing {
		return s.stateError("cart mutation", enums.SessionComposing)
	}
	if err := fn(s.cart); err != nil {
		return err
	}
	s.lastActive = time.Now().UTC()
	return nil
}

// SetFulfillment changes the fulfillment type while composing. The customer
// requirement is only enforced at settlement, so switching to a
// customer-bound type with no customer attached is legal here.
func (s *Session) SetFulfillment(fulfillment enums.FulfillmentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != enums.SessionComposing {
		return s.stateError("fulfillment change", enums.SessionComposing)
	}
	s.fulfillment = fulfillment
	s.lastActive = time.Now().UTC()
	return nil
}

// InitiateSettlement validates the cart and, on success, freezes the amount
// due and moves to awaiting_payment. A validation failure leaves the state
// unchanged.
func (s *Session) InitiateSettlement() (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != enums.SessionComposing {
		return decimal.Zero, s.stateError("initiate settlement", enums.SessionComposing)
	}
	if err := ValidateForSettlement(s.cart, s.fulfillment); err != nil {
		return decimal.Zero, err
	}

	s.amountDue = s.cart.Total()
	s.state = enums.SessionAwaitingPayment
	s.lastActive = time.Now().UTC()
	return s.amountDue, nil
}

// SelectMethod records the payment method. Re-entrant while awaiting payment:
// each call overwrites the previous selection.
func (s *Session) SelectMethod(method MethodSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != enums.SessionAwaitingPayment {
		return s.stateError("select payment method", enums.SessionAwaitingPayment)
	}
	s.method = &method
	s.lastActive = time.Now().UTC()
	return nil
}

// Finalize settles the session. For cash methods tendered must cover the
// frozen amount due, compared at full decimal precision; change is the exact
// difference. Non-cash methods ignore tendered entirely and change is zero.
// The commit callback persists the resulting order while the session lock is
// held; the session reaches paid only if commit succeeds, so a failed write
// leaves it in awaiting_payment for retry.
func (s *Session) Finalize(tendered *decimal.Decimal, commit func(st Settlement) error) (Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != enums.SessionAwaitingPayment {
		return Settlement{}, s.stateError("finalize payment", enums.SessionAwaitingPayment)
	}
	if s.method == nil {
		return Settlement{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no payment method selected")
	}

	settlement := Settlement{
		Cart:        s.cart,
		Fulfillment: s.fulfillment,
		Method:      *s.method,
		AmountDue:   s.amountDue,
		Tendered:    s.amountDue,
		Change:      decimal.Zero,
	}
	if s.method.IsCash {
		if tendered == nil {
			return Settlement{}, pkgerrors.New(pkgerrors.CodeInsufficientTender, "cash payment requires a tendered amount")
		}
		if tendered.LessThan(s.amountDue) {
			return Settlement{}, pkgerrors.New(pkgerrors.CodeInsufficientTender,
				fmt.Sprintf("tendered %s is below amount due %s", tendered.String(), s.amountDue.String())).
				WithDetails(map[string]any{
					"amount_due": s.amountDue.String(),
					"tendered":   tendered.String(),
				})
		}
		settlement.Tendered = *tendered
		settlement.Change = tendered.Sub(s.amountDue)
	}

	if commit != nil {
		if err := commit(settlement); err != nil {
			return Settlement{}, err
		}
	}

	s.state = enums.SessionPaid
	s.lastActive = time.Now().UTC()
	return settlement, nil
}

// Cancel moves any non-terminal session to cancelled and discards the cart.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cancel is not allowed in state %s", s.state))
	}
	s.state = enums.SessionCancelled
	s.lastActive = time.Now().UTC()
	return nil
}

// SavePending validates the cart like a settlement would, then hands it to
// the commit callback to persist as a pending order. On success the session
// is marked cancelled so the registry drops it; the cart lives on only inside
// the saved order.
func (s *Session) SavePending(commit func(cart *Cart, fulfillment enums.FulfillmentType) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != enums.SessionComposing {
		return s.stateError("save pending order", enums.SessionComposing)
	}
	if err := ValidateForSettlement(s.cart, s.fulfillment); err != nil {
		return err
	}
	if commit != nil {
		if err := commit(s.cart, s.fulfillment); err != nil {
			return err
		}
	}

	s.state = enums.SessionCancelled
	s.lastActive = time.Now().UTC()
	return nil
}

// Snapshot is the read model of a session returned to the driving UI.
type Snapshot struct {
	TerminalID  string                `json:"terminal_id"`
	State       enums.SessionState    `json:"state"`
	Fulfillment enums.FulfillmentType `json:"fulfillment_type"`
	Lines       []CartLine            `json:"lines"`
	Customer    *CustomerSnapshot     `json:"customer,omitempty"`
	Note        string                `json:"note,omitempty"`
	Total       decimal.Decimal       `json:"total"`
	AmountDue   *decimal.Decimal      `json:"amount_due,omitempty"`
	Method      *MethodSnapshot       `json:"payment_method,omitempty"`
	StartedAt   time.Time             `json:"started_at"`
	LastActive  time.Time             `json:"last_active_at"`
}

// Snapshot copies the session's visible state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]CartLine, 0, s.cart.Len())
	for _, line := range s.cart.Lines() {
		copied := *line
		copied.Complements = append([]ComplementSelection(nil), line.Complements...)
		lines = append(lines, copied)
	}

	snap := Snapshot{
		TerminalID:  s.terminalID,
		State:       s.state,
		Fulfillment: s.fulfillment,
		Lines:       lines,
		Customer:    s.cart.Customer(),
		Note:        s.cart.Note(),
		Total:       s.cart.Total(),
		StartedAt:   s.startedAt,
		LastActive:  s.lastActive,
	}
	if s.state == enums.SessionAwaitingPayment || s.state == enums.SessionPaid {
		due := s.amountDue
		snap.AmountDue = &due
	}
	if s.method != nil {
		method := *s.method
		snap.Method = &method
	}
	return snap
}

// State returns the current state under the lock.
func (s *Session) State() enums.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive returns the time of the most recent successful operation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) stateError(op string, want enums.SessionState) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("%s requires state %s, session is %s", op, want, s.state)).
		WithDetails(map[string]any{"state": s.state.String()})
}
