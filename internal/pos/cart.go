package pos

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

// ItemSnapshot is the slice of a catalog item a cart line keeps. The price is
// captured here once, at add time; later catalog edits never reach it.
type ItemSnapshot struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// QuotaSnapshot mirrors a principal's complement quota at add time.
type QuotaSnapshot struct {
	FreeLimit int
	Eligible  map[uuid.UUID]struct{}
}

// Allows reports whether the complement id is eligible under the quota.
func (q *QuotaSnapshot) Allows(complementID uuid.UUID) bool {
	if q == nil {
		return false
	}
	_, ok := q.Eligible[complementID]
	return ok
}

// ComplementSelection is one complement attached to a principal line. Billed
// and Free are maintained by the quota resolver after every mutation.
type ComplementSelection struct {
	Item     ItemSnapshot `json:"item"`
	Quantity int          `json:"quantity"`
	Billed   int          `json:"billed"`
	Free     int          `json:"free"`
}

// CartLine is one row of the in-progress order.
type CartLine struct {
	Item        ItemSnapshot          `json:"item"`
	Quantity    int                   `json:"quantity"`
	Quota       *QuotaSnapshot        `json:"-"`
	Complements []ComplementSelection `json:"complements,omitempty"`
	LineTotal   decimal.Decimal       `json:"line_total"`
}

// CustomerSnapshot is the customer reference carried by the cart.
type CustomerSnapshot struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Cart holds the line items of the order under construction. Lines are keyed
// by principal item id so adding an already-present item merges into the
// existing row instead of inserting a duplicate; the sequence slice preserves
// insertion order for display and order snapshots.
type Cart struct {
	lines    map[uuid.UUID]*CartLine
	sequence []uuid.UUID
	customer *CustomerSnapshot
	note     string
	total    decimal.Decimal
}

func NewCart() *Cart {
	return &Cart{
		lines: make(map[uuid.UUID]*CartLine),
		total: decimal.Zero,
	}
}

// AddPrincipal merges qty units of the item into the cart, capturing price
// and quota from the snapshots. Quotas apply to attached complements only,
// so no complement recomputation happens here.
func (c *Cart) AddPrincipal(item ItemSnapshot, quota *QuotaSnapshot, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, fmt.Sprintf("quantity %d is not positive", qty))
	}

	if line, ok := c.lines[item.ItemID]; ok {
		line.Quantity += qty
		c.recalcLine(line)
		c.recalcTotal()
		return nil
	}

	line := &CartLine{
		Item:     item,
		Quantity: qty,
		Quota:    quota,
	}
	c.lines[item.ItemID] = line
	c.sequence = append(c.sequence, item.ItemID)
	c.recalcLine(line)
	c.recalcTotal()
	return nil
}

// AttachComplement appends qty units of the complement to the principal's
// line, merging with an existing selection of the same complement while
// preserving first-attachment order, then refreshes the billed/free split.
func (c *Cart) AttachComplement(principalID uuid.UUID, complement ItemSnapshot, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, fmt.Sprintf("quantity %d is not positive", qty))
	}
	line, ok := c.lines[principalID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if line.Quota == nil {
		return pkgerrors.New(pkgerrors.CodeInvalidComplement, "item does not accept complements")
	}
	if !line.Quota.Allows(complement.ItemID) {
		return pkgerrors.New(pkgerrors.CodeInvalidComplement, "complement is not eligible for this item").
			WithDetails(map[string]any{"complement_id": complement.ItemID})
	}

	merged := false
	for i := range line.Complements {
		if line.Complements[i].Item.ItemID == complement.ItemID {
			line.Complements[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		line.Complements = append(line.Complements, ComplementSelection{
			Item:     complement,
			Quantity: qty,
		})
	}

	c.recalcLine(line)
	c.recalcTotal()
	return nil
}

// SetQuantity replaces the principal quantity of an existing line. Zero and
// negative values are rejected; deleting a line goes through RemoveLine.
func (c *Cart) SetQuantity(principalID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, fmt.Sprintf("quantity %d is not positive", qty))
	}
	line, ok := c.lines[principalID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	line.Quantity = qty
	c.recalcLine(line)
	c.recalcTotal()
	return nil
}

// RemoveLine deletes the line and its attached complements. Removing an
// absent line is a no-op.
func (c *Cart) RemoveLine(principalID uuid.UUID) {
	if _, ok := c.lines[principalID]; !ok {
		return
	}
	delete(c.lines, principalID)
	for i, id := range c.sequence {
		if id == principalID {
			c.sequence = append(c.sequence[:i], c.sequence[i+1:]...)
			break
		}
	}
	c.recalcTotal()
}

// Lines returns the cart rows in insertion order.
func (c *Cart) Lines() []*CartLine {
	lines := make([]*CartLine, 0, len(c.sequence))
	for _, id := range c.sequence {
		lines = append(lines, c.lines[id])
	}
	return lines
}

// Line returns the row for the given principal id, if present.
func (c *Cart) Line(principalID uuid.UUID) (*CartLine, bool) {
	line, ok := c.lines[principalID]
	return line, ok
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Total is the sum of all line totals, kept in sync by every mutation.
func (c *Cart) Total() decimal.Decimal {
	return c.total
}

func (c *Cart) SetCustomer(customer *CustomerSnapshot) {
	c.customer = customer
}

func (c *Cart) Customer() *CustomerSnapshot {
	return c.customer
}

func (c *Cart) SetNote(note string) {
	c.note = note
}

func (c *Cart) Note() string {
	return c.note
}

func (c *Cart) recalcLine(line *CartLine) {
	freeLimit := 0
	if line.Quota != nil {
		freeLimit = line.Quota.FreeLimit
	}
	splits := ResolveBillableComplements(freeLimit, line.Complements)

	total := line.Item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	for i, split := range splits {
		line.Complements[i].Billed = split.Billed
		line.Complements[i].Free = split.Free
		total = total.Add(line.Complements[i].Item.UnitPrice.Mul(decimal.NewFromInt(int64(split.Billed))))
	}
	line.LineTotal = total
}

func (c *Cart) recalcTotal() {
	total := decimal.Zero
	for _, id := range c.sequence {
		total = total.Add(c.lines[id].LineTotal)
	}
	c.total = total
}
