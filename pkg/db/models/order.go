package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/enums"
)

// Order is the immutable record produced when a composition session settles
// or is saved as pending. It captures a frozen copy of the cart; it never
// references the live session after creation.
type Order struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	TicketNumber      int64                 `gorm:"column:ticket_number;not null;default:0"`
	PlacedAt          time.Time             `gorm:"column:placed_at;not null"`
	FulfillmentType   enums.FulfillmentType `gorm:"column:fulfillment_type;not null"`
	CustomerID        *uuid.UUID            `gorm:"column:customer_id;type:uuid"`
	CustomerName      string                `gorm:"column:customer_name;not null"`
	Note              string                `gorm:"column:note"`
	Total             decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	Status            enums.OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	PaymentMethodID   *uuid.UUID            `gorm:"column:payment_method_id;type:uuid"`
	PaymentMethodName *string               `gorm:"column:payment_method_name"`
	AmountTendered    *decimal.Decimal      `gorm:"column:amount_tendered;type:numeric(12,2)"`
	Change            *decimal.Decimal      `gorm:"column:change;type:numeric(12,2)"`
	Lines             []OrderLineItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
}

// OrderLineItem snapshots one cart line at settlement time.
type OrderLineItem struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ItemID      uuid.UUID             `gorm:"column:item_id;type:uuid;not null"`
	Name        string                `gorm:"column:name;not null"`
	Unit        string                `gorm:"column:unit;not null"`
	UnitPrice   decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int                   `gorm:"column:quantity;not null"`
	LineTotal   decimal.Decimal       `gorm:"column:line_total;type:numeric(12,2);not null"`
	Position    int                   `gorm:"column:position;not null"`
	Complements []OrderLineComplement `gorm:"foreignKey:LineItemID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}

// OrderLineComplement snapshots one complement selection, including the
// billed/free split resolved against the principal's quota.
type OrderLineComplement struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	LineItemID  uuid.UUID       `gorm:"column:line_item_id;type:uuid;not null;index"`
	ItemID      uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	Name        string          `gorm:"column:name;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	BilledUnits int             `gorm:"column:billed_units;not null"`
	FreeUnits   int             `gorm:"column:free_units;not null"`
	Position    int             `gorm:"column:position;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (l *OrderLineItem) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (c *OrderLineComplement) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
