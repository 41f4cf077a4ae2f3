package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/enums"
)

// CashMovement is one immutable entry in the cash drawer ledger.
type CashMovement struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OccurredAt time.Time              `gorm:"column:occurred_at;not null;index"`
	Type       enums.CashMovementType `gorm:"column:type;not null"`
	Amount     decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	Note       string                 `gorm:"column:note"`
	OrderID    *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (c *CashMovement) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
