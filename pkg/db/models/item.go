package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/enums"
)

// Item is a sellable catalog entry. Prices are captured into cart lines at
// add time, so edits here never touch open or completed orders.
type Item struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	GroupID      *uuid.UUID       `gorm:"column:group_id;type:uuid;index"`
	InternalCode string           `gorm:"column:internal_code;not null"`
	Barcode      string           `gorm:"column:barcode"`
	Name         string           `gorm:"column:name;not null"`
	UnitPrice    decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CostPrice    decimal.Decimal  `gorm:"column:cost_price;type:numeric(12,2);not null;default:0"`
	Unit         string           `gorm:"column:unit;not null;default:'UN'"`
	Kind         enums.ItemKind   `gorm:"column:kind;not null;default:'principal'"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	ImageURL     *string          `gorm:"column:image_url"`
	Quota        *ComplementQuota `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the caller left it empty (sqlite has no
// server-side uuid default).
func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
