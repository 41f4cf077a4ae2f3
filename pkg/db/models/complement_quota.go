package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplementQuota configures the free complement allowance of one principal
// item. At most one quota exists per item; it is deleted with its owner.
type ComplementQuota struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ItemID    uuid.UUID             `gorm:"column:item_id;type:uuid;not null;uniqueIndex"`
	FreeLimit int                   `gorm:"column:free_limit;not null;default:0"`
	Eligible  []ComplementQuotaItem `gorm:"foreignKey:QuotaID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// ComplementQuotaItem marks one complement item as eligible under a quota.
// The quota references complements, it does not own them.
type ComplementQuotaItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	QuotaID      uuid.UUID `gorm:"column:quota_id;type:uuid;not null;index"`
	ComplementID uuid.UUID `gorm:"column:complement_id;type:uuid;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the table gorm's pluralizer would otherwise name
// complement_quota ("quota" reads as already plural to it).
func (ComplementQuota) TableName() string {
	return "complement_quotas"
}

func (q *ComplementQuota) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *ComplementQuotaItem) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
