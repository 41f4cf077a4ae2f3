package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/enums"
)

// Customer is a directory entry used by delivery and preorder fulfillment.
type Customer struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	PersonType enums.PersonType `gorm:"column:person_type;not null;default:'individual'"`
	Name       string           `gorm:"column:name;not null"`
	Document   string           `gorm:"column:document"`
	Phone      string           `gorm:"column:phone"`
	Street     string           `gorm:"column:street"`
	Number     string           `gorm:"column:number"`
	District   string           `gorm:"column:district"`
	Complement string           `gorm:"column:complement"`
	ZipCode    *string          `gorm:"column:zip_code"`
	City       *string          `gorm:"column:city"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
