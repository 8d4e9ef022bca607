package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fluxo/internal/uuid"
)

func init() {
	// Clients read balances as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Box{},
		&Movement{},
		&Bill{},
		&BillPayment{},
		&Auxiliary{},
		&AuditLog{},
	}
}
