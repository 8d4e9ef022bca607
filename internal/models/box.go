package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PrincipalBoxID is the well-known id of the Principal box. Its balance
// mirrors every movement posted to the other boxes.
const PrincipalBoxID = "00000000-0000-7000-8000-000000000001"

// PrincipalBoxName is the display name the Principal box is seeded with.
const PrincipalBoxName = "Principal"

// Box is a named money pool (caixa).
type Box struct {
	Base
	Name        string          `gorm:"not null;uniqueIndex" json:"name"`
	Balance     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"`
	Description string          `json:"description"`
}

// IsPrincipal reports whether b is the Principal box.
func (b *Box) IsPrincipal() bool {
	return b.ID == PrincipalBoxID
}

// AfterFind trims float noise left by store-side arithmetic.
func (b *Box) AfterFind(tx *gorm.DB) error {
	b.Balance = b.Balance.Round(2)
	return nil
}
