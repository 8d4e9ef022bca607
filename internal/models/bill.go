package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the payment state of a bill.
type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPartial BillStatus = "partial"
	BillStatusPaid    BillStatus = "paid"
	// BillStatusOverdue is only ever set explicitly by the client.
	BillStatusOverdue BillStatus = "overdue"
)

// Valid reports whether s is a known status.
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusPartial, BillStatusPaid, BillStatusOverdue:
		return true
	}
	return false
}

// Bill is a payable obligation (conta) with partial payment tracking.
type Bill struct {
	Base
	Institution string          `gorm:"not null" json:"institution"`
	Description string          `gorm:"not null" json:"description"`
	Note        string          `json:"note"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Remaining   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"remaining"`
	DueDate     time.Time       `gorm:"not null;index" json:"due_date"`
	Status      BillStatus      `gorm:"not null;default:'pending';index" json:"status"`

	// Relationships
	Payments []BillPayment `gorm:"foreignKey:BillID" json:"payments"`
}

// BillPayment records one box's contribution towards a bill.
type BillPayment struct {
	Base
	BillID     string          `gorm:"type:uuid;not null;index" json:"bill_id"`
	BoxID      string          `gorm:"type:uuid;not null" json:"box_id"`
	MovementID string          `gorm:"type:uuid" json:"movement_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
}

// PaidTotal sums the recorded payments.
func (b *Bill) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// DeriveBillStatus computes the status implied by the remaining balance:
// zero is paid, otherwise partial once any payment exists, else pending.
func DeriveBillStatus(remaining decimal.Decimal, payments int) BillStatus {
	if remaining.IsZero() {
		return BillStatusPaid
	}
	if payments > 0 {
		return BillStatusPartial
	}
	return BillStatusPending
}
