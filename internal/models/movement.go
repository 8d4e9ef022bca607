package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementKind is the direction of a movement. It is never stored: the sign
// of Amount is the only source of truth.
type MovementKind string

const (
	MovementKindInflow  MovementKind = "inflow"
	MovementKindOutflow MovementKind = "outflow"
)

// ParseMovementKind accepts the canonical kinds and the Portuguese aliases
// used by the dashboard ("entrada", "saida").
func ParseMovementKind(s string) (MovementKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inflow", "entrada":
		return MovementKindInflow, true
	case "outflow", "saida", "saída":
		return MovementKindOutflow, true
	}
	return "", false
}

// Categories with reporting semantics.
const (
	CategoryLoans          = "Empréstimos"
	CategoryOpening        = "Início"
	CategoryIncome         = "Entrada"
	CategoryCarriedForward = "Saldo Anterior"
	CategoryDefault        = "Outros"
)

// Movement is a single signed ledger entry (movimentação) owned by a box.
type Movement struct {
	Base
	Description string          `gorm:"not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Category    string          `gorm:"not null;default:'Outros';index" json:"category"`
	BoxID       string          `gorm:"type:uuid;not null;index" json:"box_id"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	// Kind is derived from the sign of Amount after load or create.
	Kind MovementKind `gorm:"-" json:"kind"`

	// Relationships
	Box *Box `gorm:"foreignKey:BoxID" json:"box,omitempty"`
}

// SignedAmount normalises amount for the given kind: outflows are stored as
// -|amount|, inflows as +|amount|.
func SignedAmount(amount decimal.Decimal, kind MovementKind) decimal.Decimal {
	if kind == MovementKindOutflow {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// KindOf projects the direction of a signed amount.
func KindOf(amount decimal.Decimal) MovementKind {
	if amount.IsNegative() {
		return MovementKindOutflow
	}
	return MovementKindInflow
}

// AfterFind fills the derived Kind.
func (m *Movement) AfterFind(tx *gorm.DB) error {
	m.Kind = KindOf(m.Amount)
	return nil
}

// AfterCreate fills the derived Kind.
func (m *Movement) AfterCreate(tx *gorm.DB) error {
	m.Kind = KindOf(m.Amount)
	return nil
}
