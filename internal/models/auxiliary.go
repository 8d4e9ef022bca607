package models

import "github.com/shopspring/decimal"

// DefaultAuxiliaryGroup is used when a record is stored without a group.
const DefaultAuxiliaryGroup = "geral"

// Auxiliary is a free-form key/value record, e.g. a percentage target for a
// spending category. Keys are unique within their group.
type Auxiliary struct {
	Base
	Key     string          `gorm:"not null;uniqueIndex:idx_auxiliary_key_group" json:"key"`
	Value   decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"value"`
	Content string          `json:"content"`
	Group   string          `gorm:"column:group_name;not null;default:'geral';uniqueIndex:idx_auxiliary_key_group" json:"group"`
}

// TableName overrides the default pluralised name.
func (Auxiliary) TableName() string {
	return "auxiliary_records"
}
