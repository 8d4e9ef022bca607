package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fluxo/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// D parses a decimal literal, failing loudly on typos.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestBox creates a secondary box with a unique name and zero balance.
func CreateTestBox(t *testing.T, db *gorm.DB) *models.Box {
	t.Helper()
	return CreateTestBoxNamed(t, db, fmt.Sprintf("Box %d", nextID()))
}

// CreateTestBoxNamed creates a secondary box with the given name.
func CreateTestBoxNamed(t *testing.T, db *gorm.DB, name string) *models.Box {
	t.Helper()

	box := &models.Box{Name: name, Balance: decimal.Zero}
	if err := db.Create(box).Error; err != nil {
		t.Fatalf("failed to create test box: %v", err)
	}
	return box
}

// SetBoxBalance overwrites a stored balance without touching movements,
// producing a deliberately inconsistent box.
func SetBoxBalance(t *testing.T, db *gorm.DB, boxID string, balance decimal.Decimal) {
	t.Helper()

	if err := db.Model(&models.Box{}).Where("id = ?", boxID).Update("balance", balance).Error; err != nil {
		t.Fatalf("failed to set box balance: %v", err)
	}
}

// CreateTestMovement inserts a raw movement row. Balances are not touched.
func CreateTestMovement(t *testing.T, db *gorm.DB, boxID string, amount decimal.Decimal, category string) *models.Movement {
	t.Helper()

	m := &models.Movement{
		Description: fmt.Sprintf("Movement %d", nextID()),
		Amount:      amount,
		Category:    category,
		BoxID:       boxID,
		Date:        time.Now(),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test movement: %v", err)
	}
	return m
}

// CreateTestBill creates a pending bill due in a week.
func CreateTestBill(t *testing.T, db *gorm.DB, amount decimal.Decimal) *models.Bill {
	t.Helper()

	n := nextID()
	bill := &models.Bill{
		Institution: fmt.Sprintf("Bank %d", n),
		Description: fmt.Sprintf("Bill %d", n),
		Amount:      amount,
		Remaining:   amount,
		DueDate:     time.Now().AddDate(0, 0, 7),
		Status:      models.BillStatusPending,
	}
	if err := db.Create(bill).Error; err != nil {
		t.Fatalf("failed to create test bill: %v", err)
	}
	return bill
}

// CreateTestAuxiliary creates an auxiliary record in the given group.
func CreateTestAuxiliary(t *testing.T, db *gorm.DB, key, group string, value decimal.Decimal) *models.Auxiliary {
	t.Helper()

	rec := &models.Auxiliary{Key: key, Group: group, Value: value}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("failed to create test auxiliary record: %v", err)
	}
	return rec
}

// ReloadBox fetches the current state of a box.
func ReloadBox(t *testing.T, db *gorm.DB, id string) *models.Box {
	t.Helper()

	var box models.Box
	if err := db.First(&box, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload box %s: %v", id, err)
	}
	return &box
}

// CountMovements counts the movements owned by a box.
func CountMovements(t *testing.T, db *gorm.DB, boxID string) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.Movement{}).Where("box_id = ?", boxID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count movements: %v", err)
	}
	return n
}
