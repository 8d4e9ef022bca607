package testutil_test

import (
	"testing"

	"fluxo/internal/errors"
	"fluxo/internal/models"
	"fluxo/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"boxes", "movements", "bills", "bill_payments", "auxiliary_records", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}

	principal := testutil.ReloadBox(t, db, models.PrincipalBoxID)
	if principal.Name != models.PrincipalBoxName {
		t.Errorf("expected seeded principal, got %q", principal.Name)
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	a := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, a)
	b := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, b)

	testutil.CreateTestBox(t, a)

	var n int64
	b.Model(&models.Box{}).Count(&n)
	if n != 1 {
		t.Errorf("expected only the principal box in the second database, got %d boxes", n)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	box := testutil.CreateTestBox(t, db)
	if box.ID == "" {
		t.Fatal("box should have an ID")
	}

	m := testutil.CreateTestMovement(t, db, box.ID, testutil.D("-12.50"), "Mercado")
	if m.Kind != models.MovementKindOutflow {
		t.Errorf("expected outflow kind, got %s", m.Kind)
	}
	if testutil.CountMovements(t, db, box.ID) != 1 {
		t.Error("expected one movement")
	}

	bill := testutil.CreateTestBill(t, db, testutil.D("200"))
	testutil.AssertDecimalEqual(t, testutil.D("200"), bill.Remaining, "remaining")

	testutil.SetBoxBalance(t, db, box.ID, testutil.D("42"))
	testutil.AssertDecimalEqual(t, testutil.D("42"), testutil.ReloadBox(t, db, box.ID).Balance, "balance")
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBoxNotFound, "custom message")
	testutil.AssertAppError(t, err, "BOX_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
