package services

import (
	"context"
	"testing"

	"fluxo/internal/models"
	"fluxo/internal/testutil"
)

func TestCreateBox(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBoxService(db, models.PrincipalBoxID)

		box, err := svc.CreateBox(ctx, "  Carteira ", "pocket money")
		testutil.AssertNoError(t, err)
		if box.Name != "Carteira" {
			t.Errorf("expected trimmed name, got %q", box.Name)
		}
		if !box.Balance.IsZero() {
			t.Errorf("expected zero balance, got %s", box.Balance)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBoxService(db, models.PrincipalBoxID)

		_, err := svc.CreateBox(ctx, "   ", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBoxService(db, models.PrincipalBoxID)

		_, err := svc.CreateBox(ctx, "Carteira", "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateBox(ctx, "Carteira", "")
		testutil.AssertAppError(t, err, "DUPLICATE_BOX_NAME")
	})
}

func TestGetBox(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBoxService(db, models.PrincipalBoxID)

	t.Run("principal_alias", func(t *testing.T) {
		box, err := svc.GetBox(ctx, "principal")
		testutil.AssertNoError(t, err)
		if box.ID != models.PrincipalBoxID {
			t.Errorf("expected principal id, got %s", box.ID)
		}
	})

	t.Run("malformed_id", func(t *testing.T) {
		_, err := svc.GetBox(ctx, "not-a-uuid")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_id", func(t *testing.T) {
		_, err := svc.GetBox(ctx, "0190a0a0-0000-7000-8000-00000000dead")
		testutil.AssertAppError(t, err, "BOX_NOT_FOUND")
	})
}

func TestListBoxesOrderedByName(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBoxService(db, models.PrincipalBoxID)

	testutil.CreateTestBoxNamed(t, db, "Viagem")
	testutil.CreateTestBoxNamed(t, db, "Carteira")

	boxes, err := svc.ListBoxes(ctx)
	testutil.AssertNoError(t, err)
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}
	want := []string{"Carteira", "Principal", "Viagem"}
	for i, name := range want {
		if boxes[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, boxes[i].Name)
		}
	}
}

func TestEnsurePrincipal(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDBWithoutPrincipal(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBoxService(db, models.PrincipalBoxID)

	first, err := svc.EnsurePrincipal(ctx)
	testutil.AssertNoError(t, err)
	second, err := svc.EnsurePrincipal(ctx)
	testutil.AssertNoError(t, err)

	if first.ID != models.PrincipalBoxID || second.ID != models.PrincipalBoxID {
		t.Errorf("expected well-known principal id, got %s and %s", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.Box{}).Count(&count)
	if count != 1 {
		t.Errorf("expected a single box, got %d", count)
	}
}
