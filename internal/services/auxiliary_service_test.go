package services

import (
	"context"
	"testing"

	"fluxo/internal/models"
	"fluxo/internal/testutil"
)

func TestCreateAuxiliary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuxiliaryService(db)

	t.Run("default_group", func(t *testing.T) {
		rec, err := svc.CreateAuxiliary(ctx, AuxiliaryInput{Key: "Lazer", Value: testutil.D("0.1")})
		testutil.AssertNoError(t, err)
		if rec.Group != models.DefaultAuxiliaryGroup {
			t.Errorf("expected default group, got %q", rec.Group)
		}
	})

	t.Run("duplicate_key_in_group", func(t *testing.T) {
		_, err := svc.CreateAuxiliary(ctx, AuxiliaryInput{Key: "Lazer", Group: models.DefaultAuxiliaryGroup})
		testutil.AssertAppError(t, err, "DUPLICATE_KEY")
	})

	t.Run("same_key_other_group", func(t *testing.T) {
		_, err := svc.CreateAuxiliary(ctx, AuxiliaryInput{Key: "Lazer", Group: "metas"})
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_key", func(t *testing.T) {
		_, err := svc.CreateAuxiliary(ctx, AuxiliaryInput{Key: "  "})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListAuxiliaryByGroup(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuxiliaryService(db)
	testutil.CreateTestAuxiliary(t, db, "a", "metas", testutil.D("1"))
	testutil.CreateTestAuxiliary(t, db, "b", "metas", testutil.D("2"))
	testutil.CreateTestAuxiliary(t, db, "c", "geral", testutil.D("3"))

	metas, err := svc.ListAuxiliary(ctx, "metas")
	testutil.AssertNoError(t, err)
	if len(metas) != 2 {
		t.Errorf("expected 2 records, got %d", len(metas))
	}

	all, err := svc.ListAuxiliary(ctx, "")
	testutil.AssertNoError(t, err)
	if len(all) != 3 {
		t.Errorf("expected 3 records, got %d", len(all))
	}
}

func TestUpdateAuxiliary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuxiliaryService(db)
	first := testutil.CreateTestAuxiliary(t, db, "a", "geral", testutil.D("1"))
	testutil.CreateTestAuxiliary(t, db, "b", "geral", testutil.D("2"))

	t.Run("value", func(t *testing.T) {
		v := testutil.D("0.25")
		updated, err := svc.UpdateAuxiliary(ctx, first.ID, AuxiliaryUpdate{Value: &v})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, v, updated.Value, "value")
	})

	t.Run("key_collision", func(t *testing.T) {
		k := "b"
		_, err := svc.UpdateAuxiliary(ctx, first.ID, AuxiliaryUpdate{Key: &k})
		testutil.AssertAppError(t, err, "DUPLICATE_KEY")
	})

	t.Run("not_found", func(t *testing.T) {
		k := "z"
		_, err := svc.UpdateAuxiliary(ctx, "0190a0a0-0000-7000-8000-00000000dead", AuxiliaryUpdate{Key: &k})
		testutil.AssertAppError(t, err, "AUXILIARY_NOT_FOUND")
	})
}

func TestFindByKeyAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuxiliaryService(db)
	rec := testutil.CreateTestAuxiliary(t, db, "Lazer", "metas", testutil.D("0.1"))

	found, err := svc.FindByKey(ctx, "Lazer", "metas")
	testutil.AssertNoError(t, err)
	if found.ID != rec.ID {
		t.Errorf("expected %s, got %s", rec.ID, found.ID)
	}

	_, err = svc.FindByKey(ctx, "Lazer", "geral")
	testutil.AssertAppError(t, err, "AUXILIARY_NOT_FOUND")

	_, err = svc.FindByKey(ctx, "", "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	testutil.AssertNoError(t, svc.DeleteAuxiliary(ctx, rec.ID))
	err = svc.DeleteAuxiliary(ctx, rec.ID)
	testutil.AssertAppError(t, err, "AUXILIARY_NOT_FOUND")
}
