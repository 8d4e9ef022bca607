package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
	"fluxo/internal/services"
)

func setupAuxiliaryRouter(handler *AuxiliaryHandler) *gin.Engine {
	r := gin.New()
	r.POST("/adicionais", handler.CreateAuxiliary)
	r.GET("/adicionais", handler.ListAuxiliary)
	r.GET("/adicionais/busca", handler.FindByKey)
	r.GET("/adicionais/:id", handler.GetAuxiliary)
	r.PUT("/adicionais/:id", handler.UpdateAuxiliary)
	r.DELETE("/adicionais/:id", handler.DeleteAuxiliary)
	return r
}

func TestAuxiliaryHandler_CreateAuxiliary(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		var got services.AuxiliaryInput
		svc := &mockAuxiliaryService{
			createAuxiliaryFn: func(_ context.Context, in services.AuxiliaryInput) (*models.Auxiliary, error) {
				got = in
				return &models.Auxiliary{Base: models.Base{ID: "aux-1"}, Key: in.Key, Value: in.Value, Group: "metas"}, nil
			},
		}
		r := setupAuxiliaryRouter(NewAuxiliaryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/adicionais", `{"key":"Lazer","value":10,"group":"metas"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Key != "Lazer" || got.Group != "metas" || !got.Value.Equal(decimal.NewFromInt(10)) {
			t.Errorf("unexpected input %+v", got)
		}
	})

	t.Run("returns 400 without a key", func(t *testing.T) {
		r := setupAuxiliaryRouter(NewAuxiliaryHandler(&mockAuxiliaryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/adicionais", `{"value":10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate key", func(t *testing.T) {
		svc := &mockAuxiliaryService{
			createAuxiliaryFn: func(_ context.Context, _ services.AuxiliaryInput) (*models.Auxiliary, error) {
				return nil, apperrors.ErrDuplicateKey
			},
		}
		r := setupAuxiliaryRouter(NewAuxiliaryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/adicionais", `{"key":"Lazer"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_KEY")
	})
}

func TestAuxiliaryHandler_ListAuxiliary(t *testing.T) {
	var gotGroup string
	svc := &mockAuxiliaryService{
		listAuxiliaryFn: func(_ context.Context, group string) ([]models.Auxiliary, error) {
			gotGroup = group
			return []models.Auxiliary{{Key: "a"}, {Key: "b"}}, nil
		},
	}
	r := setupAuxiliaryRouter(NewAuxiliaryHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/adicionais?grupo=metas", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotGroup != "metas" {
		t.Errorf("expected group metas, got %q", gotGroup)
	}
	if len(parseJSONArray(t, rec)) != 2 {
		t.Error("expected two records")
	}
}

func TestAuxiliaryHandler_FindByKey(t *testing.T) {
	t.Run("is not shadowed by the id route", func(t *testing.T) {
		var gotKey, gotGroup string
		svc := &mockAuxiliaryService{
			findByKeyFn: func(_ context.Context, key, group string) (*models.Auxiliary, error) {
				gotKey, gotGroup = key, group
				return &models.Auxiliary{Key: key, Group: group}, nil
			},
		}
		r := setupAuxiliaryRouter(NewAuxiliaryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/adicionais/busca?chave=Lazer&grupo=metas", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotKey != "Lazer" || gotGroup != "metas" {
			t.Errorf("unexpected lookup %q/%q", gotKey, gotGroup)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockAuxiliaryService{
			findByKeyFn: func(_ context.Context, _, _ string) (*models.Auxiliary, error) {
				return nil, apperrors.ErrAuxiliaryNotFound
			},
		}
		r := setupAuxiliaryRouter(NewAuxiliaryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/adicionais/busca?chave=nada", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAuxiliaryHandler_UpdateAndDelete(t *testing.T) {
	audit := &mockAuditService{}
	var got services.AuxiliaryUpdate
	svc := &mockAuxiliaryService{
		updateAuxiliaryFn: func(_ context.Context, id string, upd services.AuxiliaryUpdate) (*models.Auxiliary, error) {
			got = upd
			return &models.Auxiliary{Base: models.Base{ID: id}, Content: *upd.Content}, nil
		},
	}
	r := setupAuxiliaryRouter(NewAuxiliaryHandler(svc, audit))

	rec := doRequest(r, "PUT", "/adicionais/aux-1", `{"content":"nota"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Key != nil || got.Content == nil {
		t.Errorf("unexpected update %+v", got)
	}

	rec = doRequest(r, "DELETE", "/adicionais/aux-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	want := []string{services.AuditUpdateAuxiliary, services.AuditDeleteAuxiliary}
	if len(audit.actions) != 2 || audit.actions[0] != want[0] || audit.actions[1] != want[1] {
		t.Errorf("expected %v, got %v", want, audit.actions)
	}
}
