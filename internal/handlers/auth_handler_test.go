package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/services"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/token", handler.IssueToken)
	return r
}

func TestAuthHandler_IssueToken(t *testing.T) {
	t.Run("returns a token", func(t *testing.T) {
		audit := &mockAuditService{}
		svc := &mockAuthService{
			enabled: true,
			issueTokenFn: func(password string) (*services.TokenResult, error) {
				if password != "s3nha" {
					t.Errorf("unexpected password %q", password)
				}
				return &services.TokenResult{Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, audit))

		rec := doRequest(r, "POST", "/auth/token", `{"password":"s3nha"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["token"] != "abc" {
			t.Error("expected token abc")
		}
		if len(audit.actions) != 1 || audit.actions[0] != services.AuditIssueToken {
			t.Errorf("expected ISSUE_TOKEN audit, got %v", audit.actions)
		}
	})

	t.Run("returns 400 without a password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{enabled: true}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/token", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 401 on a wrong password", func(t *testing.T) {
		audit := &mockAuditService{}
		svc := &mockAuthService{
			enabled: true,
			issueTokenFn: func(_ string) (*services.TokenResult, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, audit))

		rec := doRequest(r, "POST", "/auth/token", `{"password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
		if len(audit.actions) != 0 {
			t.Error("expected no audit on failure")
		}
	})

	t.Run("returns 404 when auth is disabled", func(t *testing.T) {
		svc := &mockAuthService{
			issueTokenFn: func(_ string) (*services.TokenResult, error) {
				return nil, apperrors.ErrAuthDisabled
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/token", `{"password":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
