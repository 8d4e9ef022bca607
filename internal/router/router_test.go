package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fluxo/internal/config"
	"fluxo/internal/events"
	"fluxo/internal/models"
	"fluxo/internal/telemetry"
	"fluxo/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (a *apiClient) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *apiClient) json(method, path, body string, wantStatus int) map[string]interface{} {
	a.t.Helper()
	rec := a.do(method, path, body)
	require.Equal(a.t, wantStatus, rec.Code, "%s %s: %s", method, path, rec.Body.String())
	var out map[string]interface{}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func setupAPI(t *testing.T, password string) (*apiClient, *gorm.DB, *events.Recorder, *telemetry.Metrics) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{
		JWTSecret:                   "test-secret",
		JWTExpirationDur:            time.Hour,
		ReportIncludePrincipalTotal: true,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.AuthPasswordHash = string(hash)
	}

	recorder := &events.Recorder{}
	metrics := telemetry.NewMetrics()
	r := New(NewServices(db, cfg, recorder, metrics), metrics, Options{})
	return &apiClient{t: t, router: r}, db, recorder, metrics
}

func TestLedgerFlow(t *testing.T) {
	api, _, recorder, _ := setupAPI(t, "")

	box := api.json("POST", "/caixas", `{"name":"Carteira"}`, http.StatusCreated)
	boxID := box["id"].(string)

	api.json("POST", "/movimentacoes",
		fmt.Sprintf(`{"description":"Salário","amount":100,"kind":"entrada","boxId":%q,"category":"Entrada"}`, boxID),
		http.StatusCreated)
	out := api.json("POST", "/movimentacoes",
		fmt.Sprintf(`{"description":"Mercado","amount":30,"kind":"saida","boxId":%q,"category":"Alimentação"}`, boxID),
		http.StatusCreated)
	assert.Equal(t, -30.0, out["amount"])
	assert.Equal(t, "outflow", out["kind"])

	got := api.json("GET", "/caixas/"+boxID, "", http.StatusOK)
	assert.Equal(t, 70.0, got["balance"])
	principal := api.json("GET", "/caixas/Principal", "", http.StatusOK)
	assert.Equal(t, 70.0, principal["balance"])

	integrity := api.json("GET", "/caixas/"+boxID+"/verificar-integridade", "", http.StatusOK)
	assert.Equal(t, true, integrity["consistent"])
	assert.Equal(t, 70.0, integrity["saldoCalculado"])

	summary := api.json("GET", "/extrato/resumo", "", http.StatusOK)
	assert.Equal(t, 100.0, summary["total_inflows"])
	assert.Equal(t, -30.0, summary["total_outflows"])
	assert.Equal(t, 70.0, summary["net_balance"])

	statement := api.json("GET", "/extrato/Principal", "", http.StatusOK)
	assert.Equal(t, 0.0, statement["total_items"], "principal owns no movements of its own")
	statement = api.json("GET", "/extrato/"+boxID, "", http.StatusOK)
	assert.Equal(t, 2.0, statement["total_items"])

	rollover := api.json("POST", "/caixas/"+boxID+"/reset", "", http.StatusOK)
	assert.Equal(t, 2.0, rollover["deleted_count"])
	statement = api.json("GET", "/extrato/"+boxID, "", http.StatusOK)
	assert.Equal(t, 1.0, statement["total_items"])

	assert.Contains(t, recorder.Types(), events.MovementCreated)
	assert.Contains(t, recorder.Types(), events.BoxRolledOver)
}

func TestBillPaymentFlow(t *testing.T) {
	api, _, _, _ := setupAPI(t, "")

	a := api.json("POST", "/caixas", `{"name":"A"}`, http.StatusCreated)["id"].(string)
	b := api.json("POST", "/caixas", `{"name":"B"}`, http.StatusCreated)["id"].(string)
	bill := api.json("POST", "/contas",
		`{"institution":"Banco","description":"Cartão","amount":200,"due_date":"2026-04-10"}`, http.StatusCreated)
	billID := bill["id"].(string)

	api.json("POST", "/contas/"+billID+"/pagar",
		fmt.Sprintf(`{"payments":[{"boxId":%q,"amount":250}]}`, a), http.StatusBadRequest)

	paid := api.json("POST", "/contas/"+billID+"/pagar",
		fmt.Sprintf(`{"payments":[{"boxId":%q,"amount":50},{"boxId":%q,"amount":150}]}`, a, b), http.StatusOK)
	assert.Equal(t, "paid", paid["bill"].(map[string]interface{})["status"])
	assert.Equal(t, 0.0, paid["remaining"])

	assert.Equal(t, -50.0, api.json("GET", "/caixas/"+a, "", http.StatusOK)["balance"])
	assert.Equal(t, -200.0, api.json("GET", "/caixas/Principal", "", http.StatusOK)["balance"])

	api.json("POST", "/contas/"+billID+"/pagar",
		fmt.Sprintf(`{"payments":[{"boxId":%q,"amount":1}]}`, a), http.StatusBadRequest)
}

func TestAuxiliaryRoutes(t *testing.T) {
	api, _, _, _ := setupAPI(t, "")

	api.json("POST", "/adicionais", `{"key":"Lazer","value":10,"group":"metas"}`, http.StatusCreated)
	api.json("POST", "/adicionais", `{"key":"Lazer","value":20,"group":"metas"}`, http.StatusConflict)

	found := api.json("GET", "/adicionais/busca?chave=Lazer&grupo=metas", "", http.StatusOK)
	assert.Equal(t, 10.0, found["value"])
}

func TestPrincipalRolloverFlow(t *testing.T) {
	api, db, _, _ := setupAPI(t, "")

	boxID := api.json("POST", "/caixas", `{"name":"Carteira"}`, http.StatusCreated)["id"].(string)
	api.json("POST", "/movimentacoes",
		fmt.Sprintf(`{"description":"Salário","amount":100,"kind":"inflow","boxId":%q}`, boxID), http.StatusCreated)

	check := api.json("GET", "/principal/verificar-integridade", "", http.StatusOK)
	assert.Equal(t, 100.0, check["saldoRegistrado"])

	api.json("POST", "/principal/criar-movimentacoes-ajuste",
		fmt.Sprintf(`{"principal_id":%q,"balance":100}`, models.PrincipalBoxID), http.StatusCreated)

	var count int64
	require.NoError(t, db.Model(&models.Movement{}).Where("box_id = ?", models.PrincipalBoxID).Count(&count).Error)
	assert.Positive(t, count)
}

func TestAuthRequired(t *testing.T) {
	api, _, _, _ := setupAPI(t, "s3nha")

	rec := api.do("GET", "/caixas", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	api.json("POST", "/auth/token", `{"password":"wrong"}`, http.StatusUnauthorized)
	token := api.json("POST", "/auth/token", `{"password":"s3nha"}`, http.StatusOK)["token"].(string)
	require.NotEmpty(t, token)

	api.token = token
	rec = api.do("GET", "/caixas", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	api, _, _, _ := setupAPI(t, "")

	health := api.json("GET", "/api/health", "", http.StatusOK)
	assert.Equal(t, "ok", health["status"])

	api.do("GET", "/caixas", "")
	rec := api.do("GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fluxo_http_requests_total")

	rec = api.do("OPTIONS", "/caixas", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetricsAPIKey(t *testing.T) {
	metrics := telemetry.NewMetrics()
	r := New(Services{}, metrics, Options{MetricsAPIKey: "scrape"})

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/metrics", http.NoBody)
	req.Header.Set("X-API-Key", "scrape")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
