package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"fluxo/internal/models"
	"fluxo/internal/pagination"
	"fluxo/internal/services"
	"fluxo/internal/validator"
)

// --- mock services ---

type mockBoxService struct {
	createBoxFn func(ctx context.Context, name, description string) (*models.Box, error)
	listBoxesFn func(ctx context.Context) ([]models.Box, error)
	getBoxFn    func(ctx context.Context, id string) (*models.Box, error)
}

var _ services.BoxServicer = (*mockBoxService)(nil)

func (m *mockBoxService) CreateBox(ctx context.Context, name, description string) (*models.Box, error) {
	if m.createBoxFn != nil {
		return m.createBoxFn(ctx, name, description)
	}
	return &models.Box{Name: name, Description: description}, nil
}

func (m *mockBoxService) ListBoxes(ctx context.Context) ([]models.Box, error) {
	if m.listBoxesFn != nil {
		return m.listBoxesFn(ctx)
	}
	return []models.Box{}, nil
}

func (m *mockBoxService) GetBox(ctx context.Context, id string) (*models.Box, error) {
	if m.getBoxFn != nil {
		return m.getBoxFn(ctx, id)
	}
	return &models.Box{Base: models.Base{ID: id}}, nil
}

func (m *mockBoxService) EnsurePrincipal(_ context.Context) (*models.Box, error) {
	return &models.Box{Base: models.Base{ID: models.PrincipalBoxID}, Name: models.PrincipalBoxName}, nil
}

func (m *mockBoxService) ResolveBoxRef(_ context.Context, ref string) (string, error) {
	return ref, nil
}

type mockMovementService struct {
	createMovementFn func(ctx context.Context, in services.MovementInput) (*models.Movement, error)
	updateMovementFn func(ctx context.Context, id string, description, category *string) (*models.Movement, error)
	deleteMovementFn func(ctx context.Context, id string) error
	getMovementFn    func(ctx context.Context, id string) (*models.Movement, error)
	listMovementsFn  func(ctx context.Context, page pagination.PageRequest, filter services.MovementFilter) (*pagination.PageResponse[models.Movement], error)
}

var _ services.MovementServicer = (*mockMovementService)(nil)

func (m *mockMovementService) CreateMovement(ctx context.Context, in services.MovementInput) (*models.Movement, error) {
	if m.createMovementFn != nil {
		return m.createMovementFn(ctx, in)
	}
	return &models.Movement{Description: in.Description, Amount: in.Amount, BoxID: in.BoxID}, nil
}

func (m *mockMovementService) UpdateMovement(ctx context.Context, id string, description, category *string) (*models.Movement, error) {
	if m.updateMovementFn != nil {
		return m.updateMovementFn(ctx, id, description, category)
	}
	return &models.Movement{Base: models.Base{ID: id}}, nil
}

func (m *mockMovementService) DeleteMovement(ctx context.Context, id string) error {
	if m.deleteMovementFn != nil {
		return m.deleteMovementFn(ctx, id)
	}
	return nil
}

func (m *mockMovementService) GetMovement(ctx context.Context, id string) (*models.Movement, error) {
	if m.getMovementFn != nil {
		return m.getMovementFn(ctx, id)
	}
	return &models.Movement{Base: models.Base{ID: id}}, nil
}

func (m *mockMovementService) ListMovements(ctx context.Context, page pagination.PageRequest, filter services.MovementFilter) (*pagination.PageResponse[models.Movement], error) {
	if m.listMovementsFn != nil {
		return m.listMovementsFn(ctx, page, filter)
	}
	resp := pagination.NewPageResponse[models.Movement](nil, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

type mockBillService struct {
	createBillFn func(ctx context.Context, in services.BillInput) (*models.Bill, error)
	listBillsFn  func(ctx context.Context, status *models.BillStatus) ([]models.Bill, error)
	getBillFn    func(ctx context.Context, id string) (*models.Bill, error)
	updateBillFn func(ctx context.Context, id string, upd services.BillUpdate) (*models.Bill, error)
	deleteBillFn func(ctx context.Context, id string) error
	payBillFn    func(ctx context.Context, id string, payments []services.PaymentInput, paidAt *time.Time) (*services.PayResult, error)
}

var _ services.BillServicer = (*mockBillService)(nil)

func (m *mockBillService) CreateBill(ctx context.Context, in services.BillInput) (*models.Bill, error) {
	if m.createBillFn != nil {
		return m.createBillFn(ctx, in)
	}
	return &models.Bill{Institution: in.Institution, Amount: in.Amount, Remaining: in.Amount}, nil
}

func (m *mockBillService) ListBills(ctx context.Context, status *models.BillStatus) ([]models.Bill, error) {
	if m.listBillsFn != nil {
		return m.listBillsFn(ctx, status)
	}
	return []models.Bill{}, nil
}

func (m *mockBillService) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	if m.getBillFn != nil {
		return m.getBillFn(ctx, id)
	}
	return &models.Bill{Base: models.Base{ID: id}}, nil
}

func (m *mockBillService) UpdateBill(ctx context.Context, id string, upd services.BillUpdate) (*models.Bill, error) {
	if m.updateBillFn != nil {
		return m.updateBillFn(ctx, id, upd)
	}
	return &models.Bill{Base: models.Base{ID: id}}, nil
}

func (m *mockBillService) DeleteBill(ctx context.Context, id string) error {
	if m.deleteBillFn != nil {
		return m.deleteBillFn(ctx, id)
	}
	return nil
}

func (m *mockBillService) PayBill(ctx context.Context, id string, payments []services.PaymentInput, paidAt *time.Time) (*services.PayResult, error) {
	if m.payBillFn != nil {
		return m.payBillFn(ctx, id, payments, paidAt)
	}
	return &services.PayResult{Bill: &models.Bill{Base: models.Base{ID: id}}, Skipped: []services.PaymentInput{}}, nil
}

type mockConsistencyService struct {
	checkBoxFn       func(ctx context.Context, boxID string) (*services.IntegrityReport, error)
	rolloverBoxFn    func(ctx context.Context, boxID string) (*services.RolloverResult, error)
	checkPrincipalFn func(ctx context.Context) (*services.IntegrityReport, error)
	seedPrincipalFn  func(ctx context.Context, principalID string, balance decimal.Decimal) (*services.SeedResult, error)
}

var _ services.ConsistencyServicer = (*mockConsistencyService)(nil)

func (m *mockConsistencyService) CheckBox(ctx context.Context, boxID string) (*services.IntegrityReport, error) {
	if m.checkBoxFn != nil {
		return m.checkBoxFn(ctx, boxID)
	}
	return &services.IntegrityReport{BoxID: boxID, Consistent: true}, nil
}

func (m *mockConsistencyService) RolloverBox(ctx context.Context, boxID string) (*services.RolloverResult, error) {
	if m.rolloverBoxFn != nil {
		return m.rolloverBoxFn(ctx, boxID)
	}
	return &services.RolloverResult{Box: &models.Box{Base: models.Base{ID: boxID}}}, nil
}

func (m *mockConsistencyService) CheckPrincipal(ctx context.Context) (*services.IntegrityReport, error) {
	if m.checkPrincipalFn != nil {
		return m.checkPrincipalFn(ctx)
	}
	return &services.IntegrityReport{BoxID: models.PrincipalBoxID, Consistent: true}, nil
}

func (m *mockConsistencyService) SeedPrincipal(ctx context.Context, principalID string, balance decimal.Decimal) (*services.SeedResult, error) {
	if m.seedPrincipalFn != nil {
		return m.seedPrincipalFn(ctx, principalID, balance)
	}
	return &services.SeedResult{
		Principal:       &models.Box{Base: models.Base{ID: principalID}},
		BalanceMovement: &models.Movement{Amount: balance},
	}, nil
}

type mockReportService struct {
	summaryFn        func(ctx context.Context) (*services.Summary, error)
	categoryReportFn func(ctx context.Context) (*services.CategoryReport, error)
	pdfDataFn        func(ctx context.Context) (*services.PDFReport, error)
}

var _ services.ReportServicer = (*mockReportService)(nil)

func (m *mockReportService) Summary(ctx context.Context) (*services.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx)
	}
	return &services.Summary{}, nil
}

func (m *mockReportService) CategoryReport(ctx context.Context) (*services.CategoryReport, error) {
	if m.categoryReportFn != nil {
		return m.categoryReportFn(ctx)
	}
	return &services.CategoryReport{}, nil
}

func (m *mockReportService) PDFData(ctx context.Context) (*services.PDFReport, error) {
	if m.pdfDataFn != nil {
		return m.pdfDataFn(ctx)
	}
	return &services.PDFReport{GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}, nil
}

type mockAuxiliaryService struct {
	createAuxiliaryFn func(ctx context.Context, in services.AuxiliaryInput) (*models.Auxiliary, error)
	listAuxiliaryFn   func(ctx context.Context, group string) ([]models.Auxiliary, error)
	getAuxiliaryFn    func(ctx context.Context, id string) (*models.Auxiliary, error)
	updateAuxiliaryFn func(ctx context.Context, id string, upd services.AuxiliaryUpdate) (*models.Auxiliary, error)
	deleteAuxiliaryFn func(ctx context.Context, id string) error
	findByKeyFn       func(ctx context.Context, key, group string) (*models.Auxiliary, error)
}

var _ services.AuxiliaryServicer = (*mockAuxiliaryService)(nil)

func (m *mockAuxiliaryService) CreateAuxiliary(ctx context.Context, in services.AuxiliaryInput) (*models.Auxiliary, error) {
	if m.createAuxiliaryFn != nil {
		return m.createAuxiliaryFn(ctx, in)
	}
	return &models.Auxiliary{Key: in.Key, Value: in.Value, Group: in.Group}, nil
}

func (m *mockAuxiliaryService) ListAuxiliary(ctx context.Context, group string) ([]models.Auxiliary, error) {
	if m.listAuxiliaryFn != nil {
		return m.listAuxiliaryFn(ctx, group)
	}
	return []models.Auxiliary{}, nil
}

func (m *mockAuxiliaryService) GetAuxiliary(ctx context.Context, id string) (*models.Auxiliary, error) {
	if m.getAuxiliaryFn != nil {
		return m.getAuxiliaryFn(ctx, id)
	}
	return &models.Auxiliary{Base: models.Base{ID: id}}, nil
}

func (m *mockAuxiliaryService) UpdateAuxiliary(ctx context.Context, id string, upd services.AuxiliaryUpdate) (*models.Auxiliary, error) {
	if m.updateAuxiliaryFn != nil {
		return m.updateAuxiliaryFn(ctx, id, upd)
	}
	return &models.Auxiliary{Base: models.Base{ID: id}}, nil
}

func (m *mockAuxiliaryService) DeleteAuxiliary(ctx context.Context, id string) error {
	if m.deleteAuxiliaryFn != nil {
		return m.deleteAuxiliaryFn(ctx, id)
	}
	return nil
}

func (m *mockAuxiliaryService) FindByKey(ctx context.Context, key, group string) (*models.Auxiliary, error) {
	if m.findByKeyFn != nil {
		return m.findByKeyFn(ctx, key, group)
	}
	return &models.Auxiliary{Key: key, Group: group}, nil
}

type mockAuthService struct {
	enabled       bool
	issueTokenFn  func(password string) (*services.TokenResult, error)
	validateToken func(token string) (*jwt.RegisteredClaims, error)
}

var _ services.AuthServicer = (*mockAuthService)(nil)

func (m *mockAuthService) Enabled() bool { return m.enabled }

func (m *mockAuthService) IssueToken(password string) (*services.TokenResult, error) {
	if m.issueTokenFn != nil {
		return m.issueTokenFn(password)
	}
	return &services.TokenResult{Token: "token"}, nil
}

func (m *mockAuthService) ValidateToken(token string) (*jwt.RegisteredClaims, error) {
	if m.validateToken != nil {
		return m.validateToken(token)
	}
	return &jwt.RegisteredClaims{}, nil
}

type mockAuditService struct {
	actions []string
}

var _ services.AuditServicer = (*mockAuditService)(nil)

func (m *mockAuditService) Log(_ context.Context, action, _, _, _ string, _ map[string]interface{}) {
	m.actions = append(m.actions, action)
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var result []interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
