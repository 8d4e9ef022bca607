package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"fluxo/internal/models"
	"fluxo/internal/pagination"
)

// BoxServicer defines the contract for box-related business logic.
type BoxServicer interface {
	CreateBox(ctx context.Context, name, description string) (*models.Box, error)
	ListBoxes(ctx context.Context) ([]models.Box, error)
	GetBox(ctx context.Context, id string) (*models.Box, error)
	EnsurePrincipal(ctx context.Context) (*models.Box, error)
	ResolveBoxRef(ctx context.Context, ref string) (string, error)
}

// MovementInput carries the fields of a new movement. Amount may be given
// with either sign; Kind decides the stored sign.
type MovementInput struct {
	Description string
	Amount      decimal.Decimal
	Kind        string
	BoxID       string
	Category    string
	Date        *time.Time
}

// MovementFilter holds optional filter parameters for listing movements.
type MovementFilter struct {
	BoxID    string
	Category string
	FromDate *time.Time
	ToDate   *time.Time
}

// MovementServicer defines the contract for the movement ledger.
type MovementServicer interface {
	CreateMovement(ctx context.Context, in MovementInput) (*models.Movement, error)
	UpdateMovement(ctx context.Context, id string, description, category *string) (*models.Movement, error)
	DeleteMovement(ctx context.Context, id string) error
	GetMovement(ctx context.Context, id string) (*models.Movement, error)
	ListMovements(ctx context.Context, page pagination.PageRequest, filter MovementFilter) (*pagination.PageResponse[models.Movement], error)
}

// BillInput carries the fields of a new bill.
type BillInput struct {
	Institution string
	Description string
	Note        string
	Amount      decimal.Decimal
	DueDate     time.Time
	Status      models.BillStatus
}

// BillUpdate holds the optional fields of a bill update.
type BillUpdate struct {
	Institution *string
	Description *string
	Note        *string
	Amount      *decimal.Decimal
	DueDate     *time.Time
	Status      *models.BillStatus
}

// PaymentInput is one box's share of a bill payment.
type PaymentInput struct {
	BoxID  string          `json:"boxId" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// PayResult is the outcome of a bill payment.
type PayResult struct {
	Bill      *models.Bill    `json:"bill"`
	Remaining decimal.Decimal `json:"remaining"`
	Skipped   []PaymentInput  `json:"skipped"`
}

// BillServicer defines the contract for the bill payment engine.
type BillServicer interface {
	CreateBill(ctx context.Context, in BillInput) (*models.Bill, error)
	ListBills(ctx context.Context, status *models.BillStatus) ([]models.Bill, error)
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	UpdateBill(ctx context.Context, id string, upd BillUpdate) (*models.Bill, error)
	DeleteBill(ctx context.Context, id string) error
	PayBill(ctx context.Context, id string, payments []PaymentInput, paidAt *time.Time) (*PayResult, error)
}

// IntegrityReport compares a box's stored balance with the sum of the
// movements it owns. Difference is calculated minus registered.
type IntegrityReport struct {
	BoxID      string          `json:"box_id"`
	BoxName    string          `json:"box_name"`
	Calculated decimal.Decimal `json:"saldoCalculado"`
	Registered decimal.Decimal `json:"saldoRegistrado"`
	Difference decimal.Decimal `json:"diferenca"`
	Consistent bool            `json:"consistent"`
}

// RolloverResult is the outcome of a secondary box rollover.
type RolloverResult struct {
	Message      string           `json:"message"`
	Box          *models.Box      `json:"box"`
	Movement     *models.Movement `json:"movement,omitempty"`
	DeletedCount int64            `json:"deleted_count"`
}

// SeedResult is the outcome of re-seeding the Principal box.
type SeedResult struct {
	Principal       *models.Box      `json:"principal"`
	BalanceMovement *models.Movement `json:"balance_movement"`
	LoansMovement   *models.Movement `json:"loans_movement,omitempty"`
	DeletedCount    int64            `json:"deleted_count"`
}

// ConsistencyServicer defines the contract for integrity checks and rollovers.
type ConsistencyServicer interface {
	CheckBox(ctx context.Context, boxID string) (*IntegrityReport, error)
	RolloverBox(ctx context.Context, boxID string) (*RolloverResult, error)
	CheckPrincipal(ctx context.Context) (*IntegrityReport, error)
	SeedPrincipal(ctx context.Context, principalID string, confirmedBalance decimal.Decimal) (*SeedResult, error)
}

// Summary aggregates every movement in the ledger.
type Summary struct {
	TotalInflows  decimal.Decimal `json:"total_inflows"`
	TotalOutflows decimal.Decimal `json:"total_outflows"`
	NetBalance    decimal.Decimal `json:"net_balance"`
}

// CategoryTotal is the signed total of one report line.
type CategoryTotal struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Absolute decimal.Decimal `json:"absolute"`
}

// CategoryReport groups movements for the dashboard.
type CategoryReport struct {
	Expenses          []CategoryTotal            `json:"expenses"`
	TotalExpenses     decimal.Decimal            `json:"total_expenses"`
	Loans             []CategoryTotal            `json:"loans"`
	TotalLoans        decimal.Decimal            `json:"total_loans"`
	Opening           []CategoryTotal            `json:"opening"`
	TotalOpening      decimal.Decimal            `json:"total_opening"`
	Income            []CategoryTotal            `json:"income"`
	TotalIncome       decimal.Decimal            `json:"total_income"`
	PercentageTargets map[string]decimal.Decimal `json:"percentage_targets"`
}

// PDFLine is one movement row of the PDF export.
type PDFLine struct {
	Date        time.Time
	Description string
	Category    string
	Kind        models.MovementKind
	Amount      decimal.Decimal
}

// PDFSection groups PDF rows under a title (a box or a category).
type PDFSection struct {
	Title string
	Lines []PDFLine
	Total decimal.Decimal
}

// PDFReport holds everything the PDF export renders.
type PDFReport struct {
	GeneratedAt         time.Time
	SecondaryBoxes      []PDFSection
	PrincipalCategories []PDFSection
	SystemTotal         decimal.Decimal
	AbsoluteAmounts     bool
}

// ReportServicer defines the contract for read-only reporting.
type ReportServicer interface {
	Summary(ctx context.Context) (*Summary, error)
	CategoryReport(ctx context.Context) (*CategoryReport, error)
	PDFData(ctx context.Context) (*PDFReport, error)
}

// AuxiliaryInput carries the fields of an auxiliary record.
type AuxiliaryInput struct {
	Key     string
	Value   decimal.Decimal
	Content string
	Group   string
}

// AuxiliaryUpdate holds the optional fields of an auxiliary record update.
type AuxiliaryUpdate struct {
	Key     *string
	Value   *decimal.Decimal
	Content *string
	Group   *string
}

// AuxiliaryServicer defines the contract for auxiliary key/value records.
type AuxiliaryServicer interface {
	CreateAuxiliary(ctx context.Context, in AuxiliaryInput) (*models.Auxiliary, error)
	ListAuxiliary(ctx context.Context, group string) ([]models.Auxiliary, error)
	GetAuxiliary(ctx context.Context, id string) (*models.Auxiliary, error)
	UpdateAuxiliary(ctx context.Context, id string, upd AuxiliaryUpdate) (*models.Auxiliary, error)
	DeleteAuxiliary(ctx context.Context, id string) error
	FindByKey(ctx context.Context, key, group string) (*models.Auxiliary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

// TokenResult is an issued operator token.
type TokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthServicer defines the contract for single-operator authentication.
type AuthServicer interface {
	Enabled() bool
	IssueToken(password string) (*TokenResult, error)
	ValidateToken(token string) (*jwt.RegisteredClaims, error)
}
