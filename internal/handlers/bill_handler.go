package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
	"fluxo/internal/services"
)

// BillHandler handles bill-related requests.
type BillHandler struct {
	billService  services.BillServicer
	auditService services.AuditServicer
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(billService services.BillServicer, auditService services.AuditServicer) *BillHandler {
	return &BillHandler{billService: billService, auditService: auditService}
}

// CreateBillRequest represents the request payload for creating a bill
type CreateBillRequest struct {
	Institution string          `json:"institution" binding:"required,max=100"`
	Description string          `json:"description" binding:"required,max=255"`
	Note        string          `json:"note" binding:"max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	DueDate     string          `json:"due_date" binding:"required"`
	Status      string          `json:"status" binding:"omitempty,bill_status"`
}

// UpdateBillRequest represents the request payload for updating a bill
type UpdateBillRequest struct {
	Institution *string          `json:"institution" binding:"omitempty,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=255"`
	Note        *string          `json:"note" binding:"omitempty,max=500"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *string          `json:"due_date"`
	Status      *string          `json:"status" binding:"omitempty,bill_status"`
}

// PayBillRequest represents the request payload for paying a bill from one
// or more boxes
type PayBillRequest struct {
	Payments []services.PaymentInput `json:"payments" binding:"required,min=1,dive"`
	PaidAt   *string                 `json:"paid_at"`
}

// CreateBill handles the creation of a new bill
// @Summary     Create a bill
// @Tags        bills
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBillRequest true "Bill details"
// @Success     201 {object} models.Bill "Bill created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /contas [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), services.BillInput{
		Institution: req.Institution,
		Description: req.Description,
		Note:        req.Note,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Status:      models.BillStatus(req.Status),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditCreateBill, "bill", bill.ID, c.ClientIP(),
		map[string]interface{}{"institution": bill.Institution, "amount": bill.Amount.String()})

	c.JSON(http.StatusCreated, bill)
}

// ListBills lists bills ordered by due date
// @Summary     List bills
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Filter by status (pending, partial, paid, overdue)"
// @Success     200 {array} models.Bill
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Router      /contas [get]
func (h *BillHandler) ListBills(c *gin.Context) {
	var status *models.BillStatus
	if v := c.Query("status"); v != "" {
		s := models.BillStatus(v)
		if !s.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status"))
			return
		}
		status = &s
	}

	bills, err := h.billService.ListBills(c.Request.Context(), status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

// GetBill fetches one bill with its payment history
// @Summary     Get a bill
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Success     200 {object} models.Bill
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /contas/{id} [get]
func (h *BillHandler) GetBill(c *gin.Context) {
	bill, err := h.billService.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// UpdateBill edits a bill
// @Summary     Update a bill
// @Tags        bills
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Param       request body UpdateBillRequest true "Fields to change"
// @Success     200 {object} models.Bill
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /contas/{id} [put]
func (h *BillHandler) UpdateBill(c *gin.Context) {
	var req UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	upd := services.BillUpdate{
		Institution: req.Institution,
		Description: req.Description,
		Note:        req.Note,
		Amount:      req.Amount,
		DueDate:     dueDate,
	}
	if req.Status != nil {
		s := models.BillStatus(*req.Status)
		upd.Status = &s
	}

	id := c.Param("id")
	bill, err := h.billService.UpdateBill(c.Request.Context(), id, upd)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditUpdateBill, "bill", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, bill)
}

// DeleteBill removes a bill
// @Summary     Delete a bill
// @Tags        bills
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Success     200 {object} MessageResponse "Bill deleted"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /contas/{id} [delete]
func (h *BillHandler) DeleteBill(c *gin.Context) {
	id := c.Param("id")
	if err := h.billService.DeleteBill(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditDeleteBill, "bill", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted successfully"})
}

// PayBill pays a bill from one or more boxes
// @Summary     Pay a bill
// @Description Each entry debits its box; entries against unknown boxes are skipped
// @Tags        bills
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Param       request body PayBillRequest true "Payments"
// @Success     200 {object} services.PayResult
// @Failure     400 {object} ErrorResponse "Invalid input, already paid or exceeds remaining"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /contas/{id}/pagar [post]
func (h *BillHandler) PayBill(c *gin.Context) {
	var req PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	paidAt, err := parseOptionalDate("paid_at", req.PaidAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	result, err := h.billService.PayBill(c.Request.Context(), id, req.Payments, paidAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditPayBill, "bill", id, c.ClientIP(),
		map[string]interface{}{"payments": len(req.Payments), "skipped": len(result.Skipped)})

	c.JSON(http.StatusOK, result)
}
