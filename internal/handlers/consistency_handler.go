package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/services"
)

// ConsistencyHandler exposes integrity checks and rollovers.
type ConsistencyHandler struct {
	consistencyService services.ConsistencyServicer
	auditService       services.AuditServicer
}

// NewConsistencyHandler creates a new ConsistencyHandler.
func NewConsistencyHandler(consistencyService services.ConsistencyServicer, auditService services.AuditServicer) *ConsistencyHandler {
	return &ConsistencyHandler{consistencyService: consistencyService, auditService: auditService}
}

// SeedPrincipalRequest confirms the checked Principal balance.
type SeedPrincipalRequest struct {
	PrincipalID string           `json:"principal_id" binding:"required"`
	Balance     *decimal.Decimal `json:"balance"`
}

// CheckBox compares a box's balance with the sum of its movements
// @Summary     Check box integrity
// @Tags        consistency
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Box ID or Principal"
// @Success     200 {object} services.IntegrityReport
// @Failure     404 {object} ErrorResponse "Box not found"
// @Failure     409 {object} ErrorResponse "Balance inconsistent"
// @Router      /caixas/{id}/verificar-integridade [get]
func (h *ConsistencyHandler) CheckBox(c *gin.Context) {
	report, err := h.consistencyService.CheckBox(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RolloverBox collapses a secondary box's history into one movement
// @Summary     Roll over a box
// @Description Replaces every movement of a consistent secondary box with one "Saldo Anterior" movement
// @Tags        consistency
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Box ID"
// @Success     200 {object} services.RolloverResult
// @Failure     403 {object} ErrorResponse "Principal box"
// @Failure     404 {object} ErrorResponse "Box not found"
// @Failure     409 {object} ErrorResponse "Balance inconsistent"
// @Router      /caixas/{id}/reset [post]
func (h *ConsistencyHandler) RolloverBox(c *gin.Context) {
	id := c.Param("id")
	result, err := h.consistencyService.RolloverBox(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.Movement != nil {
		h.auditService.Log(c.Request.Context(), services.AuditRolloverBox, "box", result.Box.ID, c.ClientIP(),
			map[string]interface{}{"carried_forward": result.Movement.Amount.String(), "deleted": result.DeletedCount})
	}

	c.JSON(http.StatusOK, result)
}

// CheckPrincipal compares the Principal balance with every movement
// @Summary     Check Principal integrity
// @Tags        consistency
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.IntegrityReport
// @Failure     404 {object} ErrorResponse "Principal not found"
// @Failure     409 {object} ErrorResponse "Balance inconsistent"
// @Router      /principal/verificar-integridade [get]
func (h *ConsistencyHandler) CheckPrincipal(c *gin.Context) {
	report, err := h.consistencyService.CheckPrincipal(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SeedPrincipal replaces the Principal history with seed movements
// @Summary     Seed the Principal box
// @Description Second step of the Principal rollover, after a successful integrity check
// @Tags        consistency
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SeedPrincipalRequest true "Confirmed balance"
// @Success     201 {object} services.SeedResult
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Balance inconsistent"
// @Router      /principal/criar-movimentacoes-ajuste [post]
func (h *ConsistencyHandler) SeedPrincipal(c *gin.Context) {
	var req SeedPrincipalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	if req.Balance == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "balance is required"))
		return
	}

	result, err := h.consistencyService.SeedPrincipal(c.Request.Context(), req.PrincipalID, *req.Balance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditSeedPrincipal, "box", result.Principal.ID, c.ClientIP(),
		map[string]interface{}{"balance": result.BalanceMovement.Amount.String(), "deleted": result.DeletedCount})

	c.JSON(http.StatusCreated, result)
}
