package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fluxo/internal/services"
)

// MovementHandler handles movement-related requests.
type MovementHandler struct {
	movementService services.MovementServicer
	auditService    services.AuditServicer
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementService services.MovementServicer, auditService services.AuditServicer) *MovementHandler {
	return &MovementHandler{movementService: movementService, auditService: auditService}
}

// CreateMovementRequest represents the request payload for creating a movement.
// Kind accepts inflow/outflow and entrada/saida.
type CreateMovementRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Kind        string          `json:"kind" binding:"required,movement_kind"`
	BoxID       string          `json:"boxId" binding:"required"`
	Category    string          `json:"category" binding:"max=100"`
	Date        *string         `json:"date"`
}

// UpdateMovementRequest represents the request payload for editing a movement.
type UpdateMovementRequest struct {
	Description *string `json:"description" binding:"omitempty,max=255"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
}

// CreateMovement records a movement and updates balances
// @Summary     Create a movement
// @Description Record a signed movement on a box; the Principal box mirrors it
// @Tags        movements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateMovementRequest true "Movement details"
// @Success     201 {object} models.Movement "Movement created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Box not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /movimentacoes [post]
func (h *MovementHandler) CreateMovement(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movement, err := h.movementService.CreateMovement(c.Request.Context(), services.MovementInput{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        req.Kind,
		BoxID:       req.BoxID,
		Category:    req.Category,
		Date:        date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditCreateMovement, "movement", movement.ID, c.ClientIP(),
		map[string]interface{}{"box_id": movement.BoxID, "amount": movement.Amount.String()})

	c.JSON(http.StatusCreated, movement)
}

// GetMovement fetches one movement with its box
// @Summary     Get a movement
// @Tags        movements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Movement ID"
// @Success     200 {object} models.Movement
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Router      /movimentacoes/{id} [get]
func (h *MovementHandler) GetMovement(c *gin.Context) {
	movement, err := h.movementService.GetMovement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

// UpdateMovement edits the description or category of a movement
// @Summary     Edit a movement
// @Description Only description and category can change; amount and box are immutable
// @Tags        movements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Movement ID"
// @Param       request body UpdateMovementRequest true "Fields to change"
// @Success     200 {object} models.Movement
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Router      /movimentacoes/{id} [put]
func (h *MovementHandler) UpdateMovement(c *gin.Context) {
	var req UpdateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	id := c.Param("id")
	movement, err := h.movementService.UpdateMovement(c.Request.Context(), id, req.Description, req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditUpdateMovement, "movement", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, movement)
}

// DeleteMovement removes a movement and reverses its balance effect
// @Summary     Delete a movement
// @Tags        movements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Movement ID"
// @Success     200 {object} MessageResponse "Movement deleted"
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Router      /movimentacoes/{id} [delete]
func (h *MovementHandler) DeleteMovement(c *gin.Context) {
	id := c.Param("id")
	if err := h.movementService.DeleteMovement(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditDeleteMovement, "movement", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Movement deleted successfully"})
}
