package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fluxo/internal/services"
)

// AuxiliaryHandler handles auxiliary key/value records.
type AuxiliaryHandler struct {
	auxiliaryService services.AuxiliaryServicer
	auditService     services.AuditServicer
}

// NewAuxiliaryHandler creates a new AuxiliaryHandler.
func NewAuxiliaryHandler(auxiliaryService services.AuxiliaryServicer, auditService services.AuditServicer) *AuxiliaryHandler {
	return &AuxiliaryHandler{auxiliaryService: auxiliaryService, auditService: auditService}
}

// AuxiliaryRequest represents the payload for creating an auxiliary record
type AuxiliaryRequest struct {
	Key     string          `json:"key" binding:"required,max=100"`
	Value   decimal.Decimal `json:"value"`
	Content string          `json:"content" binding:"max=2000"`
	Group   string          `json:"group" binding:"max=100"`
}

// UpdateAuxiliaryRequest represents the payload for updating an auxiliary record
type UpdateAuxiliaryRequest struct {
	Key     *string          `json:"key" binding:"omitempty,max=100"`
	Value   *decimal.Decimal `json:"value"`
	Content *string          `json:"content" binding:"omitempty,max=2000"`
	Group   *string          `json:"group" binding:"omitempty,max=100"`
}

// CreateAuxiliary stores a new record
// @Summary     Create an auxiliary record
// @Tags        auxiliary
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AuxiliaryRequest true "Record"
// @Success     201 {object} models.Auxiliary
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate key"
// @Router      /adicionais [post]
func (h *AuxiliaryHandler) CreateAuxiliary(c *gin.Context) {
	var req AuxiliaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	record, err := h.auxiliaryService.CreateAuxiliary(c.Request.Context(), services.AuxiliaryInput{
		Key:     req.Key,
		Value:   req.Value,
		Content: req.Content,
		Group:   req.Group,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditCreateAuxiliary, "auxiliary", record.ID, c.ClientIP(),
		map[string]interface{}{"key": record.Key, "group": record.Group})

	c.JSON(http.StatusCreated, record)
}

// ListAuxiliary lists records newest first
// @Summary     List auxiliary records
// @Tags        auxiliary
// @Produce     json
// @Security    BearerAuth
// @Param       grupo query string false "Group"
// @Success     200 {array} models.Auxiliary
// @Router      /adicionais [get]
func (h *AuxiliaryHandler) ListAuxiliary(c *gin.Context) {
	records, err := h.auxiliaryService.ListAuxiliary(c.Request.Context(), c.Query("grupo"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// FindByKey looks a record up by key
// @Summary     Find an auxiliary record by key
// @Tags        auxiliary
// @Produce     json
// @Security    BearerAuth
// @Param       chave query string true  "Key"
// @Param       grupo query string false "Group"
// @Success     200 {object} models.Auxiliary
// @Failure     400 {object} ErrorResponse "Missing key"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /adicionais/busca [get]
func (h *AuxiliaryHandler) FindByKey(c *gin.Context) {
	record, err := h.auxiliaryService.FindByKey(c.Request.Context(), c.Query("chave"), c.Query("grupo"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetAuxiliary fetches one record
// @Summary     Get an auxiliary record
// @Tags        auxiliary
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Success     200 {object} models.Auxiliary
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /adicionais/{id} [get]
func (h *AuxiliaryHandler) GetAuxiliary(c *gin.Context) {
	record, err := h.auxiliaryService.GetAuxiliary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateAuxiliary edits a record
// @Summary     Update an auxiliary record
// @Tags        auxiliary
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Param       request body UpdateAuxiliaryRequest true "Fields to change"
// @Success     200 {object} models.Auxiliary
// @Failure     404 {object} ErrorResponse "Record not found"
// @Failure     409 {object} ErrorResponse "Duplicate key"
// @Router      /adicionais/{id} [put]
func (h *AuxiliaryHandler) UpdateAuxiliary(c *gin.Context) {
	var req UpdateAuxiliaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	id := c.Param("id")
	record, err := h.auxiliaryService.UpdateAuxiliary(c.Request.Context(), id, services.AuxiliaryUpdate{
		Key:     req.Key,
		Value:   req.Value,
		Content: req.Content,
		Group:   req.Group,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditUpdateAuxiliary, "auxiliary", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, record)
}

// DeleteAuxiliary removes a record
// @Summary     Delete an auxiliary record
// @Tags        auxiliary
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Record ID"
// @Success     200 {object} MessageResponse "Record deleted"
// @Failure     404 {object} ErrorResponse "Record not found"
// @Router      /adicionais/{id} [delete]
func (h *AuxiliaryHandler) DeleteAuxiliary(c *gin.Context) {
	id := c.Param("id")
	if err := h.auxiliaryService.DeleteAuxiliary(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditDeleteAuxiliary, "auxiliary", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}
