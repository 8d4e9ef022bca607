package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fluxo/internal/services"
)

// BoxHandler handles box-related requests.
type BoxHandler struct {
	boxService   services.BoxServicer
	auditService services.AuditServicer
}

// NewBoxHandler creates a new BoxHandler.
func NewBoxHandler(boxService services.BoxServicer, auditService services.AuditServicer) *BoxHandler {
	return &BoxHandler{boxService: boxService, auditService: auditService}
}

// CreateBoxRequest represents the request payload for creating a box
type CreateBoxRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CreateBox handles the creation of a new box
// @Summary     Create a box
// @Description Create a named money pool with a zero balance
// @Tags        boxes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBoxRequest true "Box details"
// @Success     201 {object} models.Box "Box created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /caixas [post]
func (h *BoxHandler) CreateBox(c *gin.Context) {
	var req CreateBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	box, err := h.boxService.CreateBox(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditCreateBox, "box", box.ID, c.ClientIP(),
		map[string]interface{}{"name": box.Name})

	c.JSON(http.StatusCreated, box)
}

// ListBoxes lists every box
// @Summary     List boxes
// @Tags        boxes
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Box
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /caixas [get]
func (h *BoxHandler) ListBoxes(c *gin.Context) {
	boxes, err := h.boxService.ListBoxes(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, boxes)
}

// GetBox fetches one box. The literal "Principal" is accepted as id.
// @Summary     Get a box
// @Tags        boxes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Box ID or Principal"
// @Success     200 {object} models.Box
// @Failure     400 {object} ErrorResponse "Invalid id"
// @Failure     404 {object} ErrorResponse "Box not found"
// @Router      /caixas/{id} [get]
func (h *BoxHandler) GetBox(c *gin.Context) {
	box, err := h.boxService.GetBox(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, box)
}
