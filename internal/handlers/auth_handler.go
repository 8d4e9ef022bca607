package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fluxo/internal/services"
)

// AuthHandler issues operator tokens.
type AuthHandler struct {
	authService  services.AuthServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{authService: authService, auditService: auditService}
}

// TokenRequest represents the token request payload
type TokenRequest struct {
	Password string `json:"password" binding:"required"`
}

// IssueToken exchanges the operator password for a bearer token
// @Summary     Issue a token
// @Description Exchanges the operator password for a signed bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body TokenRequest true "Operator password"
// @Success     200 {object} services.TokenResult
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid password"
// @Failure     404 {object} ErrorResponse "Authentication disabled"
// @Router      /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	token, err := h.authService.IssueToken(req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditIssueToken, "token", "operator", c.ClientIP(), nil)

	c.JSON(http.StatusOK, token)
}
