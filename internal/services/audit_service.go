package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"fluxo/internal/logger"
	"fluxo/internal/models"
)

// Audit actions recorded by the handlers.
const (
	AuditCreateBox       = "CREATE_BOX"
	AuditRolloverBox     = "ROLLOVER_BOX"
	AuditCreateMovement  = "CREATE_MOVEMENT"
	AuditUpdateMovement  = "UPDATE_MOVEMENT"
	AuditDeleteMovement  = "DELETE_MOVEMENT"
	AuditCreateBill      = "CREATE_BILL"
	AuditUpdateBill      = "UPDATE_BILL"
	AuditDeleteBill      = "DELETE_BILL"
	AuditPayBill         = "PAY_BILL"
	AuditCreateAuxiliary = "CREATE_AUXILIARY"
	AuditUpdateAuxiliary = "UPDATE_AUXILIARY"
	AuditDeleteAuxiliary = "DELETE_AUXILIARY"
	AuditSeedPrincipal   = "SEED_PRINCIPAL"
	AuditIssueToken      = "ISSUE_TOKEN"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(ctx context.Context, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
