package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/logger"
	"fluxo/internal/models"
)

var balanceTracer = otel.Tracer("services/balance")

// BalanceMaintainer applies movement deltas to the owning box and mirrors
// them onto the Principal box. Every balance change in the ledger goes
// through Apply or the rollover path.
type BalanceMaintainer struct {
	principalID string
}

// NewBalanceMaintainer creates a maintainer mirroring onto principalID.
func NewBalanceMaintainer(principalID string) *BalanceMaintainer {
	return &BalanceMaintainer{principalID: principalID}
}

// PrincipalID returns the id of the mirror box.
func (m *BalanceMaintainer) PrincipalID() string {
	return m.principalID
}

// Apply adds delta to boxID and, unless boxID is the Principal box, to the
// Principal box as well. It must run inside the caller's transaction.
// A missing box is a silent no-op and yields (nil, nil). A missing
// Principal box only updates the owning box.
func (m *BalanceMaintainer) Apply(ctx context.Context, tx *gorm.DB, boxID string, delta decimal.Decimal) (*models.Box, error) {
	ctx, span := balanceTracer.Start(ctx, "BalanceMaintainer.Apply")
	defer span.End()
	span.SetAttributes(
		attribute.String("box.id", boxID),
		attribute.String("delta", delta.String()),
	)

	tx = tx.WithContext(ctx)

	box, err := m.increment(tx, boxID, delta)
	if err != nil {
		return nil, err
	}
	if box == nil {
		logger.Get().Warnw("balance update skipped, box not found", "box_id", boxID, "delta", delta.String())
		return nil, nil
	}

	if boxID == m.principalID {
		return box, nil
	}

	principal, err := m.increment(tx, m.principalID, delta)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		logger.Get().Warnw("principal box not found, mirror update skipped", "principal_id", m.principalID, "box_id", boxID)
	}

	return box, nil
}

// increment atomically adds delta to one box and returns its new state.
func (m *BalanceMaintainer) increment(tx *gorm.DB, boxID string, delta decimal.Decimal) (*models.Box, error) {
	var box models.Box
	if err := tx.First(&box, "id = ?", boxID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.Model(&models.Box{}).
		Where("id = ?", boxID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.First(&box, "id = ?", boxID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &box, nil
}
