package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/events"
	"fluxo/internal/logger"
	"fluxo/internal/models"
	"fluxo/internal/telemetry"
	"fluxo/internal/uuid"
)

var (
	// integrityTolerance is the accepted gap between a stored balance and
	// the sum of its movements.
	integrityTolerance = decimal.RequireFromString("0.001")
	// overpayTolerance absorbs rounding when a payment settles a bill.
	overpayTolerance = decimal.RequireFromString("0.05")
	// settleThreshold clamps a remaining amount below one cent to zero.
	settleThreshold = decimal.RequireFromString("0.01")
)

// resolveBoxRef maps the literal "Principal" to principalID and validates
// anything else as a box id.
func resolveBoxRef(ref, principalID string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "box id is required")
	}
	if strings.EqualFold(ref, models.PrincipalBoxName) {
		return principalID, nil
	}
	if !uuid.IsValid(ref) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid box id")
	}
	return ref, nil
}

// sumAmounts adds up the amount column of every movement matched by q.
// Summing in Go keeps the result exact on stores without a decimal type.
func sumAmounts(q *gorm.DB) (decimal.Decimal, error) {
	rows, err := q.Model(&models.Movement{}).Select("amount").Rows()
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total.Round(2), rows.Err()
}

// newIntegrityReport compares calculated against registered.
func newIntegrityReport(box *models.Box, calculated decimal.Decimal) *IntegrityReport {
	diff := calculated.Sub(box.Balance)
	return &IntegrityReport{
		BoxID:      box.ID,
		BoxName:    box.Name,
		Calculated: calculated,
		Registered: box.Balance,
		Difference: diff,
		Consistent: diff.Abs().LessThanOrEqual(integrityTolerance),
	}
}

// publish hands e to p after the owning transaction committed. Failures are
// logged and counted, never returned.
func publish(ctx context.Context, p events.Publisher, m *telemetry.Metrics, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		m.IncrEvent("error")
		logger.Get().Warnw("failed to publish ledger event",
			"type", e.Type,
			"resource_id", e.ResourceID,
			"error", err,
		)
		return
	}
	m.IncrEvent("ok")
}
