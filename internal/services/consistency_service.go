package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/events"
	"fluxo/internal/logger"
	"fluxo/internal/models"
	"fluxo/internal/telemetry"
	"fluxo/internal/uuid"
)

var consistencyTracer = otel.Tracer("services/consistency")

// Descriptions of the Principal seed movements.
const (
	seedBalanceDescription = "Saldo"
	seedLoansDescription   = "Total Empréstimos"
)

// consistencyService handles integrity checks and rollovers.
type consistencyService struct {
	db          *gorm.DB
	principalID string
	publisher   events.Publisher
	metrics     *telemetry.Metrics
}

// NewConsistencyService creates a new ConsistencyServicer.
func NewConsistencyService(db *gorm.DB, principalID string, publisher events.Publisher, metrics *telemetry.Metrics) ConsistencyServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &consistencyService{
		db:          db,
		principalID: principalID,
		publisher:   publisher,
		metrics:     metrics,
	}
}

// CheckBox compares a box's balance with the sum of its movements. Principal
// mirrors every box, so it is checked against the whole ledger. A mismatch
// is returned as BALANCE_INCONSISTENT carrying the report.
func (s *consistencyService) CheckBox(ctx context.Context, boxID string) (*IntegrityReport, error) {
	ctx, span := consistencyTracer.Start(ctx, "ConsistencyService.CheckBox")
	defer span.End()

	id, err := resolveBoxRef(boxID, s.principalID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	box, err := findBox(db, id)
	if err != nil {
		return nil, err
	}

	check, scope := s.checkOwned, "box"
	if box.ID == s.principalID {
		check, scope = s.checkPrincipal, "principal"
	}
	report, err := check(db, box)
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		s.metrics.IncrIntegrityMismatch(scope)
		return nil, inconsistent(report)
	}
	return report, nil
}

// RolloverBox collapses a secondary box's history into one carried-forward
// movement. The box balance is left untouched.
func (s *consistencyService) RolloverBox(ctx context.Context, boxID string) (*RolloverResult, error) {
	ctx, span := consistencyTracer.Start(ctx, "ConsistencyService.RolloverBox")
	defer span.End()
	span.SetAttributes(attribute.String("box.id", boxID))

	id, err := resolveBoxRef(boxID, s.principalID)
	if err != nil {
		return nil, err
	}
	if id == s.principalID {
		s.metrics.IncrRollover("secondary", "forbidden")
		return nil, apperrors.ErrForbiddenPrincipal
	}

	var result *RolloverResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		box, err := findBox(tx, id)
		if err != nil {
			return err
		}

		report, err := s.checkOwned(tx, box)
		if err != nil {
			return err
		}
		if !report.Consistent {
			s.metrics.IncrIntegrityMismatch("box")
			logger.Get().Warnw("rollover refused, balance mismatch",
				"box_id", box.ID,
				"calculated", report.Calculated.String(),
				"registered", report.Registered.String(),
			)
			return inconsistent(report)
		}

		if box.Balance.IsZero() {
			result = &RolloverResult{
				Message: fmt.Sprintf("Box %q already has a zero balance, nothing to do", box.Name),
				Box:     box,
			}
			return nil
		}

		carried := &models.Movement{
			Description: fmt.Sprintf("Saldo Anterior - %s", box.Name),
			Amount:      box.Balance,
			Category:    models.CategoryCarriedForward,
			BoxID:       box.ID,
			Date:        time.Now(),
		}
		if err := tx.Create(carried).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		res := tx.Where("box_id = ? AND id <> ?", box.ID, carried.ID).Delete(&models.Movement{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}

		result = &RolloverResult{
			Message:      fmt.Sprintf("Box %q rolled over, %d movements collapsed", box.Name, res.RowsAffected),
			Box:          box,
			Movement:     carried,
			DeletedCount: res.RowsAffected,
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrBalanceInconsistent.Code {
			s.metrics.IncrRollover("secondary", "conflict")
		}
		return nil, err
	}

	if result.Movement == nil {
		s.metrics.IncrRollover("secondary", "noop")
		return result, nil
	}

	s.metrics.IncrRollover("secondary", "ok")
	logger.Get().Infow("box rolled over",
		"box_id", result.Box.ID,
		"carried_forward", result.Movement.Amount.String(),
		"deleted", result.DeletedCount,
	)
	publish(ctx, s.publisher, s.metrics, events.New(events.BoxRolledOver, result.Box.ID, result.Box.ID, result))
	return result, nil
}

// CheckPrincipal compares the Principal balance with the sum of every
// movement in the ledger.
func (s *consistencyService) CheckPrincipal(ctx context.Context) (*IntegrityReport, error) {
	ctx, span := consistencyTracer.Start(ctx, "ConsistencyService.CheckPrincipal")
	defer span.End()

	db := s.db.WithContext(ctx)
	principal, err := s.findPrincipal(db)
	if err != nil {
		return nil, err
	}

	report, err := s.checkPrincipal(db, principal)
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		s.metrics.IncrIntegrityMismatch("principal")
		return nil, inconsistent(report)
	}
	return report, nil
}

// SeedPrincipal replaces the Principal history with a "Saldo" opening
// movement carrying the confirmed balance and, when loans exist, a "Total
// Empréstimos" movement cancelling them. The whole sequence is atomic.
func (s *consistencyService) SeedPrincipal(ctx context.Context, principalID string, confirmedBalance decimal.Decimal) (*SeedResult, error) {
	ctx, span := consistencyTracer.Start(ctx, "ConsistencyService.SeedPrincipal")
	defer span.End()

	principalID = strings.TrimSpace(principalID)
	switch {
	case principalID == "":
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "principal box id is required")
	case !uuid.IsValid(principalID):
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid principal box id")
	case principalID != s.principalID:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "id does not identify the Principal box")
	}

	var result *SeedResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		principal, err := s.findPrincipal(tx)
		if err != nil {
			return err
		}

		report, err := s.checkPrincipal(tx, principal)
		if err != nil {
			return err
		}
		if !report.Consistent {
			s.metrics.IncrIntegrityMismatch("principal")
			return inconsistent(report)
		}
		if confirmedBalance.Sub(principal.Balance).Abs().GreaterThan(integrityTolerance) {
			return apperrors.WithDetails(
				apperrors.WithMessage(apperrors.ErrBalanceInconsistent, "confirmed balance differs from the registered Principal balance"),
				report,
			)
		}

		loans, err := sumAmounts(tx.Where("category = ?", models.CategoryLoans))
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		now := time.Now()
		result = &SeedResult{Principal: principal}
		keep := make([]string, 0, 2)

		result.BalanceMovement = &models.Movement{
			Description: seedBalanceDescription,
			Amount:      confirmedBalance.Round(2),
			Category:    models.CategoryOpening,
			BoxID:       principal.ID,
			Date:        now,
		}
		if err := tx.Create(result.BalanceMovement).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		keep = append(keep, result.BalanceMovement.ID)

		if !loans.IsZero() {
			result.LoansMovement = &models.Movement{
				Description: seedLoansDescription,
				Amount:      loans.Neg(),
				Category:    models.CategoryOpening,
				BoxID:       principal.ID,
				Date:        now,
			}
			if err := tx.Create(result.LoansMovement).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			keep = append(keep, result.LoansMovement.ID)
		}

		res := tx.Where("box_id = ? AND id NOT IN ?", principal.ID, keep).Delete(&models.Movement{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		result.DeletedCount = res.RowsAffected
		return nil
	})
	if err != nil {
		s.metrics.IncrRollover("principal", "failed")
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			err = apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, err
	}

	s.metrics.IncrRollover("principal", "ok")
	logger.Get().Infow("principal box seeded",
		"balance", result.BalanceMovement.Amount.String(),
		"loans_movement", result.LoansMovement != nil,
		"deleted", result.DeletedCount,
	)
	publish(ctx, s.publisher, s.metrics, events.New(events.PrincipalSeeded, result.Principal.ID, result.Principal.ID, result))
	return result, nil
}

func (s *consistencyService) checkOwned(db *gorm.DB, box *models.Box) (*IntegrityReport, error) {
	sum, err := sumAmounts(db.Where("box_id = ?", box.ID))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return newIntegrityReport(box, sum), nil
}

func (s *consistencyService) checkPrincipal(db *gorm.DB, principal *models.Box) (*IntegrityReport, error) {
	sum, err := sumAmounts(db)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return newIntegrityReport(principal, sum), nil
}

func (s *consistencyService) findPrincipal(db *gorm.DB) (*models.Box, error) {
	box, err := findBox(db, s.principalID)
	if errors.Is(err, apperrors.ErrBoxNotFound) {
		return nil, apperrors.ErrPrincipalNotFound
	}
	return box, err
}

func findBox(db *gorm.DB, id string) (*models.Box, error) {
	var box models.Box
	if err := db.First(&box, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBoxNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &box, nil
}

func inconsistent(report *IntegrityReport) *apperrors.AppError {
	return apperrors.WithDetails(apperrors.ErrBalanceInconsistent, report)
}
