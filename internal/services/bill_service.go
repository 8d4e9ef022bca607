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

var billTracer = otel.Tracer("services/bill")

// billService handles the bill payment engine.
type billService struct {
	db         *gorm.DB
	maintainer *BalanceMaintainer
	publisher  events.Publisher
	metrics    *telemetry.Metrics
}

// NewBillService creates a new BillServicer.
func NewBillService(db *gorm.DB, maintainer *BalanceMaintainer, publisher events.Publisher, metrics *telemetry.Metrics) BillServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &billService{
		db:         db,
		maintainer: maintainer,
		publisher:  publisher,
		metrics:    metrics,
	}
}

// CreateBill registers a payable bill with remaining equal to its amount.
func (s *billService) CreateBill(ctx context.Context, in BillInput) (*models.Bill, error) {
	ctx, span := billTracer.Start(ctx, "BillService.CreateBill")
	defer span.End()

	institution := strings.TrimSpace(in.Institution)
	description := strings.TrimSpace(in.Description)
	switch {
	case institution == "":
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "institution is required")
	case description == "":
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	case !in.Amount.IsPositive():
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	case in.DueDate.IsZero():
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due date is required")
	}

	status := in.Status
	if status == "" {
		status = models.BillStatusPending
	}
	if !status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status")
	}

	bill := &models.Bill{
		Institution: institution,
		Description: description,
		Note:        strings.TrimSpace(in.Note),
		Amount:      in.Amount,
		Remaining:   in.Amount,
		DueDate:     in.DueDate,
		Status:      status,
		Payments:    []models.BillPayment{},
	}
	if err := s.db.WithContext(ctx).Create(bill).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	span.SetAttributes(attribute.String("bill.id", bill.ID))
	return bill, nil
}

// ListBills returns bills ordered by due date, optionally by status.
func (s *billService) ListBills(ctx context.Context, status *models.BillStatus) ([]models.Bill, error) {
	ctx, span := billTracer.Start(ctx, "BillService.ListBills")
	defer span.End()

	q := s.db.WithContext(ctx).Preload("Payments", func(db *gorm.DB) *gorm.DB {
		return db.Order("paid_at ASC")
	})
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var bills []models.Bill
	if err := q.Order("due_date ASC").Find(&bills).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return bills, nil
}

// GetBill fetches a bill with its payment history.
func (s *billService) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	ctx, span := billTracer.Start(ctx, "BillService.GetBill")
	defer span.End()

	return loadBill(s.db.WithContext(ctx), id)
}

// UpdateBill edits a bill. Changing the amount recomputes remaining from the
// payment history; the status is re-derived unless explicitly given.
func (s *billService) UpdateBill(ctx context.Context, id string, upd BillUpdate) (*models.Bill, error) {
	ctx, span := billTracer.Start(ctx, "BillService.UpdateBill")
	defer span.End()

	var result *models.Bill
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := loadBill(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if upd.Institution != nil {
			v := strings.TrimSpace(*upd.Institution)
			if v == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "institution cannot be empty")
			}
			updates["institution"] = v
		}
		if upd.Description != nil {
			v := strings.TrimSpace(*upd.Description)
			if v == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "description cannot be empty")
			}
			updates["description"] = v
		}
		if upd.Note != nil {
			updates["note"] = strings.TrimSpace(*upd.Note)
		}
		if upd.DueDate != nil {
			if upd.DueDate.IsZero() {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "due date cannot be empty")
			}
			updates["due_date"] = *upd.DueDate
		}
		if upd.Amount != nil {
			if !upd.Amount.IsPositive() {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
			}
			remaining := settle(upd.Amount.Sub(bill.PaidTotal()))
			updates["amount"] = *upd.Amount
			updates["remaining"] = remaining
			if upd.Status == nil {
				updates["status"] = models.DeriveBillStatus(remaining, len(bill.Payments))
			}
		}
		if upd.Status != nil {
			if !upd.Status.Valid() {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status")
			}
			updates["status"] = *upd.Status
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Bill{}).Where("id = ?", bill.ID).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		result, err = loadBill(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteBill removes a bill and its payment history. Movements already
// generated by payments stay in the ledger.
func (s *billService) DeleteBill(ctx context.Context, id string) error {
	ctx, span := billTracer.Start(ctx, "BillService.DeleteBill")
	defer span.End()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadBill(tx, id); err != nil {
			return err
		}
		if err := tx.Where("bill_id = ?", id).Delete(&models.BillPayment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&models.Bill{}, "id = ?", id).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// PayBill pays a bill from one or more boxes. Each applied entry creates an
// outflow movement on its box, goes through the balance maintainer and is
// appended to the payment history. Entries against unknown boxes are skipped.
func (s *billService) PayBill(ctx context.Context, id string, payments []PaymentInput, paidAt *time.Time) (*PayResult, error) {
	ctx, span := billTracer.Start(ctx, "BillService.PayBill")
	defer span.End()
	span.SetAttributes(attribute.String("bill.id", id), attribute.Int("payments", len(payments)))

	if len(payments) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no payments informed")
	}
	total := decimal.Zero
	for _, p := range payments {
		if !p.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment amounts must be greater than zero")
		}
		total = total.Add(p.Amount)
	}

	when := time.Now()
	if paidAt != nil && !paidAt.IsZero() {
		when = *paidAt
	}

	var (
		result  *PayResult
		applied int
	)
	skipped := []PaymentInput{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bill, err := loadBill(tx, id)
		if err != nil {
			return err
		}
		if bill.Status == models.BillStatusPaid {
			return apperrors.ErrBillAlreadyPaid
		}
		if total.GreaterThan(bill.Remaining.Add(overpayTolerance)) {
			return apperrors.WithDetails(
				apperrors.WithMessage(apperrors.ErrExceedsRemaining,
					fmt.Sprintf("payment total %s exceeds the remaining %s", total.StringFixed(2), bill.Remaining.StringFixed(2))),
				map[string]decimal.Decimal{"total": total, "remaining": bill.Remaining},
			)
		}

		description := fmt.Sprintf("Pagamento Parcial: %s (%s)", bill.Description, bill.Institution)
		paidTotal := decimal.Zero

		for _, p := range payments {
			boxID, ok := s.payingBox(tx, p.BoxID)
			if !ok {
				skipped = append(skipped, p)
				s.metrics.IncrBillPayment("skipped")
				logger.Get().Warnw("bill payment entry skipped, box not found",
					"bill_id", bill.ID,
					"box_id", p.BoxID,
					"amount", p.Amount.String(),
				)
				continue
			}

			movement := &models.Movement{
				Description: description,
				Amount:      models.SignedAmount(p.Amount, models.MovementKindOutflow),
				Category:    models.CategoryDefault,
				BoxID:       boxID,
				Date:        when,
			}
			if err := tx.Create(movement).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if _, err := s.maintainer.Apply(ctx, tx, boxID, movement.Amount); err != nil {
				return err
			}

			payment := &models.BillPayment{
				BillID:     bill.ID,
				BoxID:      boxID,
				MovementID: movement.ID,
				Amount:     p.Amount,
				PaidAt:     when,
			}
			if err := tx.Create(payment).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			paidTotal = paidTotal.Add(p.Amount)
			applied++
			s.metrics.IncrBillPayment("applied")
		}

		if applied == 0 {
			result = &PayResult{Bill: bill, Remaining: bill.Remaining, Skipped: skipped}
			return nil
		}

		remaining := settle(bill.Remaining.Sub(paidTotal))
		status := models.DeriveBillStatus(remaining, len(bill.Payments)+applied)

		if err := tx.Model(&models.Bill{}).Where("id = ?", bill.ID).Updates(map[string]interface{}{
			"remaining": remaining,
			"status":    status,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updated, err := loadBill(tx, bill.ID)
		if err != nil {
			return err
		}
		result = &PayResult{Bill: updated, Remaining: updated.Remaining, Skipped: skipped}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied > 0 {
		publish(ctx, s.publisher, s.metrics, events.New(events.BillPaid, result.Bill.ID, "", result))
	}
	return result, nil
}

// payingBox resolves a payment's box reference inside tx. Unknown or
// malformed references report false.
func (s *billService) payingBox(tx *gorm.DB, ref string) (string, bool) {
	boxID, err := resolveBoxRef(ref, s.maintainer.PrincipalID())
	if err != nil || !uuid.IsValid(boxID) {
		return "", false
	}
	var count int64
	if err := tx.Model(&models.Box{}).Where("id = ?", boxID).Count(&count).Error; err != nil || count == 0 {
		return "", false
	}
	return boxID, true
}

// loadBill fetches a bill with its payments ordered by date.
func loadBill(db *gorm.DB, id string) (*models.Bill, error) {
	var bill models.Bill
	err := db.Preload("Payments", func(db *gorm.DB) *gorm.DB {
		return db.Order("paid_at ASC")
	}).First(&bill, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBillNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &bill, nil
}

// settle clamps amounts under one cent (including small overpayments) to zero.
func settle(remaining decimal.Decimal) decimal.Decimal {
	if remaining.LessThan(settleThreshold) {
		return decimal.Zero
	}
	return remaining.Round(2)
}
