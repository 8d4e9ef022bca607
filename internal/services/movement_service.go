package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/events"
	"fluxo/internal/models"
	"fluxo/internal/pagination"
	"fluxo/internal/telemetry"
)

var movementTracer = otel.Tracer("services/movement")

// movementService handles the movement ledger.
type movementService struct {
	db         *gorm.DB
	maintainer *BalanceMaintainer
	publisher  events.Publisher
	metrics    *telemetry.Metrics
}

// NewMovementService creates a new MovementServicer.
func NewMovementService(db *gorm.DB, maintainer *BalanceMaintainer, publisher events.Publisher, metrics *telemetry.Metrics) MovementServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &movementService{
		db:         db,
		maintainer: maintainer,
		publisher:  publisher,
		metrics:    metrics,
	}
}

// CreateMovement records a signed movement and applies it to the owning box
// and the Principal box in one transaction.
func (s *movementService) CreateMovement(ctx context.Context, in MovementInput) (*models.Movement, error) {
	ctx, span := movementTracer.Start(ctx, "MovementService.CreateMovement")
	defer span.End()

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if in.Amount.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
	}
	kind, ok := models.ParseMovementKind(in.Kind)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be entrada or saida")
	}
	boxID, err := resolveBoxRef(in.BoxID, s.maintainer.PrincipalID())
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.CategoryDefault
	}
	date := time.Now()
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}

	movement := &models.Movement{
		Description: description,
		Amount:      models.SignedAmount(in.Amount, kind),
		Category:    category,
		BoxID:       boxID,
		Date:        date,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// movements.box_id references boxes, so an unknown box is rejected
		// rather than stored as an orphan.
		var box models.Box
		if err := tx.First(&box, "id = ?", boxID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBoxNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Create(movement).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updated, err := s.maintainer.Apply(ctx, tx, boxID, movement.Amount)
		if err != nil {
			return err
		}
		movement.Box = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("movement.id", movement.ID),
		attribute.String("box.id", boxID),
	)
	s.metrics.IncrMovement("create")
	publish(ctx, s.publisher, s.metrics, events.New(events.MovementCreated, movement.ID, boxID, movement))

	return movement, nil
}

// UpdateMovement changes the descriptive fields of a movement. Amount and
// box are immutable.
func (s *movementService) UpdateMovement(ctx context.Context, id string, description, category *string) (*models.Movement, error) {
	ctx, span := movementTracer.Start(ctx, "MovementService.UpdateMovement")
	defer span.End()

	updates := map[string]interface{}{}
	if description != nil {
		d := strings.TrimSpace(*description)
		if d == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description cannot be empty")
		}
		updates["description"] = d
	}
	if category != nil {
		c := strings.TrimSpace(*category)
		if c == "" {
			c = models.CategoryDefault
		}
		updates["category"] = c
	}

	var movement models.Movement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&movement, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrMovementNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(updates) > 0 {
			if err := tx.Model(&movement).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Preload("Box").First(&movement, "id = ?", id).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

// DeleteMovement reverses the stored amount against the owning box (and the
// Principal box) and removes the movement, in one transaction.
func (s *movementService) DeleteMovement(ctx context.Context, id string) error {
	ctx, span := movementTracer.Start(ctx, "MovementService.DeleteMovement")
	defer span.End()

	var movement models.Movement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&movement, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrMovementNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if _, err := s.maintainer.Apply(ctx, tx, movement.BoxID, movement.Amount.Neg()); err != nil {
			return err
		}

		if err := tx.Delete(&models.Movement{}, "id = ?", movement.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncrMovement("delete")
	publish(ctx, s.publisher, s.metrics, events.New(events.MovementDeleted, movement.ID, movement.BoxID, movement))
	return nil
}

// GetMovement fetches a movement with its box.
func (s *movementService) GetMovement(ctx context.Context, id string) (*models.Movement, error) {
	ctx, span := movementTracer.Start(ctx, "MovementService.GetMovement")
	defer span.End()

	var movement models.Movement
	if err := s.db.WithContext(ctx).Preload("Box").First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMovementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &movement, nil
}

// ListMovements returns a filtered page of movements, newest first.
func (s *movementService) ListMovements(ctx context.Context, page pagination.PageRequest, filter MovementFilter) (*pagination.PageResponse[models.Movement], error) {
	ctx, span := movementTracer.Start(ctx, "MovementService.ListMovements")
	defer span.End()

	page.Defaults()

	if filter.BoxID != "" {
		boxID, err := resolveBoxRef(filter.BoxID, s.maintainer.PrincipalID())
		if err != nil {
			return nil, err
		}
		filter.BoxID = boxID
	}

	base := applyMovementFilters(s.db.WithContext(ctx).Model(&models.Movement{}), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var movements []models.Movement
	if err := applyMovementFilters(s.db.WithContext(ctx), filter).
		Preload("Box").
		Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("created_at DESC").
		Find(&movements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(movements, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyMovementFilters(q *gorm.DB, f MovementFilter) *gorm.DB {
	if f.BoxID != "" {
		q = q.Where("box_id = ?", f.BoxID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	return q
}
