package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/logger"
	"fluxo/internal/models"
)

var boxTracer = otel.Tracer("services/box")

// boxService handles box-related business logic.
type boxService struct {
	db          *gorm.DB
	principalID string
}

// NewBoxService creates a new BoxServicer.
func NewBoxService(db *gorm.DB, principalID string) BoxServicer {
	return &boxService{db: db, principalID: principalID}
}

// CreateBox creates a box with a zero balance.
func (s *boxService) CreateBox(ctx context.Context, name, description string) (*models.Box, error) {
	ctx, span := boxTracer.Start(ctx, "BoxService.CreateBox")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "box name is required")
	}

	box := &models.Box{
		Name:        name,
		Balance:     decimal.Zero,
		Description: strings.TrimSpace(description),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Box{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateBoxName
		}
		if err := tx.Create(box).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("box.id", box.ID))
	return box, nil
}

// ListBoxes returns every box ordered by name.
func (s *boxService) ListBoxes(ctx context.Context) ([]models.Box, error) {
	ctx, span := boxTracer.Start(ctx, "BoxService.ListBoxes")
	defer span.End()

	var boxes []models.Box
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&boxes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return boxes, nil
}

// GetBox fetches a box by id or by the "Principal" alias.
func (s *boxService) GetBox(ctx context.Context, id string) (*models.Box, error) {
	ctx, span := boxTracer.Start(ctx, "BoxService.GetBox")
	defer span.End()

	boxID, err := resolveBoxRef(id, s.principalID)
	if err != nil {
		return nil, err
	}

	var box models.Box
	if err := s.db.WithContext(ctx).First(&box, "id = ?", boxID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBoxNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &box, nil
}

// EnsurePrincipal creates the Principal box when it does not exist yet.
func (s *boxService) EnsurePrincipal(ctx context.Context) (*models.Box, error) {
	ctx, span := boxTracer.Start(ctx, "BoxService.EnsurePrincipal")
	defer span.End()

	var principal models.Box
	err := s.db.WithContext(ctx).First(&principal, "id = ?", s.principalID).Error
	if err == nil {
		return &principal, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	principal = models.Box{
		Base:        models.Base{ID: s.principalID},
		Name:        models.PrincipalBoxName,
		Balance:     decimal.Zero,
		Description: "Aggregate of every box",
	}
	if err := s.db.WithContext(ctx).Create(&principal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("Principal box seeded", "id", principal.ID)
	return &principal, nil
}

// ResolveBoxRef maps "Principal" to the Principal id and validates any
// other reference as a box id.
func (s *boxService) ResolveBoxRef(_ context.Context, ref string) (string, error) {
	return resolveBoxRef(ref, s.principalID)
}
