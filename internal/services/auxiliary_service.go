package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
)

// auxiliaryService handles auxiliary key/value records.
type auxiliaryService struct {
	db *gorm.DB
}

// NewAuxiliaryService creates a new AuxiliaryServicer.
func NewAuxiliaryService(db *gorm.DB) AuxiliaryServicer {
	return &auxiliaryService{db: db}
}

func normalizeGroup(group string) string {
	group = strings.TrimSpace(group)
	if group == "" {
		return models.DefaultAuxiliaryGroup
	}
	return group
}

// CreateAuxiliary stores a new record. Keys are unique within a group.
func (s *auxiliaryService) CreateAuxiliary(ctx context.Context, in AuxiliaryInput) (*models.Auxiliary, error) {
	key := strings.TrimSpace(in.Key)
	if key == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "key is required")
	}

	record := &models.Auxiliary{
		Key:     key,
		Value:   in.Value,
		Content: in.Content,
		Group:   normalizeGroup(in.Group),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueKey(tx, record.Key, record.Group, ""); err != nil {
			return err
		}
		if err := tx.Create(record).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListAuxiliary returns records, newest first, optionally limited to a group.
func (s *auxiliaryService) ListAuxiliary(ctx context.Context, group string) ([]models.Auxiliary, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if g := strings.TrimSpace(group); g != "" {
		q = q.Where("group_name = ?", g)
	}

	records := []models.Auxiliary{}
	if err := q.Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return records, nil
}

// GetAuxiliary retrieves a record by id.
func (s *auxiliaryService) GetAuxiliary(ctx context.Context, id string) (*models.Auxiliary, error) {
	return findAuxiliary(s.db.WithContext(ctx), id)
}

// UpdateAuxiliary applies the non-nil fields of upd.
func (s *auxiliaryService) UpdateAuxiliary(ctx context.Context, id string, upd AuxiliaryUpdate) (*models.Auxiliary, error) {
	var record *models.Auxiliary

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = findAuxiliary(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		key, group := record.Key, record.Group
		if upd.Key != nil {
			key = strings.TrimSpace(*upd.Key)
			if key == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "key cannot be empty")
			}
			updates["key"] = key
		}
		if upd.Group != nil {
			group = normalizeGroup(*upd.Group)
			updates["group_name"] = group
		}
		if upd.Value != nil {
			updates["value"] = *upd.Value
		}
		if upd.Content != nil {
			updates["content"] = *upd.Content
		}
		if len(updates) == 0 {
			return nil
		}

		if key != record.Key || group != record.Group {
			if err := ensureUniqueKey(tx, key, group, record.ID); err != nil {
				return err
			}
		}

		if err := tx.Model(record).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		record, err = findAuxiliary(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteAuxiliary removes a record.
func (s *auxiliaryService) DeleteAuxiliary(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Auxiliary{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAuxiliaryNotFound
	}
	return nil
}

// FindByKey looks a record up by key. An empty group searches every group
// and returns the oldest match.
func (s *auxiliaryService) FindByKey(ctx context.Context, key, group string) (*models.Auxiliary, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "key is required")
	}

	q := s.db.WithContext(ctx).Where("key = ?", key)
	if g := strings.TrimSpace(group); g != "" {
		q = q.Where("group_name = ?", g)
	}

	var record models.Auxiliary
	if err := q.Order("created_at ASC").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAuxiliaryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

func findAuxiliary(db *gorm.DB, id string) (*models.Auxiliary, error) {
	var record models.Auxiliary
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAuxiliaryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

func ensureUniqueKey(db *gorm.DB, key, group, exceptID string) error {
	q := db.Model(&models.Auxiliary{}).Where("key = ? AND group_name = ?", key, group)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateKey
	}
	return nil
}
