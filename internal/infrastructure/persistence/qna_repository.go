package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/domain/shared"
	"github.com/setof/qna-backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormQnaRepository implements qna.QnaRepository using GORM
type GormQnaRepository struct {
	db *gorm.DB
}

// NewGormQnaRepository creates a new GormQnaRepository
func NewGormQnaRepository(db *gorm.DB) *GormQnaRepository {
	return &GormQnaRepository{db: db}
}

// FindByID finds an active Qna by its ID
func (r *GormQnaRepository) FindByID(ctx context.Context, id uuid.UUID) (*qna.Qna, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an active Qna and takes a row lock on it.
// The lock is held until the surrounding transaction ends.
func (r *GormQnaRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*qna.Qna, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormQnaRepository) findOne(db *gorm.DB, id uuid.UUID) (*qna.Qna, error) {
	var model models.QnaModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.Errorf("qna %s not found", id)
		}
		return nil, fmt.Errorf("find qna %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// ExistsByID checks whether an active Qna exists
func (r *GormQnaRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QnaModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count qna %s: %w", id, err)
	}
	return count > 0, nil
}

// FindByTarget lists active questions matching the filter, newest first
func (r *GormQnaRepository) FindByTarget(ctx context.Context, filter qna.QnaFilter) ([]*qna.Qna, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.QnaModel{})
	if filter.Type != "" {
		query = query.Where("qna_type = ?", filter.Type)
	}
	if filter.TargetID > 0 {
		query = query.Where("target_id = ?", filter.TargetID)
	}
	if filter.WriterID != nil {
		query = query.Where("writer_id = ?", *filter.WriterID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count qnas: %w", err)
	}

	page, pageSize := filter.Paging()
	var rows []models.QnaModel
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list qnas: %w", err)
	}

	result := make([]*qna.Qna, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, total, nil
}

// Create inserts a new Qna
func (r *GormQnaRepository) Create(ctx context.Context, q *qna.Qna) error {
	if err := r.db.WithContext(ctx).Create(models.QnaModelFromDomain(q)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists.Errorf("qna %s already exists", q.ID)
		}
		return fmt.Errorf("create qna %s: %w", q.ID, err)
	}
	return nil
}

// Save writes q back if the stored version is the one q was loaded with.
// Domain mutations bump the version by one, so the expected stored version
// is q.Version-1; anything else means a concurrent writer got there first.
func (r *GormQnaRepository) Save(ctx context.Context, q *qna.Qna) error {
	m := models.QnaModelFromDomain(q)
	result := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.QnaModel{}).
		Where("id = ? AND version = ?", q.ID, q.Version-1).
		Updates(map[string]any{
			"title":       m.Title,
			"body":        m.Body,
			"secret":      m.Secret,
			"images":      m.Images,
			"status":      m.Status,
			"reply_count": m.ReplyCount,
			"deleted_at":  m.DeletedAt,
			"version":     m.Version,
			"updated_at":  m.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("save qna %s: %w", q.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.Errorf("qna %s was modified by another transaction", q.ID)
	}
	return nil
}

var _ qna.QnaRepository = (*GormQnaRepository)(nil)
