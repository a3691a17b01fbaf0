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
)

// GormQnaReplyRepository implements qna.QnaReplyRepository using GORM
type GormQnaReplyRepository struct {
	db *gorm.DB
}

// NewGormQnaReplyRepository creates a new GormQnaReplyRepository
func NewGormQnaReplyRepository(db *gorm.DB) *GormQnaReplyRepository {
	return &GormQnaReplyRepository{db: db}
}

// FindByID finds an active reply by its ID
func (r *GormQnaReplyRepository) FindByID(ctx context.Context, id uuid.UUID) (*qna.QnaReply, error) {
	var model models.QnaReplyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.Errorf("reply %s not found", id)
		}
		return nil, fmt.Errorf("find reply %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// ExistsByID checks whether an active reply exists
func (r *GormQnaReplyRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QnaReplyModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count reply %s: %w", id, err)
	}
	return count > 0, nil
}

// FindByQnaID returns the active replies of a Qna in path order.
// Fixed-width segments make the string order match preorder.
func (r *GormQnaReplyRepository) FindByQnaID(ctx context.Context, qnaID uuid.UUID) ([]*qna.QnaReply, error) {
	var rows []models.QnaReplyModel
	if err := r.db.WithContext(ctx).
		Where("qna_id = ?", qnaID).
		Order("path ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list replies of qna %s: %w", qnaID, err)
	}

	result := make([]*qna.QnaReply, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

// FindMaxRootPath returns the greatest root path ever issued for the Qna
func (r *GormQnaReplyRepository) FindMaxRootPath(ctx context.Context, qnaID uuid.UUID) (qna.Path, error) {
	return r.findMaxInScope(ctx, qnaID, "")
}

// FindMaxChildPath returns the greatest immediate child path of parentPath
func (r *GormQnaReplyRepository) FindMaxChildPath(ctx context.Context, qnaID uuid.UUID, parentPath qna.Path) (qna.Path, error) {
	if parentPath.IsZero() {
		return "", qna.ErrPathFormat.Errorf("parent path is empty")
	}
	return r.findMaxInScope(ctx, qnaID, parentPath)
}

// findMaxInScope reads deleted rows too so that no path is issued twice
func (r *GormQnaReplyRepository) findMaxInScope(ctx context.Context, qnaID uuid.UUID, parentPath qna.Path) (qna.Path, error) {
	var paths []string
	if err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.QnaReplyModel{}).
		Where("qna_id = ? AND parent_path = ?", qnaID, parentPath.String()).
		Order("path DESC").
		Limit(1).
		Pluck("path", &paths).Error; err != nil {
		return "", fmt.Errorf("read max path of qna %s under %q: %w", qnaID, parentPath, err)
	}
	if len(paths) == 0 {
		return "", nil
	}
	// parent_path is denormalized; a row whose path disagrees with it must
	// not seed the next allocation
	top := qna.MaxInScope(parentPath, []qna.Path{qna.Path(paths[0])})
	if top.IsZero() {
		return "", qna.ErrPathFormat.Errorf("stored path %q of qna %s is outside scope %q", paths[0], qnaID, parentPath)
	}
	return top, nil
}

// Create inserts a new reply. A taken (qna_id, path) yields qna.ErrPathConflict.
func (r *GormQnaReplyRepository) Create(ctx context.Context, reply *qna.QnaReply) error {
	if err := r.db.WithContext(ctx).Create(models.QnaReplyModelFromDomain(reply)).Error; err != nil {
		if isUniqueViolation(err) {
			return qna.ErrPathConflict.Wrap(err)
		}
		return fmt.Errorf("create reply %s: %w", reply.ID, err)
	}
	return nil
}

// Save writes reply back under the same optimistic version rule as qnas
func (r *GormQnaReplyRepository) Save(ctx context.Context, reply *qna.QnaReply) error {
	m := models.QnaReplyModelFromDomain(reply)
	result := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.QnaReplyModel{}).
		Where("id = ? AND version = ?", reply.ID, reply.Version-1).
		Updates(map[string]any{
			"content":    m.Content,
			"deleted_at": m.DeletedAt,
			"version":    m.Version,
			"updated_at": m.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("save reply %s: %w", reply.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.Errorf("reply %s was modified by another transaction", reply.ID)
	}
	return nil
}

var _ qna.QnaReplyRepository = (*GormQnaReplyRepository)(nil)
