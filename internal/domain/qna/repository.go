package qna

import (
	"context"

	"github.com/google/uuid"
)

// Listing page bounds
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QnaFilter narrows a Qna listing
type QnaFilter struct {
	Type     QnaType
	TargetID int64
	WriterID *uuid.UUID
	Status   QnaStatus
	Page     int
	PageSize int
}

// Paging returns the 1-based page and the page size a listing is served
// with. Unset values fall back to the first page of DefaultPageSize and the
// size is capped at MaxPageSize.
func (f QnaFilter) Paging() (page, pageSize int) {
	page, pageSize = f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// QnaRepository defines the interface for Qna persistence
type QnaRepository interface {
	// FindByID finds an active Qna by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Qna, error)

	// FindByIDForUpdate finds an active Qna by ID and locks its row until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Qna, error)

	// ExistsByID checks whether an active Qna exists
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// FindByTarget lists active questions matching the filter, newest first
	FindByTarget(ctx context.Context, filter QnaFilter) ([]*Qna, int64, error)

	// Create inserts a new Qna
	Create(ctx context.Context, q *Qna) error

	// Save persists changes to an existing Qna using its version for
	// optimistic locking
	Save(ctx context.Context, q *Qna) error
}

// QnaReplyRepository defines the interface for reply persistence.
// Reads exclude soft-deleted replies unless stated otherwise.
type QnaReplyRepository interface {
	// FindByID finds an active reply by ID
	FindByID(ctx context.Context, id uuid.UUID) (*QnaReply, error)

	// ExistsByID checks whether an active reply exists
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// FindByQnaID returns the active replies of a Qna ordered by path ascending
	FindByQnaID(ctx context.Context, qnaID uuid.UUID) ([]*QnaReply, error)

	// FindMaxRootPath returns the greatest root path ever issued for the Qna,
	// or "" if it has no root replies. Soft-deleted replies count so that
	// their paths are never handed out again.
	FindMaxRootPath(ctx context.Context, qnaID uuid.UUID) (Path, error)

	// FindMaxChildPath returns the greatest immediate child path of parentPath,
	// or "". Grandchildren are never returned. Soft-deleted replies count.
	FindMaxChildPath(ctx context.Context, qnaID uuid.UUID, parentPath Path) (Path, error)

	// Create inserts a new reply. A path already taken in the Qna yields
	// ErrPathConflict.
	Create(ctx context.Context, r *QnaReply) error

	// Save persists changes to an existing reply using its version for
	// optimistic locking
	Save(ctx context.Context, r *QnaReply) error
}
