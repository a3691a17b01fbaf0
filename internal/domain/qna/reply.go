package qna

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/shared"
)

const maxReplyLength = 1000

// QnaReply is one node of a Qna's reply tree.
// Its position is carried entirely by Path; ParentReplyID is nil for roots.
type QnaReply struct {
	shared.BaseAggregateRoot
	QnaID         uuid.UUID
	ParentReplyID *uuid.UUID
	Writer        Writer
	Content       string
	Path          Path
	DeletedAt     *time.Time
}

func validateReplyContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrInvalidContent.Errorf("reply content cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxReplyLength {
		return "", ErrInvalidContent.Errorf("reply content cannot exceed %d characters", maxReplyLength)
	}
	return content, nil
}

// NewRootReply creates a top-level reply. The path comes from NextRootPath.
func NewRootReply(qnaID uuid.UUID, writer Writer, content string, path Path) (*QnaReply, error) {
	if qnaID == uuid.Nil {
		return nil, shared.ErrInvalidInput.Errorf("qna id is required")
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if !path.IsRoot() {
		return nil, ErrReplyPathMismatch.Errorf("root reply path %q must have exactly one segment", path)
	}
	return newReply(qnaID, nil, writer, content, path)
}

// NewChildReply creates a reply under parentReplyID.
// The path comes from NextChildPath and must be an immediate child of parentPath.
func NewChildReply(qnaID, parentReplyID uuid.UUID, parentPath Path, writer Writer, content string, path Path) (*QnaReply, error) {
	if qnaID == uuid.Nil {
		return nil, shared.ErrInvalidInput.Errorf("qna id is required")
	}
	if parentReplyID == uuid.Nil {
		return nil, shared.ErrInvalidInput.Errorf("parent reply id is required")
	}
	if err := parentPath.Validate(); err != nil {
		return nil, err
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if !path.IsChildOf(parentPath) {
		return nil, ErrReplyPathMismatch.Errorf("path %q is not an immediate child of %q", path, parentPath)
	}
	if path.Depth() > MaxReplyDepth {
		return nil, ErrReplyDepthExceeded.Errorf("reply depth %d exceeds %d", path.Depth(), MaxReplyDepth)
	}
	parent := parentReplyID
	return newReply(qnaID, &parent, writer, content, path)
}

func newReply(qnaID uuid.UUID, parentReplyID *uuid.UUID, writer Writer, content string, path Path) (*QnaReply, error) {
	if err := writer.Validate(); err != nil {
		return nil, err
	}
	content, err := validateReplyContent(content)
	if err != nil {
		return nil, err
	}

	r := &QnaReply{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		QnaID:             qnaID,
		ParentReplyID:     parentReplyID,
		Writer:            writer,
		Content:           content,
		Path:              path,
	}

	r.AddDomainEvent(NewQnaReplyCreatedEvent(r))

	return r, nil
}

// ReconstituteQnaReply rebuilds a reply from persisted state without validation
func ReconstituteQnaReply(
	base shared.BaseAggregateRoot,
	qnaID uuid.UUID,
	parentReplyID *uuid.UUID,
	writer Writer,
	content string,
	path Path,
	deletedAt *time.Time,
) *QnaReply {
	return &QnaReply{
		BaseAggregateRoot: base,
		QnaID:             qnaID,
		ParentReplyID:     parentReplyID,
		Writer:            writer,
		Content:           content,
		Path:              path,
		DeletedAt:         deletedAt,
	}
}

// UpdateContent returns a copy of r carrying the new content.
// Whether the owning Qna is still open is checked by the caller.
func (r *QnaReply) UpdateContent(content string) (*QnaReply, error) {
	if r.IsDeleted() {
		return nil, ErrReplyDeleted.Errorf("reply %s has been deleted", r.ID)
	}
	content, err := validateReplyContent(content)
	if err != nil {
		return nil, err
	}

	updated := r.clone()
	updated.Content = content
	updated.UpdatedAt = time.Now()
	updated.IncrementVersion()

	updated.AddDomainEvent(NewQnaReplyUpdatedEvent(updated))

	return updated, nil
}

// Delete soft-deletes the reply. Children are left as they are.
func (r *QnaReply) Delete() {
	if r.DeletedAt != nil {
		return
	}
	now := time.Now()
	r.DeletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewQnaReplyDeletedEvent(r))
}

// IsRootReply returns true when the reply has no parent
func (r *QnaReply) IsRootReply() bool {
	return r.ParentReplyID == nil
}

// Depth returns the tree level of the reply, 1 for roots
func (r *QnaReply) Depth() int {
	return r.Path.Depth()
}

// IsDeleted returns true once the reply has been soft-deleted
func (r *QnaReply) IsDeleted() bool {
	return r.DeletedAt != nil
}

// CanHaveChildren reports whether a child would stay within MaxReplyDepth
func (r *QnaReply) CanHaveChildren() bool {
	return r.Depth() < MaxReplyDepth
}

// IsWrittenBy reports whether writerID authored the reply
func (r *QnaReply) IsWrittenBy(writerID uuid.UUID) bool {
	return r.Writer.ID == writerID
}

func (r *QnaReply) clone() *QnaReply {
	c := *r
	c.BaseAggregateRoot = r.BaseAggregateRoot.Clone()
	if r.ParentReplyID != nil {
		id := *r.ParentReplyID
		c.ParentReplyID = &id
	}
	if r.DeletedAt != nil {
		t := *r.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
