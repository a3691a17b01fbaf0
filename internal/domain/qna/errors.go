package qna

import "github.com/setof/qna-backend/internal/domain/shared"

// Path errors
var (
	// ErrPathFormat signals a malformed materialized path. It indicates a
	// programming or data-integrity fault and is never retried.
	ErrPathFormat = shared.NewDomainError("REPLY_PATH_FORMAT", "Malformed reply path")
	// ErrPathOverflow signals that a path segment would exceed MaxSegmentValue.
	ErrPathOverflow = shared.NewDomainError("REPLY_PATH_OVERFLOW", "Reply path segment capacity exceeded")
	// ErrPathConflict signals that another writer committed the same path first.
	ErrPathConflict = shared.NewDomainError("REPLY_PATH_CONFLICT", "Reply path already taken")
	// ErrAllocationExhausted is returned once every allocation attempt hit a conflict.
	ErrAllocationExhausted = shared.NewDomainError("REPLY_ALLOCATION_EXHAUSTED", "Could not allocate a reply path, please retry")
	// ErrReplyScopeBusy is returned when the allocation scope lock cannot be taken in time.
	ErrReplyScopeBusy = shared.NewDomainError("REPLY_SCOPE_BUSY", "Another reply is being created here, please retry")
	// ErrReplyDepthExceeded is returned when a child would be deeper than MaxReplyDepth.
	ErrReplyDepthExceeded = shared.NewDomainError("REPLY_DEPTH_EXCEEDED", "Reply nesting is too deep")
)

// Qna errors
var (
	ErrQnaAlreadyClosed   = shared.NewDomainError("QNA_ALREADY_CLOSED", "Qna is already closed")
	ErrQnaNotRepliable    = shared.NewDomainError("QNA_NOT_REPLIABLE", "Qna does not accept replies")
	ErrImageLimitExceeded = shared.NewDomainError("QNA_IMAGE_LIMIT_EXCEEDED", "Qna image limit exceeded")
	ErrProductQnaImages   = shared.NewDomainError("PRODUCT_QNA_CANNOT_HAVE_IMAGES", "Product qna cannot have images")
	ErrInvalidQnaType     = shared.NewDomainError("INVALID_QNA_TYPE", "Invalid qna type")
	ErrInvalidDetailType  = shared.NewDomainError("INVALID_QNA_DETAIL_TYPE", "Invalid qna detail type")
	ErrInvalidContent     = shared.NewDomainError("INVALID_CONTENT", "Invalid content")
	ErrInvalidWriter      = shared.NewDomainError("INVALID_WRITER", "Invalid writer")
	ErrInvalidImage       = shared.NewDomainError("INVALID_QNA_IMAGE", "Invalid qna image")
)

// Reply errors
var (
	ErrReplyDeleted        = shared.NewDomainError("QNA_REPLY_DELETED", "Reply has been deleted")
	ErrReplyParentMismatch = shared.NewDomainError("QNA_REPLY_PARENT_MISMATCH", "Parent reply belongs to another qna")
	ErrReplyPathMismatch   = shared.NewDomainError("QNA_REPLY_PATH_MISMATCH", "Reply path does not match its position")
)
