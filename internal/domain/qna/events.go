package qna

import (
	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeQna      = "Qna"
	AggregateTypeQnaReply = "QnaReply"
)

// Event type constants
const (
	EventTypeQnaCreated        = "QnaCreated"
	EventTypeQnaClosed         = "QnaClosed"
	EventTypeQnaContentUpdated = "QnaContentUpdated"
	EventTypeQnaImagesAdded    = "QnaImagesAdded"
	EventTypeQnaDeleted        = "QnaDeleted"
	EventTypeQnaReplyCreated   = "QnaReplyCreated"
	EventTypeQnaReplyUpdated   = "QnaReplyUpdated"
	EventTypeQnaReplyDeleted   = "QnaReplyDeleted"
)

// QnaCreatedEvent is published when a question is asked
type QnaCreatedEvent struct {
	shared.BaseDomainEvent
	QnaID      uuid.UUID     `json:"qna_id"`
	Type       QnaType       `json:"type"`
	DetailType QnaDetailType `json:"detail_type"`
	TargetID   int64         `json:"target_id"`
	WriterID   uuid.UUID     `json:"writer_id"`
	Secret     bool          `json:"secret"`
}

// NewQnaCreatedEvent creates a new QnaCreatedEvent
func NewQnaCreatedEvent(q *Qna) *QnaCreatedEvent {
	return &QnaCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQnaCreated, AggregateTypeQna, q.ID),
		QnaID:           q.ID,
		Type:            q.Type,
		DetailType:      q.DetailType,
		TargetID:        q.TargetID,
		WriterID:        q.Writer.ID,
		Secret:          q.Secret,
	}
}

// QnaClosedEvent is published when a question is closed
type QnaClosedEvent struct {
	shared.BaseDomainEvent
	QnaID      uuid.UUID `json:"qna_id"`
	ReplyCount int       `json:"reply_count"`
}

// NewQnaClosedEvent creates a new QnaClosedEvent
func NewQnaClosedEvent(q *Qna) *QnaClosedEvent {
	return &QnaClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQnaClosed, AggregateTypeQna, q.ID),
		QnaID:           q.ID,
		ReplyCount:      q.ReplyCount,
	}
}

// QnaContentUpdatedEvent is published when a question is edited
type QnaContentUpdatedEvent struct {
	shared.BaseDomainEvent
	QnaID uuid.UUID `json:"qna_id"`
	Title string    `json:"title"`
}

// NewQnaContentUpdatedEvent creates a new QnaContentUpdatedEvent
func NewQnaContentUpdatedEvent(q *Qna) *QnaContentUpdatedEvent {
	return &QnaContentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQnaContentUpdated, AggregateTypeQna, q.ID),
		QnaID:           q.ID,
		Title:           q.Content.Title,
	}
}

// QnaImagesAddedEvent is published when images are attached to a question
type QnaImagesAddedEvent struct {
	shared.BaseDomainEvent
	QnaID      uuid.UUID `json:"qna_id"`
	Added      int       `json:"added"`
	TotalCount int       `json:"total_count"`
}

// NewQnaImagesAddedEvent creates a new QnaImagesAddedEvent
func NewQnaImagesAddedEvent(q *Qna, added int) *QnaImagesAddedEvent {
	return &QnaImagesAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQnaImagesAdded, AggregateTypeQna, q.ID),
		QnaID:           q.ID,
		Added:           added,
		TotalCount:      len(q.Images),
	}
}

// QnaDeletedEvent is published when a question is soft-deleted
type QnaDeletedEvent struct {
	shared.BaseDomainEvent
	QnaID uuid.UUID `json:"qna_id"`
}

// NewQnaDeletedEvent creates a new QnaDeletedEvent
func NewQnaDeletedEvent(q *Qna) *QnaDeletedEvent {
	return &QnaDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQnaDeleted, AggregateTypeQna, q.ID),
		QnaID:           q.ID,
	}
}

// QnaReplyCreatedEvent is published when a reply is persisted
type QnaReplyCreatedEvent struct {
	shared.BaseDomainEvent
	ReplyID       uuid.UUID  `json:"reply_id"`
	QnaID         uuid.UUID  `json:"qna_id"`
	ParentReplyID *uuid.UUID `json:"parent_reply_id,omitempty"`
	Path          string     `json:"path"`
	Depth         int        `json:"depth"`
	WriterID      uuid.UUID  `json:"writer_id"`
	WriterType    WriterType `json:"writer_type"`
}

// NewQnaReplyCreatedEvent creates a new QnaReplyCreatedEvent
func NewQnaReplyCreatedEvent(r *QnaReply) *QnaReplyCreatedEvent {
	return &QnaReplyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQnaReplyCreated, AggregateTypeQnaReply, r.ID),
		ReplyID:         r.ID,
		QnaID:           r.QnaID,
		ParentReplyID:   r.ParentReplyID,
		Path:            r.Path.String(),
		Depth:           r.Depth(),
		WriterID:        r.Writer.ID,
		WriterType:      r.Writer.Type,
	}
}

// QnaReplyUpdatedEvent is published when a reply is edited
type QnaReplyUpdatedEvent struct {
	shared.BaseDomainEvent
	ReplyID uuid.UUID `json:"reply_id"`
	QnaID   uuid.UUID `json:"qna_id"`
}

// NewQnaReplyUpdatedEvent creates a new QnaReplyUpdatedEvent
func NewQnaReplyUpdatedEvent(r *QnaReply) *QnaReplyUpdatedEvent {
	return &QnaReplyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQnaReplyUpdated, AggregateTypeQnaReply, r.ID),
		ReplyID:         r.ID,
		QnaID:           r.QnaID,
	}
}

// QnaReplyDeletedEvent is published when a reply is soft-deleted
type QnaReplyDeletedEvent struct {
	shared.BaseDomainEvent
	ReplyID uuid.UUID `json:"reply_id"`
	QnaID   uuid.UUID `json:"qna_id"`
	Path    string    `json:"path"`
}

// NewQnaReplyDeletedEvent creates a new QnaReplyDeletedEvent
func NewQnaReplyDeletedEvent(r *QnaReply) *QnaReplyDeletedEvent {
	return &QnaReplyDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQnaReplyDeleted, AggregateTypeQnaReply, r.ID),
		ReplyID:         r.ID,
		QnaID:           r.QnaID,
		Path:            r.Path.String(),
	}
}
