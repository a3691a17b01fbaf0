package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QnaModel is the persistence model for the Qna aggregate.
type QnaModel struct {
	AggregateModel
	QnaType    qna.QnaType                       `gorm:"column:qna_type;type:varchar(20);not null;index:idx_qnas_target,priority:1"`
	DetailType qna.QnaDetailType                 `gorm:"type:varchar(20);not null"`
	TargetID   int64                             `gorm:"not null;index:idx_qnas_target,priority:2"`
	WriterID   uuid.UUID                         `gorm:"type:uuid;not null;index"`
	WriterType qna.WriterType                    `gorm:"type:varchar(20);not null"`
	WriterName string                            `gorm:"type:varchar(50);not null"`
	Title      string                            `gorm:"type:varchar(100);not null"`
	Body       string                            `gorm:"type:varchar(500);not null"`
	Secret     bool                              `gorm:"not null;default:false"`
	Images     datatypes.JSONSlice[qna.QnaImage] `gorm:"not null"`
	Status     qna.QnaStatus                     `gorm:"type:varchar(20);not null;default:'OPEN'"`
	ReplyCount int                               `gorm:"not null;default:0"`
	DeletedAt  gorm.DeletedAt                    `gorm:"index"`
}

// TableName returns the table name for GORM
func (QnaModel) TableName() string {
	return "qnas"
}

// ToDomain converts the persistence model to a domain Qna
func (m *QnaModel) ToDomain() *qna.Qna {
	images := make([]qna.QnaImage, len(m.Images))
	copy(images, m.Images)

	return qna.ReconstituteQna(
		m.ToDomainAggregateRoot(),
		m.QnaType,
		m.DetailType,
		m.TargetID,
		qna.Writer{ID: m.WriterID, Type: m.WriterType, Name: m.WriterName},
		qna.Content{Title: m.Title, Body: m.Body},
		m.Secret,
		images,
		m.Status,
		m.ReplyCount,
		deletedAtToDomain(m.DeletedAt),
	)
}

// FromDomain populates the persistence model from a domain Qna
func (m *QnaModel) FromDomain(q *qna.Qna) {
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	m.QnaType = q.Type
	m.DetailType = q.DetailType
	m.TargetID = q.TargetID
	m.WriterID = q.Writer.ID
	m.WriterType = q.Writer.Type
	m.WriterName = q.Writer.Name
	m.Title = q.Content.Title
	m.Body = q.Content.Body
	m.Secret = q.Secret
	m.Images = datatypes.JSONSlice[qna.QnaImage](append([]qna.QnaImage{}, q.Images...))
	m.Status = q.Status
	m.ReplyCount = q.ReplyCount
	m.DeletedAt = deletedAtFromDomain(q.DeletedAt)
}

// QnaModelFromDomain creates a persistence model from a domain Qna
func QnaModelFromDomain(q *qna.Qna) *QnaModel {
	m := &QnaModel{}
	m.FromDomain(q)
	return m
}

// QnaReplyModel is the persistence model for the QnaReply aggregate.
// (qna_id, path) is unique across active and deleted replies so a path is
// never issued twice; (qna_id, parent_path, path) serves the max-path reads.
type QnaReplyModel struct {
	AggregateModel
	QnaID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_qna_replies_qna_path,priority:1;index:idx_qna_replies_scope,priority:1"`
	ParentReplyID *uuid.UUID     `gorm:"type:uuid;index"`
	ParentPath    string         `gorm:"type:varchar(23);not null;default:'';index:idx_qna_replies_scope,priority:2"`
	Path          string         `gorm:"type:varchar(23);not null;uniqueIndex:uk_qna_replies_qna_path,priority:2;index:idx_qna_replies_scope,priority:3"`
	Depth         int            `gorm:"type:smallint;not null"`
	WriterID      uuid.UUID      `gorm:"type:uuid;not null"`
	WriterType    qna.WriterType `gorm:"type:varchar(20);not null"`
	WriterName    string         `gorm:"type:varchar(50);not null"`
	Content       string         `gorm:"type:varchar(1000);not null"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (QnaReplyModel) TableName() string {
	return "qna_replies"
}

// ToDomain converts the persistence model to a domain QnaReply
func (m *QnaReplyModel) ToDomain() *qna.QnaReply {
	return qna.ReconstituteQnaReply(
		m.ToDomainAggregateRoot(),
		m.QnaID,
		m.ParentReplyID,
		qna.Writer{ID: m.WriterID, Type: m.WriterType, Name: m.WriterName},
		m.Content,
		qna.Path(m.Path),
		deletedAtToDomain(m.DeletedAt),
	)
}

// FromDomain populates the persistence model from a domain QnaReply
func (m *QnaReplyModel) FromDomain(r *qna.QnaReply) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.QnaID = r.QnaID
	m.ParentReplyID = r.ParentReplyID
	m.Path = r.Path.String()
	m.ParentPath = ""
	if parent, ok := r.Path.Parent(); ok {
		m.ParentPath = parent.String()
	}
	m.Depth = r.Path.Depth()
	m.WriterID = r.Writer.ID
	m.WriterType = r.Writer.Type
	m.WriterName = r.Writer.Name
	m.Content = r.Content
	m.DeletedAt = deletedAtFromDomain(r.DeletedAt)
}

// QnaReplyModelFromDomain creates a persistence model from a domain QnaReply
func QnaReplyModelFromDomain(r *qna.QnaReply) *QnaReplyModel {
	m := &QnaReplyModel{}
	m.FromDomain(r)
	return m
}

func deletedAtToDomain(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func deletedAtFromDomain(t *time.Time) gorm.DeletedAt {
	if t == nil {
		return gorm.DeletedAt{}
	}
	return gorm.DeletedAt{Time: *t, Valid: true}
}
