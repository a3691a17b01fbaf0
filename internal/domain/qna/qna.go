// Package qna contains the Q&A bounded context: questions and their threaded
// replies, ordered by materialized paths.
package qna

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/shared"
)

// MaxImageCount is the maximum number of images an order Qna may carry
const MaxImageCount = 3

const (
	maxTitleLength   = 100
	maxContentLength = 500
	maxWriterName    = 50
	maxImageURL      = 500
)

// QnaType identifies what a question is about
type QnaType string

const (
	QnaTypeProduct QnaType = "PRODUCT"
	QnaTypeOrder   QnaType = "ORDER"
)

// IsValid reports whether t is a known type
func (t QnaType) IsValid() bool {
	return t == QnaTypeProduct || t == QnaTypeOrder
}

// QnaDetailType narrows a question within its type
type QnaDetailType string

const (
	DetailTypeSize     QnaDetailType = "SIZE"
	DetailTypeShipment QnaDetailType = "SHIPMENT"
	DetailTypeRestock  QnaDetailType = "RESTOCK"
	DetailTypeOrder    QnaDetailType = "ORDER"
	DetailTypeCancel   QnaDetailType = "CANCEL"
	DetailTypeExchange QnaDetailType = "EXCHANGE"
	DetailTypeRefund   QnaDetailType = "REFUND"
	DetailTypeEtc      QnaDetailType = "ETC"
)

var detailTypesByQnaType = map[QnaType][]QnaDetailType{
	QnaTypeProduct: {DetailTypeSize, DetailTypeShipment, DetailTypeRestock, DetailTypeEtc},
	QnaTypeOrder:   {DetailTypeOrder, DetailTypeShipment, DetailTypeCancel, DetailTypeExchange, DetailTypeRefund, DetailTypeEtc},
}

// QnaStatus is the lifecycle state of a Qna. CLOSED is terminal.
type QnaStatus string

const (
	QnaStatusOpen   QnaStatus = "OPEN"
	QnaStatusClosed QnaStatus = "CLOSED"
)

// WriterType is the role a writer acted in
type WriterType string

const (
	WriterTypeCustomer WriterType = "CUSTOMER"
	WriterTypeSeller   WriterType = "SELLER"
	WriterTypeAdmin    WriterType = "ADMIN"
)

// IsValid reports whether w is a known role
func (w WriterType) IsValid() bool {
	switch w {
	case WriterTypeCustomer, WriterTypeSeller, WriterTypeAdmin:
		return true
	}
	return false
}

// Writer identifies who wrote a question or reply
type Writer struct {
	ID   uuid.UUID
	Type WriterType
	Name string
}

// NewWriter validates and builds a Writer
func NewWriter(id uuid.UUID, writerType WriterType, name string) (Writer, error) {
	w := Writer{ID: id, Type: writerType, Name: strings.TrimSpace(name)}
	if err := w.Validate(); err != nil {
		return Writer{}, err
	}
	return w, nil
}

// Validate checks the writer fields
func (w Writer) Validate() error {
	if w.ID == uuid.Nil {
		return ErrInvalidWriter.Errorf("writer id is required")
	}
	if !w.Type.IsValid() {
		return ErrInvalidWriter.Errorf("unknown writer type %q", w.Type)
	}
	if w.Name == "" {
		return ErrInvalidWriter.Errorf("writer name is required")
	}
	if utf8.RuneCountInString(w.Name) > maxWriterName {
		return ErrInvalidWriter.Errorf("writer name cannot exceed %d characters", maxWriterName)
	}
	return nil
}

// Content is the title and body of a question
type Content struct {
	Title string
	Body  string
}

// NewContent validates and builds question content
func NewContent(title, body string) (Content, error) {
	c := Content{Title: strings.TrimSpace(title), Body: strings.TrimSpace(body)}
	if c.Title == "" {
		return Content{}, ErrInvalidContent.Errorf("title cannot be empty")
	}
	if utf8.RuneCountInString(c.Title) > maxTitleLength {
		return Content{}, ErrInvalidContent.Errorf("title cannot exceed %d characters", maxTitleLength)
	}
	if c.Body == "" {
		return Content{}, ErrInvalidContent.Errorf("content cannot be empty")
	}
	if utf8.RuneCountInString(c.Body) > maxContentLength {
		return Content{}, ErrInvalidContent.Errorf("content cannot exceed %d characters", maxContentLength)
	}
	return c, nil
}

// QnaImage is an image attached to an order question
type QnaImage struct {
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
}

func validateImages(images []QnaImage) error {
	for i, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			return ErrInvalidImage.Errorf("image %d has no url", i+1)
		}
		if len(img.URL) > maxImageURL {
			return ErrInvalidImage.Errorf("image %d url cannot exceed %d characters", i+1, maxImageURL)
		}
	}
	return nil
}

// Qna is a customer question attached to a product group or an order.
// Replies hang off it as a tree addressed by materialized paths.
type Qna struct {
	shared.BaseAggregateRoot
	Type       QnaType
	DetailType QnaDetailType
	TargetID   int64
	Writer     Writer
	Content    Content
	Secret     bool
	Images     []QnaImage
	Status     QnaStatus
	ReplyCount int
	DeletedAt  *time.Time
}

// NewProductQna creates an open question about a product group
func NewProductQna(detailType QnaDetailType, targetID int64, writer Writer, content Content, secret bool) (*Qna, error) {
	return newQna(QnaTypeProduct, detailType, targetID, writer, content, secret, nil)
}

// NewOrderQna creates an open question about an order, with up to MaxImageCount images
func NewOrderQna(detailType QnaDetailType, targetID int64, writer Writer, content Content, secret bool, images []QnaImage) (*Qna, error) {
	if len(images) > MaxImageCount {
		return nil, ErrImageLimitExceeded.Errorf("order qna cannot have more than %d images, got %d", MaxImageCount, len(images))
	}
	if err := validateImages(images); err != nil {
		return nil, err
	}
	return newQna(QnaTypeOrder, detailType, targetID, writer, content, secret, images)
}

func newQna(qnaType QnaType, detailType QnaDetailType, targetID int64, writer Writer, content Content, secret bool, images []QnaImage) (*Qna, error) {
	if !slices.Contains(detailTypesByQnaType[qnaType], detailType) {
		return nil, ErrInvalidDetailType.Errorf("detail type %q is not valid for %s qna", detailType, qnaType)
	}
	if targetID <= 0 {
		return nil, shared.ErrInvalidInput.Errorf("target id must be positive")
	}
	if err := writer.Validate(); err != nil {
		return nil, err
	}
	if _, err := NewContent(content.Title, content.Body); err != nil {
		return nil, err
	}

	q := &Qna{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              qnaType,
		DetailType:        detailType,
		TargetID:          targetID,
		Writer:            writer,
		Content:           content,
		Secret:            secret,
		Images:            slices.Clone(images),
		Status:            QnaStatusOpen,
	}
	if q.Images == nil {
		q.Images = []QnaImage{}
	}

	q.AddDomainEvent(NewQnaCreatedEvent(q))

	return q, nil
}

// ReconstituteQna rebuilds a Qna from persisted state without validation
func ReconstituteQna(
	base shared.BaseAggregateRoot,
	qnaType QnaType,
	detailType QnaDetailType,
	targetID int64,
	writer Writer,
	content Content,
	secret bool,
	images []QnaImage,
	status QnaStatus,
	replyCount int,
	deletedAt *time.Time,
) *Qna {
	if images == nil {
		images = []QnaImage{}
	}
	return &Qna{
		BaseAggregateRoot: base,
		Type:              qnaType,
		DetailType:        detailType,
		TargetID:          targetID,
		Writer:            writer,
		Content:           content,
		Secret:            secret,
		Images:            images,
		Status:            status,
		ReplyCount:        replyCount,
		DeletedAt:         deletedAt,
	}
}

// Close moves the Qna to CLOSED. Closing twice is an error.
func (q *Qna) Close() error {
	if q.Status == QnaStatusClosed {
		return ErrQnaAlreadyClosed.Errorf("qna %s is already closed", q.ID)
	}

	q.Status = QnaStatusClosed
	q.UpdatedAt = time.Now()
	q.IncrementVersion()

	q.AddDomainEvent(NewQnaClosedEvent(q))

	return nil
}

// UpdateContent returns a copy of q carrying the new content.
// The receiver is left untouched.
func (q *Qna) UpdateContent(content Content) (*Qna, error) {
	if q.Status == QnaStatusClosed {
		return nil, ErrQnaAlreadyClosed.Errorf("qna %s is closed and cannot be edited", q.ID)
	}
	validated, err := NewContent(content.Title, content.Body)
	if err != nil {
		return nil, err
	}

	updated := q.clone()
	updated.Content = validated
	updated.UpdatedAt = time.Now()
	updated.IncrementVersion()

	updated.AddDomainEvent(NewQnaContentUpdatedEvent(updated))

	return updated, nil
}

// AddImages appends images to an order Qna.
// Product questions never carry images and the total is capped at MaxImageCount.
func (q *Qna) AddImages(images []QnaImage) error {
	if q.Type == QnaTypeProduct {
		return ErrProductQnaImages.Errorf("product qna %s cannot have images", q.ID)
	}
	total := len(q.Images) + len(images)
	if total > MaxImageCount {
		return ErrImageLimitExceeded.Errorf("qna %s would have %d images, max is %d", q.ID, total, MaxImageCount)
	}
	if err := validateImages(images); err != nil {
		return err
	}

	q.Images = append(q.Images, images...)
	q.UpdatedAt = time.Now()
	q.IncrementVersion()

	q.AddDomainEvent(NewQnaImagesAddedEvent(q, len(images)))

	return nil
}

// IncrementReplyCount records one more persisted reply
func (q *Qna) IncrementReplyCount() {
	q.ReplyCount++
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
}

// Delete soft-deletes the Qna. It does not touch Status.
// Deleting an already deleted Qna keeps the original timestamp.
func (q *Qna) Delete() {
	if q.DeletedAt != nil {
		return
	}
	now := time.Now()
	q.DeletedAt = &now
	q.UpdatedAt = now
	q.IncrementVersion()

	q.AddDomainEvent(NewQnaDeletedEvent(q))
}

// IsOpen returns true while the Qna accepts edits and replies
func (q *Qna) IsOpen() bool {
	return q.Status == QnaStatusOpen
}

// IsDeleted returns true once the Qna has been soft-deleted
func (q *Qna) IsDeleted() bool {
	return q.DeletedAt != nil
}

// CanBeReplied returns true if the Qna is open and not deleted
func (q *Qna) CanBeReplied() bool {
	return q.IsOpen() && !q.IsDeleted()
}

// EnsureRepliable returns the error explaining why replies are refused, or nil
func (q *Qna) EnsureRepliable() error {
	if q.Status == QnaStatusClosed {
		return ErrQnaAlreadyClosed.Errorf("qna %s is closed and does not accept replies", q.ID)
	}
	if q.IsDeleted() {
		return ErrQnaNotRepliable.Errorf("qna %s has been deleted", q.ID)
	}
	return nil
}

// IsWrittenBy reports whether writerID authored the question
func (q *Qna) IsWrittenBy(writerID uuid.UUID) bool {
	return q.Writer.ID == writerID
}

func (q *Qna) clone() *Qna {
	c := *q
	c.BaseAggregateRoot = q.BaseAggregateRoot.Clone()
	c.Images = slices.Clone(q.Images)
	if q.DeletedAt != nil {
		t := *q.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
