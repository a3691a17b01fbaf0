package qna

import (
	"time"

	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
)

// Viewer is the caller on whose behalf a read or write is made
type Viewer struct {
	ID   uuid.UUID
	Type qna.WriterType
	Name string
}

// Writer converts the viewer into a domain writer
func (v Viewer) Writer() (qna.Writer, error) {
	return qna.NewWriter(v.ID, v.Type, v.Name)
}

// IsStaff reports whether the viewer answers on behalf of the shop
func (v Viewer) IsStaff() bool {
	return v.Type == qna.WriterTypeSeller || v.Type == qna.WriterTypeAdmin
}

// QnaImageInput is one image reference supplied by the client
type QnaImageInput struct {
	URL          string `json:"url" binding:"required,url,max=500"`
	DisplayOrder int    `json:"display_order" binding:"min=0"`
}

// CreateProductQnaRequest asks a question about a product group
type CreateProductQnaRequest struct {
	DetailType string `json:"detail_type" binding:"required,oneof=SIZE SHIPMENT RESTOCK ETC"`
	TargetID   int64  `json:"target_id" binding:"required,gt=0"`
	Title      string `json:"title" binding:"required,min=1,max=100"`
	Content    string `json:"content" binding:"required,min=1,max=500"`
	Secret     bool   `json:"secret"`
}

// CreateOrderQnaRequest asks a question about an order
type CreateOrderQnaRequest struct {
	DetailType string          `json:"detail_type" binding:"required,oneof=ORDER SHIPMENT CANCEL EXCHANGE REFUND ETC"`
	TargetID   int64           `json:"target_id" binding:"required,gt=0"`
	Title      string          `json:"title" binding:"required,min=1,max=100"`
	Content    string          `json:"content" binding:"required,min=1,max=500"`
	Secret     bool            `json:"secret"`
	Images     []QnaImageInput `json:"images" binding:"omitempty,max=3,dive"`
}

// UpdateQnaContentRequest edits a question
type UpdateQnaContentRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=100"`
	Content string `json:"content" binding:"required,min=1,max=500"`
}

// AddQnaImagesRequest attaches images to an order question
type AddQnaImagesRequest struct {
	Images []QnaImageInput `json:"images" binding:"required,min=1,max=3,dive"`
}

// QnaListFilter narrows a question listing
type QnaListFilter struct {
	Type     string `form:"type" binding:"omitempty,oneof=PRODUCT ORDER"`
	TargetID int64  `form:"target_id" binding:"omitempty,gt=0"`
	WriterID string `form:"writer_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=OPEN CLOSED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Paging returns the page and page size the listing is served with
func (f QnaListFilter) Paging() (page, pageSize int) {
	return qna.QnaFilter{Page: f.Page, PageSize: f.PageSize}.Paging()
}

// CreateReplyRequest adds a reply, under ParentReplyID when set
type CreateReplyRequest struct {
	ParentReplyID *uuid.UUID `json:"parent_reply_id"`
	Content       string     `json:"content" binding:"required,min=1,max=1000"`
}

// UpdateReplyRequest edits a reply
type UpdateReplyRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// WriterResponse is a writer as shown to the viewer
type WriterResponse struct {
	ID   uuid.UUID `json:"id"`
	Type string    `json:"type"`
	Name string    `json:"name"`
}

// QnaImageResponse is an image in API responses
type QnaImageResponse struct {
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
}

// QnaResponse represents a question in API responses
type QnaResponse struct {
	ID           uuid.UUID          `json:"id"`
	Type         string             `json:"type"`
	DetailType   string             `json:"detail_type"`
	TargetID     int64              `json:"target_id"`
	Writer       WriterResponse     `json:"writer"`
	Title        string             `json:"title"`
	Content      string             `json:"content"`
	Secret       bool               `json:"secret"`
	Restricted   bool               `json:"restricted"`
	Images       []QnaImageResponse `json:"images"`
	Status       string             `json:"status"`
	ReplyCount   int                `json:"reply_count"`
	CanBeReplied bool               `json:"can_be_replied"`
	Version      int                `json:"version"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ReplyResponse represents a reply in API responses
type ReplyResponse struct {
	ID            uuid.UUID      `json:"id"`
	QnaID         uuid.UUID      `json:"qna_id"`
	ParentReplyID *uuid.UUID     `json:"parent_reply_id,omitempty"`
	Path          string         `json:"path"`
	ParentPath    string         `json:"parent_path,omitempty"`
	Depth         int            `json:"depth"`
	Writer        WriterResponse `json:"writer"`
	Content       string         `json:"content"`
	Restricted    bool           `json:"restricted"`
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ToQnaResponse converts a Qna as seen by viewer, applying masking
func ToQnaResponse(q *qna.Qna, viewer Viewer) *QnaResponse {
	view := MaskQna(q, viewer)
	images := make([]QnaImageResponse, 0, len(view.Images))
	for _, img := range view.Images {
		images = append(images, QnaImageResponse{URL: img.URL, DisplayOrder: img.DisplayOrder})
	}
	return &QnaResponse{
		ID:         q.ID,
		Type:       string(q.Type),
		DetailType: string(q.DetailType),
		TargetID:   q.TargetID,
		Writer: WriterResponse{
			ID:   q.Writer.ID,
			Type: string(q.Writer.Type),
			Name: view.WriterName,
		},
		Title:        view.Title,
		Content:      view.Body,
		Secret:       q.Secret,
		Restricted:   view.Restricted,
		Images:       images,
		Status:       string(q.Status),
		ReplyCount:   q.ReplyCount,
		CanBeReplied: q.CanBeReplied(),
		Version:      q.GetVersion(),
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// ToQnaResponses converts a list of Qnas as seen by viewer
func ToQnaResponses(qnas []*qna.Qna, viewer Viewer) []QnaResponse {
	out := make([]QnaResponse, len(qnas))
	for i, q := range qnas {
		out[i] = *ToQnaResponse(q, viewer)
	}
	return out
}

// ToReplyResponse converts a reply as seen by viewer
func ToReplyResponse(r *qna.QnaReply, viewer Viewer) *ReplyResponse {
	parent, _ := r.Path.Parent()
	return &ReplyResponse{
		ID:            r.ID,
		QnaID:         r.QnaID,
		ParentReplyID: r.ParentReplyID,
		Path:          r.Path.String(),
		ParentPath:    parent.String(),
		Depth:         r.Depth(),
		Writer: WriterResponse{
			ID:   r.Writer.ID,
			Type: string(r.Writer.Type),
			Name: MaskWriterName(r.Writer, viewer),
		},
		Content:   r.Content,
		Version:   r.GetVersion(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toDomainImages(in []QnaImageInput) []qna.QnaImage {
	out := make([]qna.QnaImage, len(in))
	for i, img := range in {
		order := img.DisplayOrder
		if order == 0 {
			order = i + 1
		}
		out[i] = qna.QnaImage{URL: img.URL, DisplayOrder: order}
	}
	return out
}
