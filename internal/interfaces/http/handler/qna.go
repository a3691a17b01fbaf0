package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appqna "github.com/setof/qna-backend/internal/application/qna"
)

// QnaUseCases is the question side of the application layer
type QnaUseCases interface {
	CreateProductQna(ctx context.Context, viewer appqna.Viewer, req appqna.CreateProductQnaRequest) (*appqna.QnaResponse, error)
	CreateOrderQna(ctx context.Context, viewer appqna.Viewer, req appqna.CreateOrderQnaRequest) (*appqna.QnaResponse, error)
	GetByID(ctx context.Context, viewer appqna.Viewer, id uuid.UUID) (*appqna.QnaResponse, error)
	List(ctx context.Context, viewer appqna.Viewer, filter appqna.QnaListFilter) ([]appqna.QnaResponse, int64, error)
	UpdateContent(ctx context.Context, viewer appqna.Viewer, id uuid.UUID, req appqna.UpdateQnaContentRequest) (*appqna.QnaResponse, error)
	AddImages(ctx context.Context, viewer appqna.Viewer, id uuid.UUID, req appqna.AddQnaImagesRequest) (*appqna.QnaResponse, error)
	Close(ctx context.Context, viewer appqna.Viewer, id uuid.UUID) (*appqna.QnaResponse, error)
	Delete(ctx context.Context, viewer appqna.Viewer, id uuid.UUID) error
}

// QnaHandler handles question endpoints
type QnaHandler struct {
	BaseHandler
	qnas QnaUseCases
}

// NewQnaHandler creates a new QnaHandler
func NewQnaHandler(qnas QnaUseCases) *QnaHandler {
	return &QnaHandler{qnas: qnas}
}

// CreateProductQna godoc
// @Summary      Ask a product question
// @Tags         qnas
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "Caller ID"
// @Param        X-User-Role header string true "CUSTOMER, SELLER or ADMIN"
// @Param        request body appqna.CreateProductQnaRequest true "Question"
// @Success      201 {object} QnaAPIResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/qnas/product [post]
func (h *QnaHandler) CreateProductQna(c *gin.Context) {
	var req appqna.CreateProductQnaRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.qnas.CreateProductQna(c.Request.Context(), h.viewer(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateOrderQna godoc
// @Summary      Ask an order question
// @Description  Order questions may carry up to three images
// @Tags         qnas
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "Caller ID"
// @Param        X-User-Role header string true "CUSTOMER, SELLER or ADMIN"
// @Param        request body appqna.CreateOrderQnaRequest true "Question"
// @Success      201 {object} QnaAPIResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/v1/qnas/order [post]
func (h *QnaHandler) CreateOrderQna(c *gin.Context) {
	var req appqna.CreateOrderQnaRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.qnas.CreateOrderQna(c.Request.Context(), h.viewer(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List questions
// @Description  Secret questions are masked unless the caller wrote them
// @Tags         qnas
// @Produce      json
// @Param        type query string false "PRODUCT or ORDER"
// @Param        target_id query int false "Product group or order ID"
// @Param        writer_id query string false "Writer ID"
// @Param        status query string false "OPEN or CLOSED"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} QnaListAPIResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/qnas [get]
func (h *QnaHandler) List(c *gin.Context) {
	var filter appqna.QnaListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.qnas.List(c.Request.Context(), h.viewer(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Paging()
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID godoc
// @Summary      Get a question
// @Tags         qnas
// @Produce      json
// @Param        id path string true "Question ID"
// @Success      200 {object} QnaAPIResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/qnas/{id} [get]
func (h *QnaHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.qnas.GetByID(c.Request.Context(), h.viewer(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateContent godoc
// @Summary      Edit a question
// @Description  Only the writer may edit an open question
// @Tags         qnas
// @Accept       json
// @Produce      json
// @Param        id path string true "Question ID"
// @Param        request body appqna.UpdateQnaContentRequest true "New content"
// @Success      200 {object} QnaAPIResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/v1/qnas/{id}/content [patch]
func (h *QnaHandler) UpdateContent(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appqna.UpdateQnaContentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.qnas.UpdateContent(c.Request.Context(), h.viewer(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddImages godoc
// @Summary      Attach images to an order question
// @Tags         qnas
// @Accept       json
// @Produce      json
// @Param        id path string true "Question ID"
// @Param        request body appqna.AddQnaImagesRequest true "Images"
// @Success      200 {object} QnaAPIResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/v1/qnas/{id}/images [post]
func (h *QnaHandler) AddImages(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appqna.AddQnaImagesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.qnas.AddImages(c.Request.Context(), h.viewer(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Close godoc
// @Summary      Close a question
// @Description  A closed question accepts no further replies
// @Tags         qnas
// @Produce      json
// @Param        id path string true "Question ID"
// @Success      200 {object} QnaAPIResponse
// @Failure      422 {object} ErrorResponse
// @Router       /api/v1/qnas/{id}/close [patch]
func (h *QnaHandler) Close(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.qnas.Close(c.Request.Context(), h.viewer(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a question
// @Tags         qnas
// @Param        id path string true "Question ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/qnas/{id} [delete]
func (h *QnaHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.qnas.Delete(c.Request.Context(), h.viewer(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
