package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appqna "github.com/setof/qna-backend/internal/application/qna"
)

// ReplyUseCases is the reply side of the application layer
type ReplyUseCases interface {
	CreateReply(ctx context.Context, viewer appqna.Viewer, qnaID uuid.UUID, req appqna.CreateReplyRequest) (*appqna.ReplyResponse, error)
	ListReplies(ctx context.Context, viewer appqna.Viewer, qnaID uuid.UUID) ([]appqna.ReplyResponse, error)
	UpdateReply(ctx context.Context, viewer appqna.Viewer, qnaID, replyID uuid.UUID, req appqna.UpdateReplyRequest) (*appqna.ReplyResponse, error)
	DeleteReply(ctx context.Context, viewer appqna.Viewer, qnaID, replyID uuid.UUID) error
}

// ReplyHandler handles reply thread endpoints
type ReplyHandler struct {
	BaseHandler
	replies ReplyUseCases
}

// NewReplyHandler creates a new ReplyHandler
func NewReplyHandler(replies ReplyUseCases) *ReplyHandler {
	return &ReplyHandler{replies: replies}
}

// Create godoc
// @Summary      Reply to a question
// @Description  Without parent_reply_id the reply starts a new root thread;
// @Description  otherwise it is appended under that reply.
// @Tags         replies
// @Accept       json
// @Produce      json
// @Param        id path string true "Question ID"
// @Param        X-User-ID header string true "Caller ID"
// @Param        X-User-Role header string true "CUSTOMER, SELLER or ADMIN"
// @Param        request body appqna.CreateReplyRequest true "Reply"
// @Success      201 {object} ReplyAPIResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /api/v1/qnas/{id}/replies [post]
func (h *ReplyHandler) Create(c *gin.Context) {
	qnaID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appqna.CreateReplyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.replies.CreateReply(c.Request.Context(), h.viewer(c), qnaID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List a question's replies
// @Description  Active replies in thread order
// @Tags         replies
// @Produce      json
// @Param        id path string true "Question ID"
// @Success      200 {object} ReplyListAPIResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/qnas/{id}/replies [get]
func (h *ReplyHandler) List(c *gin.Context) {
	qnaID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.replies.ListReplies(c.Request.Context(), h.viewer(c), qnaID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Edit a reply
// @Tags         replies
// @Accept       json
// @Produce      json
// @Param        id path string true "Question ID"
// @Param        replyId path string true "Reply ID"
// @Param        request body appqna.UpdateReplyRequest true "New content"
// @Success      200 {object} ReplyAPIResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/qnas/{id}/replies/{replyId} [patch]
func (h *ReplyHandler) Update(c *gin.Context) {
	qnaID, replyID, ok := h.replyIDs(c)
	if !ok {
		return
	}
	var req appqna.UpdateReplyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.replies.UpdateReply(c.Request.Context(), h.viewer(c), qnaID, replyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a reply
// @Description  The reply keeps its path; children stay addressable.
// @Tags         replies
// @Param        id path string true "Question ID"
// @Param        replyId path string true "Reply ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/qnas/{id}/replies/{replyId} [delete]
func (h *ReplyHandler) Delete(c *gin.Context) {
	qnaID, replyID, ok := h.replyIDs(c)
	if !ok {
		return
	}
	if err := h.replies.DeleteReply(c.Request.Context(), h.viewer(c), qnaID, replyID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ReplyHandler) replyIDs(c *gin.Context) (qnaID, replyID uuid.UUID, ok bool) {
	if qnaID, ok = h.pathUUID(c, "id"); !ok {
		return
	}
	replyID, ok = h.pathUUID(c, "replyId")
	return
}
