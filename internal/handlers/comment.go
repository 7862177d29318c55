package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// CommentHandler serves task discussion threads.
type CommentHandler struct {
	commentService *services.CommentService
	log            logrus.FieldLogger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService *services.CommentService, log logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		log:            log,
	}
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=10000"`
}

// ListComments returns the live comments of a task, oldest first.
func (h *CommentHandler) ListComments(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		respondError(c, h.log, errMissingContext, "task not found in context")
		return
	}

	comments, err := h.commentService.ListComments(c.Request.Context(), middleware.GetCaller(c), task.ID)
	if err != nil {
		respondError(c, h.log, err, "failed to list comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": dto.ToCommentDTOs(comments),
	})
}

// AddComment posts a comment on a task.
func (h *CommentHandler) AddComment(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		respondError(c, h.log, errMissingContext, "task not found in context")
		return
	}

	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), middleware.GetCaller(c), task.ID, req.Text)
	if err != nil {
		respondError(c, h.log, err, "failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// EditComment replaces the text of the caller's comment.
func (h *CommentHandler) EditComment(c *gin.Context) {
	commentID, ok := middleware.ParseIDParam(c, "id", "Invalid comment ID")
	if !ok {
		return
	}

	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.EditComment(c.Request.Context(), middleware.GetCaller(c), commentID, req.Text)
	if err != nil {
		respondError(c, h.log, err, "failed to edit comment")
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment))
}

// DeleteComment hides the caller's comment.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := middleware.ParseIDParam(c, "id", "Invalid comment ID")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), middleware.GetCaller(c), commentID); err != nil {
		respondError(c, h.log, err, "failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}
