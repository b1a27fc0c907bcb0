package handler

import (
	"net/http"

	reviewDto "bibliomaniacs.org/bookreviews/internal/modules/review/dto"
	review "bibliomaniacs.org/bookreviews/internal/modules/review/service"
	"bibliomaniacs.org/bookreviews/pkg/response"
	"bibliomaniacs.org/bookreviews/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	service  review.ReviewService
	workflow *review.TransitionWorkflow
}

func NewReviewHandler(service review.ReviewService, workflow *review.TransitionWorkflow) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		workflow: workflow,
	}
}

func (h *ReviewHandler) Submit(c *gin.Context) {
	var req reviewDto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	created, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Review submitted successfully",
		"id":       created.ID,
		"entry_id": created.EntryID,
	})
}

func (h *ReviewHandler) List(c *gin.Context) {
	var filter reviewDto.ReviewFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	reviews, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) ListMine(c *gin.Context) {
	email, err := response.GetUserEmail(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ListMine(c.Request.Context(), email)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) UpdateOwn(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	var req reviewDto.UpdateOwnReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	email, err := response.GetUserEmail(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.UpdateOwn(c.Request.Context(), email, reviewID, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review updated successfully"})
}

func (h *ReviewHandler) DeleteOwn(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	email, err := response.GetUserEmail(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteOwn(c.Request.Context(), email, reviewID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review deleted successfully"})
}

func (h *ReviewHandler) UpdateAdminFields(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	var req reviewDto.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.UpdateAdminFields(c.Request.Context(), reviewID, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully"})
}

func (h *ReviewHandler) BulkImport(c *gin.Context) {
	var req reviewDto.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.BulkImport(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status := http.StatusCreated
	if len(resp.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, resp)
}

func (h *ReviewHandler) StageTransition(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	var req reviewDto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	stage, err := h.workflow.Stage(c.Request.Context(), reviewID, req.Target)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staged": stage})
}

func (h *ReviewHandler) ConfirmTransition(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	result, err := h.workflow.Confirm(c.Request.Context(), reviewID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) CancelTransition(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	if err := h.workflow.Cancel(reviewID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "transition cancelled"})
}

func (h *ReviewHandler) ClearCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}
