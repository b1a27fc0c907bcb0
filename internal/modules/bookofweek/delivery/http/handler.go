package handler

import (
	"net/http"

	bookofweek "bibliomaniacs.org/bookreviews/internal/modules/bookofweek/service"
	"bibliomaniacs.org/bookreviews/pkg/response"
	"bibliomaniacs.org/bookreviews/pkg/validator"
	"github.com/gin-gonic/gin"
)

type BookOfWeekHandler struct {
	service bookofweek.BookOfWeekService
}

func NewBookOfWeekHandler(service bookofweek.BookOfWeekService) *BookOfWeekHandler {
	return &BookOfWeekHandler{service: service}
}

func (h *BookOfWeekHandler) Get(c *gin.Context) {
	book, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

type updateRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author" binding:"required"`
}

func (h *BookOfWeekHandler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	book, err := h.service.Update(c.Request.Context(), req.Title, req.Author)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}
