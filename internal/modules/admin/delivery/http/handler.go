package handler

import (
	"net/http"

	admin "bibliomaniacs.org/bookreviews/internal/modules/admin/service"
	"bibliomaniacs.org/bookreviews/pkg/response"
	"bibliomaniacs.org/bookreviews/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service admin.AdminService
}

func NewAdminHandler(service admin.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) List(c *gin.Context) {
	emails, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": emails})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AdminHandler) Add(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.Add(c.Request.Context(), req.Email); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "admin added"})
}

func (h *AdminHandler) Remove(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.Remove(c.Request.Context(), req.Email); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "admin removed"})
}
