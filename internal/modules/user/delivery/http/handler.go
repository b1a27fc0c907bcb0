package handler

import (
	"net/http"

	"bibliomaniacs.org/bookreviews/internal/entity"
	"bibliomaniacs.org/bookreviews/internal/modules/user/dto"
	user "bibliomaniacs.org/bookreviews/internal/modules/user/service"
	"bibliomaniacs.org/bookreviews/pkg/response"
	"bibliomaniacs.org/bookreviews/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service user.AuthService
}

func NewAuthHandler(service user.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Role reports the caller's effective role as resolved for this request.
func (h *AuthHandler) Role(c *gin.Context) {
	role, exists := c.Get("user_role")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"role": entity.RoleNoAccount})
		return
	}

	c.JSON(http.StatusOK, gin.H{"role": role})
}

func (h *AuthHandler) UIDByEmail(c *gin.Context) {
	var req dto.UIDByEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	uid, err := h.service.UIDByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UIDByEmailResponse{UID: uid.String()})
}
