package handler

import (
	"net/http"

	stat "bibliomaniacs.org/bookreviews/internal/modules/stat/service"
	"bibliomaniacs.org/bookreviews/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	service stat.StatService
}

func NewStatHandler(service stat.StatService) *StatHandler {
	return &StatHandler{service: service}
}

func (h *StatHandler) Overview(c *gin.Context) {
	overview, err := h.service.GetOverview(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
