package handler

import (
	"net/http"

	maildraft "bibliomaniacs.org/bookreviews/internal/modules/maildraft/service"
	"bibliomaniacs.org/bookreviews/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DraftHandler struct {
	service maildraft.DraftService
	from    string
}

func NewDraftHandler(service maildraft.DraftService, from string) *DraftHandler {
	return &DraftHandler{
		service: service,
		from:    from,
	}
}

// GetDraft regenerates the status email for a processed review. With
// ?format=mime the response is the complete RFC 822 message instead of the
// JSON draft, ready to paste into a mail client.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	draft, err := h.service.GenerateByID(c.Request.Context(), reviewID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if c.Query("format") == "mime" {
		raw, err := draft.MIME(h.from)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.Data(http.StatusOK, "message/rfc822", raw)
		return
	}

	c.JSON(http.StatusOK, gin.H{"email_draft": draft})
}

func (h *DraftHandler) MarkSent(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	if err := h.service.MarkSent(c.Request.Context(), reviewID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "confirmation email marked as sent"})
}
