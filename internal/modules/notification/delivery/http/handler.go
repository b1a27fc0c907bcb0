package handler

import (
	"fmt"
	"log"
	"net/http"

	"bibliomaniacs.org/bookreviews/internal/entity"
	notification "bibliomaniacs.org/bookreviews/internal/modules/notification/service"
	"bibliomaniacs.org/bookreviews/pkg/response"
	"bibliomaniacs.org/bookreviews/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type NotificationHandler struct {
	service     notification.Dispatcher
	redisClient *redis.Client
	senderName  string
	upgrader    websocket.Upgrader
}

func NewNotificationHandler(service notification.Dispatcher, redisClient *redis.Client, senderName string) *NotificationHandler {
	return &NotificationHandler{
		service:     service,
		redisClient: redisClient,
		senderName:  senderName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *NotificationHandler) GetInbox(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	inbox, err := h.service.Inbox(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inbox})
}

type clearRequest struct {
	Type string `json:"type" binding:"required,oneof=new_review review_status book_of_the_week"`
}

// ClearType is invoked by a screen's entry lifecycle once the notifications
// of its type have served their purpose.
func (h *NotificationHandler) ClearType(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.ClearType(c.Request.Context(), userID, req.Type); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notifications cleared"})
}

type dispatchRequest struct {
	Type       string   `json:"type" binding:"required,oneof=new_review review_status book_of_the_week"`
	Sender     string   `json:"sender"`
	Recipients []string `json:"recipients"`
	Emails     []string `json:"emails"`
	Book       string   `json:"book"`
	Status     string   `json:"status"`
}

func (h *NotificationHandler) Dispatch(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if len(req.Recipients) == 0 && len(req.Emails) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one recipient uid or email is required"})
		return
	}

	sender := req.Sender
	if sender == "" {
		sender = h.senderName
	}

	recipients := make([]uuid.UUID, 0, len(req.Recipients))
	for _, raw := range req.Recipients {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid recipient uid: %s", raw)})
			return
		}
		recipients = append(recipients, id)
	}

	ctx := c.Request.Context()
	if len(recipients) > 0 {
		if err := h.service.Notify(ctx, req.Type, sender, recipients, req.Book, req.Status); err != nil {
			response.ResponseError(c, err)
			return
		}
	}
	if len(req.Emails) > 0 {
		if err := h.service.NotifyByEmail(ctx, req.Type, sender, req.Emails, req.Book, req.Status); err != nil {
			response.ResponseError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "notifications dispatched"})
}

type broadcastRequest struct {
	Book string `json:"book" binding:"required"`
}

func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.NotifyAll(c.Request.Context(), entity.NotifBookOfTheWeek, h.senderName, req.Book); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "broadcast dispatched"})
}

// HandleWebSocket streams the caller's notifications live by subscribing to
// their Redis channel.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	channel := fmt.Sprintf("user_notifications:%s", userID.String())
	pubsub := h.redisClient.Subscribe(c.Request.Context(), channel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
			return
		}
	}
}
