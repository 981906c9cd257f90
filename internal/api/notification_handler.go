package api

import (
	"net/http"
	"strconv"

	"domain-locker/internal/domain"
	"domain-locker/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Notifications *service.NotificationService
}

func NewNotificationHandler(n *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := domain.NotificationFilter{
		UnreadOnly: c.Query("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	}

	items, err := h.Notifications.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.Notifications.CountUnread(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// SetRead marks one notification read, or unread with {"read": false}.
func (h *NotificationHandler) SetRead(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	req := struct {
		Read *bool `json:"read"`
	}{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	read := req.Read == nil || *req.Read

	if err := h.Notifications.SetRead(c.Request.Context(), currentUser(c), id, read); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification updated", "read": read})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked read", "total": n})
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Notifications.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
