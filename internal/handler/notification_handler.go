package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyverse/internal/dto"
	"studyverse/internal/notify"
)

type NotificationHandler struct {
	store *notify.Store
}

func NewNotificationHandler(store *notify.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List returns the user's feed, most recent first, with the unread count.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString("userID")
	c.JSON(http.StatusOK, dto.NewNotificationListResponse(
		h.store.List(userID),
		h.store.UnreadCount(userID),
	))
}

// MarkAsRead flags one notification as read. Unknown ids succeed quietly so
// a stale client cannot error out.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	h.store.MarkAsRead(c.GetString("userID"), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

// ClearAll empties the user's feed.
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	h.store.ClearAll(c.GetString("userID"))
	c.JSON(http.StatusOK, gin.H{"message": "notifications cleared"})
}

// UnreadCount returns just the badge number, for cheap polling.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"unread_count": h.store.UnreadCount(c.GetString("userID"))})
}
