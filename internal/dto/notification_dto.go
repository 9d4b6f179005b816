package dto

import (
	"time"

	"studyverse/internal/notify"
)

// NotificationResponse: one feed entry, newest first in list responses
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// NotificationListResponse: the feed plus its unread count
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// SendNotificationRequest: payload for pushing an announcement. Addressed
// to one student by email, or to every student when Broadcast is set.
type SendNotificationRequest struct {
	Email     string `json:"email"`
	Broadcast bool   `json:"broadcast"`
	Title     string `json:"title" binding:"required,max=200"`
	Message   string `json:"message" binding:"required,max=2000"`
	Kind      string `json:"kind" binding:"omitempty,oneof=info success warning error"`
}

func NewNotificationResponse(n notify.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Kind:      n.Kind,
		Timestamp: n.Timestamp,
		Read:      n.Read,
	}
}

func NewNotificationListResponse(list []notify.Notification, unread int) NotificationListResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NewNotificationResponse(n))
	}
	return NotificationListResponse{Notifications: out, UnreadCount: unread}
}
