package handlers

import (
	"net/http"
	"time"

	"campusbus/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type broadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Target  struct {
		Kind string  `json:"kind"`
		Role string  `json:"role"`
		IDs  []int64 `json:"ids"`
	} `json:"target"`
}

// POST /api/notifications/broadcast
//
// The target resolves to concrete recipients at broadcast time; each gets an
// independent unread row.
func BroadcastNotification(c *gin.Context) {
	var req broadcastRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	target := models.BroadcastTarget{
		Kind: req.Target.Kind,
		Role: req.Target.Role,
		IDs:  req.Target.IDs,
	}

	created, err := notificationService(c).Broadcast(req.Title, req.Message, req.Type, target, time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "broadcast sent", "created": created})
}

// GET /api/notifications?userId
func GetNotifications(c *gin.Context) {
	userID := queryInt64(c, "userId")
	if userID <= 0 {
		RespondError(c, http.StatusBadRequest, "userId query param required", nil)
		return
	}

	out, err := notificationService(c).ListByUser(userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out, "count": len(out)})
}

// PUT /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	setNotificationRead(c, true)
}

// PUT /api/notifications/:id/unread
func MarkNotificationUnread(c *gin.Context) {
	setNotificationRead(c, false)
}

func setNotificationRead(c *gin.Context, read bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := notificationService(c).SetRead(id, read); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification updated"})
}

// DELETE /api/notifications/:id
func DeleteNotification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := notificationService(c).Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// GET /api/users/:id/notifications/unread-count
func GetUnreadCount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	n, err := notificationService(c).UnreadCount(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": id, "unread": n})
}

// POST /api/users/:id/notifications/mark-all-read
func MarkAllNotificationsRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	n, err := notificationService(c).MarkAllRead(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifications marked read", "updated": n})
}
