package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"procurement-receipt-api/middleware"
	"procurement-receipt-api/models"
	"procurement-receipt-api/services"
)

// ListNotifications returns up to 50 newest notifications of the
// authenticated account.
func ListNotifications(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	rows, err := dispatcher.ListForRecipient(actor.ID, actor.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// MarkNotificationRead flags one notification as read.
func MarkNotificationRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		badRequest(c, "invalid notification id")
		return
	}

	actor := middleware.ActorFromContext(c)
	if serr := dispatcher.MarkRead(id, actor.ID, actor.Role); serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// MarkAllNotificationsRead flags every unread notification.
func MarkAllNotificationsRead(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	updated, err := dispatcher.MarkAllRead(actor.ID, actor.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// VapidKey exposes the public key clients need to subscribe.
func VapidKey(c *gin.Context) {
	if pushSender == nil {
		respondError(c, &services.Error{
			Kind:    services.KindUnavailable,
			Message: "push notifications are not configured",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": pushSender.PublicKey()})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		Auth   string `json:"auth" binding:"required"`
		P256dh string `json:"p256dh" binding:"required"`
	} `json:"keys" binding:"required"`
}

// SubscribePush registers a Web Push subscription for the account.
// Re-registering the same endpoint is a no-op.
func SubscribePush(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "endpoint and keys (auth, p256dh) are required")
		return
	}

	raw, err := json.Marshal(req)
	if err != nil {
		respondError(c, services.Unavailable("failed to encode subscription", err))
		return
	}

	actor := middleware.ActorFromContext(c)
	created, serr := dispatcher.Subscribe(&models.PushSubscription{
		RecipientID:   actor.ID,
		RecipientRole: actor.Role,
		Endpoint:      req.Endpoint,
		Subscription:  string(raw),
	})
	if serr != nil {
		respondError(c, serr)
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Already subscribed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}
