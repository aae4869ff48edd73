package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/showgoers/showgoers/internal/notify"
	"github.com/showgoers/showgoers/internal/ws"
)

func NotifierMiddleware(notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("notifier", notifier)
		c.Next()
	}
}

func GetNotifier(c *gin.Context) notify.Notifier {
	notifier, exists := c.Get("notifier")
	if !exists {
		return notify.Nop{}
	}
	return notifier.(notify.Notifier)
}

func HubMiddleware(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("hub", hub)
		c.Next()
	}
}

func GetHub(c *gin.Context) *ws.Hub {
	hub, exists := c.Get("hub")
	if !exists {
		return nil
	}
	return hub.(*ws.Hub)
}
