package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/utils"
)

func Health(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) {
		msg := c.Query("ping")
		if msg == "" {
			msg = "pong"
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       msg,
			"version":       utils.GetVersion(),
			"authenticated": GetAdmin(c) != "",
		})
	})
}
