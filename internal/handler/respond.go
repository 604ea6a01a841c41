// Package handler serves the devapi endpoints. Every answer is the
// {success, message, data} envelope the contactbook client consumes.
package handler

import (
	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
