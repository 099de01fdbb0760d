package server

import "github.com/gin-gonic/gin"

// Every response uses the same envelope so the frontend collaborator can
// branch on success without inspecting status codes.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondFailure(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}
