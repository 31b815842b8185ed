package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Index descreve a API na raiz
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "API do Lava-Jato",
		"version": "1.0.0",
		"endpoints": gin.H{
			"auth":             "/api/auth",
			"servicos":         "/api/servicos",
			"clientes":         "/api/clientes",
			"dashboard":        "/api/dashboard",
			"users":            "/api/users",
			"deletionRequests": "/api/deletion-requests",
			"health":           "/api/health",
		},
	})
}
