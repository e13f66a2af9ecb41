package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func getResource(c *gin.Context) {
	data, err := loadFixture(c.Param("name"))
	if errors.Is(err, errUnknownResource) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func getMe(c *gin.Context) {
	meta, ok := CurrentToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        meta.UserID,
		"email":     meta.Email,
		"role":      meta.Role,
		"expiresAt": meta.ExpiresAt,
	})
}
