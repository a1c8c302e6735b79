package utils

import "github.com/gin-gonic/gin"

// JSONSuccess and JSONError wrap every API response in the same envelope so
// clients can branch on "success" before looking at the payload.

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}
