package utils

import "github.com/gin-gonic/gin"

// RespondError writes the standard error envelope.
// The top-level message mirrors error.message for clients that only read that field.
func RespondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// RespondErrorDetails writes the error envelope with validation details
func RespondErrorDetails(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// RespondData writes a successful envelope around data
func RespondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
