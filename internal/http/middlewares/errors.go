package middlewares

import (
	"github.com/gin-gonic/gin"
)

// abortWithError writes the same failure envelope the handlers use.
func abortWithError(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	id, _ := reqID.(string)

	body := gin.H{
		"success": false,
		"message": message,
		"code":    code,
	}
	if id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, body)
}
