package middlewares

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireContentType rejects write requests whose body is not one of the allowed media types.
func RequireContentType(allowed ...string) gin.HandlerFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(a)] = struct{}{}
	}
	message := "Content-Type must be " + strings.Join(allowed, " or ")

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			// allow "application/json; charset=utf-8"
			mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
			if err != nil {
				abortWithError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", message)
				return
			}
			if _, ok := set[strings.ToLower(mt)]; !ok {
				abortWithError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", message)
				return
			}
		}
		c.Next()
	}
}

func RequireJSON() gin.HandlerFunc {
	return RequireContentType("application/json")
}
