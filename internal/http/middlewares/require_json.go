package middlewares

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireContentType rejects POST/PUT/PATCH requests whose body is not one of
// the given media types. Requests without a body pass through.
func RequireContentType(types ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength == 0 {
				break
			}

			mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
			if err != nil || !contains(types, mt) {
				abortWithError(c, http.StatusUnsupportedMediaType, "unsupported_media_type",
					"Content-Type must be "+strings.Join(types, " or "))
				return
			}
		}
		c.Next()
	}
}

func RequireJSON() gin.HandlerFunc {
	return RequireContentType(gin.MIMEJSON)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
