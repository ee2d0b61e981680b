package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes rejects a declared oversize body up front; bodies without a
// Content-Length are cut off by the reader and surface as a bind error.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.ContentLength > max {
			abortWithError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return
		}

		if ctx.Request.Body != nil {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)
		}

		ctx.Next()
	}
}
