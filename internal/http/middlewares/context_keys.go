package middlewares

import (
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	CtxRequestID = "request_id"
	ctxPrincipal = "auth.principal"
)

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(CtxRequestID)
}

// PrincipalFrom returns the caller set by RequireAuth. Handlers mounted
// without RequireAuth always get ok == false.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// abortWithError writes the same envelope as handlers.RespondError. Keys are
// emitted in sorted order, which matches the field order of handlers.APIError.
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if id := RequestIDFrom(c); id != "" {
		body["requestId"] = id
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
