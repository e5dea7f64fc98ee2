package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests that carry a body with a non-JSON
// Content-Type. Bodyless requests pass: refresh and logout travel on
// cookies alone and clients send no Content-Type for them.
// ContentType() already strips parameters like charset.
func RequireJSON() gin.HandlerFunc {
	writeMethods := map[string]bool{
		http.MethodPost:  true,
		http.MethodPut:   true,
		http.MethodPatch: true,
	}

	return func(ctx *gin.Context) {
		if writeMethods[ctx.Request.Method] && ctx.Request.ContentLength != 0 && ctx.ContentType() != "application/json" {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": gin.H{
					"code":    "unsupported_media_type",
					"message": "Content-Type must be application/json",
				},
			})
			return
		}

		ctx.Next()
	}
}
