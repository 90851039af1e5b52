package handler

import "github.com/gin-gonic/gin"

const callerIDKey = "caller_id"

// SetCallerID stores the authenticated user id on the request context.
// Called by the auth middleware only.
func SetCallerID(c *gin.Context, userID string) {
	c.Set(callerIDKey, userID)
}

// CallerID returns the authenticated user id for the request.
func CallerID(c *gin.Context) string {
	return c.GetString(callerIDKey)
}
