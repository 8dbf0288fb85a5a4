package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError writes the {ok:false, message} envelope.
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"ok": false, "message": message})
}

// RespondOK writes {ok:true} merged with body.
func RespondOK(c *gin.Context, status int, body gin.H) {
	out := gin.H{"ok": true}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(status, out)
}
