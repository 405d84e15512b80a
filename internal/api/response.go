package api

import (
	"budgetbook/internal/apperr" // Error taxonomy

	"github.com/gin-gonic/gin" // Gin web framework
)

// Every endpoint answers with the same envelope: {success, data?, message?,
// code?}. Errors are recovered here; raw failures never reach the client.

// respond writes a success envelope with data
func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondMessage writes a success envelope with data and a message
func respondMessage(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

// fail maps any error onto the failure envelope
func fail(c *gin.Context, err error) {
	e := apperr.From(err)
	c.JSON(e.Status, gin.H{"success": false, "code": e.Code, "message": e.Message})
}
