package response

import "github.com/gin-gonic/gin"

func RespondJSON(c *gin.Context, success bool, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, Envelope{
		Success: success,
		Message: message,
		Data:    data,
		Errors:  errors,
	})
}

// Success writes a success envelope with the given payload.
func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, true, code, message, data, nil)
}

// Error writes an error envelope with optional error details.
func Error(c *gin.Context, code int, message string, errors interface{}) {
	RespondJSON(c, false, code, message, nil, errors)
}
