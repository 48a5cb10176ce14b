package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

type errorStruct struct {
	Succeed bool     `json:"success"`
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Code    []string `json:"code,omitempty"`
}

// ErrorHandler renders the last error of the request either as the error
// page or, for clients asking for JSON, as a JSON document.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Process the request first

		if len(c.Errors) == 0 {
			return
		}

		// Use the last error (most recent)
		err := c.Errors.Last().Err

		statusCode := GetErrorStatus(err)
		errorInfo := GetErrorInfo(err)

		// Log the error with appropriate level based on status code
		if statusCode >= 500 {
			slog.Error("Request failed with server error",
				"error", err,
				"status", statusCode,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		} else if statusCode >= 400 {
			slog.Warn("Request failed with client error",
				"error", err,
				"status", statusCode,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		}

		// Only send the response if it hasn't been written yet
		if c.Writer.Written() {
			return
		}

		// Collect the stop codes from all wrapped errors
		var stopCodes []string
		for _, e := range c.Errors {
			stopCodes = append(stopCodes, GetErrorInfo(e.Err).StopCodes...)
		}

		if c.GetHeader("Accept") == "application/json" {
			c.AbortWithStatusJSON(statusCode, errorStruct{
				Succeed: false,
				Status:  "error",
				Message: errorInfo.Message,
				Code:    stopCodes,
			})
			return
		}

		slog.Debug("Returning error page HTML", "code", statusCode, "message", errorInfo.Message)
		HTML(c, statusCode, "error.html.tmpl", gin.H{
			"Status":  statusCode,
			"Message": errorInfo.Message,
			"Code":    stopCodes,
		})
		c.Abort()
	}
}

// AbortWithError is a helper function to abort the request with an error
// and add it to the Gin error chain for the ErrorHandler middleware
func AbortWithError(c *gin.Context, err error) {
	statusCode := GetErrorStatus(err)
	c.Error(err)
	c.Abort()
	// Set the status code so gin knows not to send 200
	c.Status(statusCode)
}

// AbortWithHTTPError is a helper to abort with a custom HTTPError
func AbortWithHTTPError(c *gin.Context, statusCode int, err error, message string, stopCodes ...string) {
	httpErr := NewHTTPError(statusCode, err, message, stopCodes...)
	c.Error(httpErr)
	c.Abort()
	c.Status(statusCode)
}
