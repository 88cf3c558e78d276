// internal/api/responses/responses.go
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// APIResponse defines the standard envelope for API responses.
type APIResponse struct {
	Status   string      `json:"status"` // "success" or "error"
	Data     interface{} `json:"data,omitempty"`
	Message  string      `json:"message,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// InitLogger initializes the structured logger for API responses.
func InitLogger() {
	logger, _ = zap.NewProduction()
}

// Logger exposes the shared structured logger.
func Logger() *zap.Logger {
	return logger
}

// Success sends a successful response with the provided data and message.
func Success(c *gin.Context, data interface{}, message string) {
	SuccessWithWarnings(c, data, message, nil)
}

// SuccessWithWarnings sends a successful response carrying non-fatal
// warnings (degraded sources, missing prices) alongside the data.
func SuccessWithWarnings(c *gin.Context, data interface{}, message string, warnings []string) {
	resp := APIResponse{Status: "success", Data: data, Message: message, Warnings: warnings}
	c.JSON(http.StatusOK, resp)
	logger.Info("API success",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", http.StatusOK),
		zap.Int("warnings", len(warnings)))
}

// Error sends an error response with the provided code, message, and optional errors.
func Error(c *gin.Context, code int, message string, errs ...string) {
	resp := APIResponse{Status: "error", Message: message, Errors: errs}
	c.JSON(code, resp)
	logger.Error("API error",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", code),
		zap.Strings("errors", errs))
}
