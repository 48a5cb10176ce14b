package utils

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// IsSecure reports whether the request reached us over TLS, directly or through a proxy.
func IsSecure(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}

// GetBaseURL automatically detects the base URL from the request
func GetBaseURL(c *gin.Context, configBaseURL string) string {
	// If BaseURL is explicitly configured, use it
	if configBaseURL != "" {
		return strings.TrimSuffix(configBaseURL, "/")
	}

	scheme := "http"
	if IsSecure(c) {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

// UrlFor builds an absolute URL for path
func UrlFor(c *gin.Context, configBaseURL string, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return GetBaseURL(c, configBaseURL) + path
}
