package app

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/routes"
)

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("Referrer-Policy", "same-origin")

	// Pages carry per-user state, handlers may relax this
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

// ParseNetworks splits a comma separated CIDR list, skipping blanks.
func ParseNetworks(list string) []string {
	var cidrs []string
	for cidr := range strings.SplitSeq(list, ",") {
		if cidr := strings.TrimSpace(cidr); cidr != "" {
			cidrs = append(cidrs, cidr)
		}
	}
	return cidrs
}

// Middleware to check if the IP is allowed.
func IPAccessControl(allowedCIDRs []string) gin.HandlerFunc {
	var parsedCIDRs []*net.IPNet

	// Allow local networks in debug mode
	if os.Getenv("GIN_MODE") != "release" {
		allowedCIDRs = append(allowedCIDRs, "127.0.0.1/8", "::1/128")
	}

	for _, cidr := range allowedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			slog.Warn("Invalid CIDR", "cidr", cidr)
			continue
		}
		slog.Debug("Allowed CIDR", "cidr", cidr)
		parsedCIDRs = append(parsedCIDRs, network)
	}

	return func(c *gin.Context) {
		clientIP := net.ParseIP(c.ClientIP())
		if clientIP == nil {
			// Should not happen
			slog.Warn("Invalid client IP", "ip", c.ClientIP())
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		for _, cidr := range parsedCIDRs {
			if cidr.Contains(clientIP) {
				c.Next()
				return
			}
		}
		slog.Warn("IP not allowed", "ip", clientIP)
		c.AbortWithStatus(http.StatusForbidden)
	}
}

// HTTPServer builds the gin engine with every route of the application.
func HTTPServer(env *routes.Env) (*gin.Engine, error) {
	r := gin.Default()

	if env.Config.AllowedNetworks != "" {
		slog.Debug("Enabling IP access control", "allowed_networks", env.Config.AllowedNetworks)
		r.Use(IPAccessControl(ParseNetworks(env.Config.AllowedNetworks)))
	}
	r.Use(securityHeaders)

	if err := routes.Register(r, env); err != nil {
		return nil, err
	}
	return r, nil
}
