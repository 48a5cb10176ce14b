// Authentication middleware
// Reads the admin token cookie and, when it is valid and the user is still
// staff, puts the username in the request context.
package routes

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	app "room-reservation/internal/jwt"
	"room-reservation/internal/utils"
)

const AUTH_COOKIE_NAME = "auth_token"

// Context keys
const (
	ctxAdmin  = "admin"
	ctxClaims = "adminClaims"
)

// Set authentication cookie
// The cookie is set to expire when the token expires
func setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		AUTH_COOKIE_NAME,
		token,
		maxAge,
		"/",
		"",
		utils.IsSecure(c), // Secure
		true,
	)
}

func clearAuthCookie(c *gin.Context) {
	setAuthCookie(c, "", -1)
}

// GetAdmin returns the authenticated staff username, or "".
func GetAdmin(c *gin.Context) string {
	return c.GetString(ctxAdmin)
}

func getClaims(c *gin.Context) *app.AuthClaims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*app.AuthClaims); ok {
			return claims
		}
	}
	return nil
}

// AuthMiddleware never rejects a request; it only identifies staff users.
func AuthMiddleware(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AUTH_COOKIE_NAME)
		if err != nil || token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		claims, err := env.Tokens.DecodeAuth(ctx, token)
		if err != nil {
			slog.Debug("AuthMiddleware: Invalid or revoked auth token", "error", err)
			c.Next()
			return
		}

		// Staff flag may have been revoked since the token was issued
		staff, err := env.Auth.IsStaff(ctx, claims.Username)
		if err != nil {
			slog.Error("AuthMiddleware: Failed to look up staff user", "error", err)
			c.Next()
			return
		}
		if !staff {
			slog.Warn("AuthMiddleware: Token for user without staff permissions", "username", claims.Username)
			c.Next()
			return
		}

		c.Set(ctxAdmin, claims.Username)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RequireAdmin redirects anonymous users to the admin login page.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetAdmin(c) == "" {
			slog.Debug("RequireAdmin: No admin in context", "path", c.Request.URL.Path)
			c.Redirect(http.StatusFound, loginURL(c))
			c.Abort()
			return
		}
		c.Next()
	}
}

func loginURL(c *gin.Context) string {
	return c.GetString("BaseURL") + "/login-admin/?next=" + url.QueryEscape(c.Request.URL.RequestURI())
}

// safeNext accepts only local absolute paths as redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
