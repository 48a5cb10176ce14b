package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/auth"
	"room-reservation/internal/session"
)

// AdminAuthRoutes serves the staff login and the shared logout.
func AdminAuthRoutes(r *gin.RouterGroup, env *Env) {
	r.GET("/login-admin/", func(c *gin.Context) {
		renderAdminLogin(c, adminLoginForm{}, FieldErrors{}, "", c.Query("next"))
	})
	r.POST("/login-admin/", adminLogin(env))
	r.GET("/logout/", logout(env))
}

func renderAdminLogin(c *gin.Context, f adminLoginForm, errs FieldErrors, message, next string) {
	f.Password = ""
	HTML(c, http.StatusOK, "login_admin.html.tmpl", gin.H{
		"Form":   f,
		"Errors": errs,
		"Error":  message,
		"Next":   next,
	})
}

func adminLogin(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var f adminLoginForm
		errs, err := bindForm(c, &f)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		next := c.PostForm("next")
		if len(errs) > 0 {
			renderAdminLogin(c, f, errs, "", next)
			return
		}

		user, err := env.Auth.Authenticate(ctx, f.Username, f.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Warn("Admin login failed", "username", f.Username, "client_ip", c.ClientIP())
			renderAdminLogin(c, f, FieldErrors{}, msgBadLogin, next)
			return
		} else if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		// Logging in again replaces the previous token
		if claims := getClaims(c); claims != nil {
			if err := env.Tokens.Revoke(ctx, claims); err != nil {
				slog.Warn("Failed to revoke previous token", "error", err)
			}
		}

		token, err := env.Tokens.IssueAuth(ctx, user.Username)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrInternalServer, err))
			return
		}
		setAuthCookie(c, token, int(env.Tokens.TTL().Seconds()))

		if err := env.Audit.AdminLogin(ctx, user.Username); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		slog.Info("Admin logged in", "username", user.Username)
		c.Redirect(http.StatusFound, c.GetString("BaseURL")+safeNext(next))
	}
}

// logout ends both identities. It is safe to call without any.
func logout(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := env.Audit.Logout(ctx, identity(c)); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		if claims := getClaims(c); claims != nil {
			if err := env.Tokens.Revoke(ctx, claims); err != nil {
				slog.Warn("Failed to revoke admin token", "error", err, "username", claims.Username)
			}
		}
		clearAuthCookie(c)

		if err := env.Sessions.Destroy(c, session.Get(c)); err != nil {
			slog.Warn("Failed to delete session", "error", err)
		}

		c.Redirect(http.StatusFound, c.GetString("BaseURL")+"/")
	}
}
