package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/session"
)

// StudentRoutes serves the student login. Students only identify themselves,
// there is no password.
func StudentRoutes(r *gin.RouterGroup, env *Env) {
	r.GET("/", func(c *gin.Context) {
		renderStudentLogin(c, studentLoginForm{}, FieldErrors{})
	})
	r.POST("/", studentLogin(env))
}

func renderStudentLogin(c *gin.Context, f studentLoginForm, errs FieldErrors) {
	HTML(c, http.StatusOK, "login_student.html.tmpl", gin.H{
		"Form":   f,
		"Errors": errs,
	})
}

func studentLogin(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f studentLoginForm
		errs, err := bindForm(c, &f)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if len(errs) > 0 {
			renderStudentLogin(c, f, errs)
			return
		}

		s := session.Get(c)
		if err := env.Sessions.Renew(c, s); err != nil {
			slog.Warn("Failed to drop previous session", "error", err)
		}
		s.SetStudent(f.RUT, f.Career)
		if err := env.Sessions.Save(c, s); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrInternalServer, err))
			return
		}

		if err := env.Audit.StudentLogin(c.Request.Context(), f.RUT, f.Career); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		c.Redirect(http.StatusFound, c.GetString("BaseURL")+"/")
	}
}
