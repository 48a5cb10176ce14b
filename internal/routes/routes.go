package routes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/access"
	"room-reservation/internal/audit"
	"room-reservation/internal/auth"
	"room-reservation/internal/booking"
	"room-reservation/internal/config"
	"room-reservation/internal/email"
	app "room-reservation/internal/jwt"
	"room-reservation/internal/session"
	"room-reservation/internal/storage"
	"room-reservation/internal/utils"
	"room-reservation/web"
)

// ReservationNotifier is told about every new reservation.
type ReservationNotifier interface {
	Reservation(ctx context.Context, notice email.ReservationNotice) error
}

// Env holds the services the handlers share.
type Env struct {
	Config   *config.Config
	Store    storage.Provider
	Booking  *booking.Service
	Audit    *audit.Recorder
	Auth     *auth.Authenticator
	Tokens   *app.Issuer
	Sessions *session.Manager
	RBAC     *access.RBAC

	// Optional, nil disables reservation mails
	Notifier ReservationNotifier
}

// Register installs the renderer, static assets, middleware and every route on r.
func Register(r *gin.Engine, env *Env) error {
	renderer, err := web.NewRenderer(TemplateFuncs(env.Config.Location()))
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	r.HTMLRender = renderer

	r.StaticFS("/assets", http.FS(web.Assets()))

	r.Use(
		func(c *gin.Context) {
			c.Set("BaseURL", utils.GetBaseURL(c, env.Config.BaseURL))
			c.Next()
		},
		ErrorHandler(),
		env.Sessions.Middleware(),
		AuthMiddleware(env),
	)

	Health(r.Group("/"))
	RoomRoutes(r.Group("/"), env)
	ReservationRoutes(r.Group("/reservar"), env)
	StudentRoutes(r.Group("/login-estudiante"), env)
	AdminAuthRoutes(r.Group("/"), env)
	AdminRoutes(r.Group("/admin", RequireAdmin()), env)

	r.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrPageNotFound)
	})
	return nil
}

// Merge into existing gin.H
func H(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["BaseURL"] = c.GetString("BaseURL")
	data["AppVersion"] = utils.GetVersion()

	data["Admin"] = GetAdmin(c)
	student, rut, career := session.Get(c).Student()
	data["Student"] = student
	data["StudentRUT"] = rut
	data["StudentCareer"] = career
	return data
}

// Returns a HTML response with merged data
func HTML(c *gin.Context, code int, name string, data gin.H) {
	c.HTML(code, name, H(c, data))
}

// identity collects who the caller is for audit purposes.
func identity(c *gin.Context) audit.Identity {
	student, rut, career := session.Get(c).Student()
	return audit.Identity{
		Admin:         GetAdmin(c),
		Student:       student,
		StudentRUT:    rut,
		StudentCareer: career,
	}
}
