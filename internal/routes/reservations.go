package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/audit"
	"room-reservation/internal/email"
	"room-reservation/internal/storage"
	"room-reservation/internal/utils"
)

// ReservationRoutes serves the booking form.
func ReservationRoutes(r *gin.RouterGroup, env *Env) {
	r.GET("/", reservationPage(env))
	r.POST("/", createReservation(env))
}

// availableRooms lists the rooms whose cached flag says available. The flag
// is not recomputed here.
func availableRooms(c *gin.Context, env *Env) ([]storage.Room, error) {
	available := true
	return env.Store.ListRooms(c.Request.Context(), storage.RoomFilter{Available: &available})
}

func renderReservationForm(c *gin.Context, choices []storage.Room, f reservationForm, errs FieldErrors) {
	HTML(c, http.StatusOK, "reserve.html.tmpl", gin.H{
		"Choices": choices,
		"Form":    f,
		"Errors":  errs,
	})
}

func reservationPage(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		choices, err := availableRooms(c, env)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}
		renderReservationForm(c, choices, reservationForm{}, FieldErrors{})
	}
}

func createReservation(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var f reservationForm
		errs, err := bindForm(c, &f)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		choices, err := availableRooms(c, env)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		var room *storage.Room
		for i := range choices {
			if choices[i].ID == f.RoomID() {
				room = &choices[i]
				break
			}
		}
		if room == nil && f.Room != "" {
			errs.add("sala", msgInvalidChoice)
		}

		if len(errs) > 0 {
			slog.Debug("Reservation form rejected", "errors", errs)
			renderReservationForm(c, choices, f, errs)
			return
		}

		reservation, err := env.Booking.Book(ctx, f.RUT, room.ID)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		actor := audit.Classify(identity(c), f.RUT)
		if err := env.Audit.Reservation(ctx, actor, room.Name); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		if env.Notifier != nil {
			notice := email.ReservationNotice{
				RoomName:  room.Name,
				RUT:       reservation.RUT,
				Actor:     actorLabels[actor.Type],
				Start:     reservation.StartTime,
				End:       reservation.EndTime,
				DetailURL: utils.UrlFor(c, env.Config.BaseURL, roomDetailPath(room.ID)),
			}
			if err := env.Notifier.Reservation(ctx, notice); err != nil {
				slog.Error("Failed to notify reservation", "error", err, "reservation", reservation.ID)
			}
		}

		c.Redirect(http.StatusFound, c.GetString("BaseURL")+"/")
	}
}
