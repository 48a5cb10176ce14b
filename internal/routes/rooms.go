package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"room-reservation/internal/config"
	"room-reservation/internal/storage"
	"room-reservation/internal/utils"
)

// RoomRoutes serves the public room listing, detail page and door QR code.
func RoomRoutes(r *gin.RouterGroup, env *Env) {
	r.GET("/", listRooms(env))
	r.GET("/sala/:id/", roomDetail(env))
	r.GET("/sala/:id/qr.png", roomQR(env))
}

// paramID reads a positive integer path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func roomDetailPath(id int64) string {
	return fmt.Sprintf("/sala/%d/", id)
}

func listRooms(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms, err := env.Booking.RefreshRooms(c.Request.Context())
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		available := 0
		for _, room := range rooms {
			if room.Available {
				available++
			}
		}

		HTML(c, http.StatusOK, "home.html.tmpl", gin.H{
			"Rooms":     rooms,
			"Total":     len(rooms),
			"Available": available,
		})
	}
}

func roomDetail(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			AbortWithError(c, ErrRoomNotFound)
			return
		}

		ctx := c.Request.Context()
		room, err := env.Booking.RefreshRoom(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrRoomNotFound)
			return
		} else if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		active, err := env.Booking.ActiveReservation(ctx, id)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		HTML(c, http.StatusOK, "room_detail.html.tmpl", gin.H{
			"Room":   room,
			"Active": active,
		})
	}
}

// roomQR renders a PNG QR code pointing at the room detail page.
func roomQR(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			AbortWithError(c, ErrRoomNotFound)
			return
		}

		_, err := env.Store.GetRoom(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrRoomNotFound)
			return
		} else if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		url := utils.UrlFor(c, env.Config.BaseURL, roomDetailPath(id))
		png, err := qrcode.Encode(url, qrcode.Medium, config.QR_IMAGE_SIZE)
		if err != nil {
			slog.Error("Failed to generate QR code", "error", err, "url", url)
			AbortWithHTTPError(c, http.StatusInternalServerError, err, "No se pudo generar el código QR", "QR_ENCODE_FAILED")
			return
		}

		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, "image/png", png)
	}
}
