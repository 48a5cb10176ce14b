package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"room-reservation/internal/access"
	"room-reservation/internal/storage"
)

// Upper bound of access log rows shown at once
const accessLogPageSize = 500

var (
	actorTypes = []storage.ActorType{storage.ActorAdmin, storage.ActorStudent, storage.ActorGuest}
	actions    = []storage.Action{storage.ActionLogin, storage.ActionLogout, storage.ActionReservation}
)

// AdminRoutes serves the staff record browser. The group must already
// require an authenticated admin.
func AdminRoutes(r *gin.RouterGroup, env *Env) {
	can := func(resource, action string) gin.HandlerFunc {
		return RequirePermission(env.RBAC, resource, action)
	}

	r.GET("/", adminIndex(env))

	r.GET("/salas/", can(access.ResourceRooms, access.ActionRead), adminRooms(env))
	r.POST("/salas/", can(access.ResourceRooms, access.ActionCreate), adminCreateRoom(env))
	r.POST("/salas/:id/eliminar/", can(access.ResourceRooms, access.ActionDelete), adminDeleteRoom(env))

	r.GET("/reservas/", can(access.ResourceReservations, access.ActionRead), adminReservations(env))
	r.POST("/reservas/:id/eliminar/", can(access.ResourceReservations, access.ActionDelete), adminDeleteReservation(env))

	r.GET("/registro/", can(access.ResourceAccessLog, access.ActionRead), adminAccessLog(env))
}

func adminIndex(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		username := GetAdmin(c)

		data := gin.H{
			"CanRooms":        env.RBAC.Can(username, access.ResourceRooms, access.ActionRead),
			"CanReservations": env.RBAC.Can(username, access.ResourceReservations, access.ActionRead),
			"CanAccessLog":    env.RBAC.Can(username, access.ResourceAccessLog, access.ActionRead),
		}

		if data["CanRooms"].(bool) {
			rooms, err := env.Store.ListRooms(ctx, storage.RoomFilter{})
			if err != nil {
				AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
				return
			}
			data["RoomCount"] = len(rooms)
		}
		if data["CanReservations"].(bool) {
			reservations, err := env.Store.ListReservations(ctx, storage.ReservationFilter{})
			if err != nil {
				AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
				return
			}
			data["ReservationCount"] = len(reservations)
		}

		HTML(c, http.StatusOK, "admin_index.html.tmpl", data)
	}
}

func renderAdminRooms(c *gin.Context, env *Env, f roomForm, errs FieldErrors) {
	username := GetAdmin(c)
	query := strings.TrimSpace(c.Query("q"))
	availableFilter := c.Query("disponible")

	filter := storage.RoomFilter{Search: query}
	switch availableFilter {
	case "1":
		available := true
		filter.Available = &available
	case "0":
		available := false
		filter.Available = &available
	default:
		availableFilter = ""
	}

	rooms, err := env.Store.ListRooms(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
		return
	}

	HTML(c, http.StatusOK, "admin_rooms.html.tmpl", gin.H{
		"Query":           query,
		"AvailableFilter": availableFilter,
		"Rooms":           rooms,
		"CanCreate":       env.RBAC.Can(username, access.ResourceRooms, access.ActionCreate),
		"CanDelete":       env.RBAC.Can(username, access.ResourceRooms, access.ActionDelete),
		"Form":            f,
		"Errors":          errs,
	})
}

func adminRooms(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderAdminRooms(c, env, roomForm{}, FieldErrors{})
	}
}

func adminCreateRoom(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f roomForm
		errs, err := bindForm(c, &f)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		capacity, err := f.Capacity()
		if _, invalid := errs["capacidad_maxima"]; !invalid {
			if err != nil {
				errs.add("capacidad_maxima", msgNumber)
			} else if capacity < 1 {
				errs.add("capacidad_maxima", fmt.Sprintf(msgMinValue, 1))
			}
		}
		if len(errs) > 0 {
			renderAdminRooms(c, env, f, errs)
			return
		}

		room := &storage.Room{Name: f.Name, MaxCapacity: capacity, Available: true}
		if err := env.Store.CreateRoom(c.Request.Context(), room); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}
		slog.Info("Room created", "id", room.ID, "name", room.Name, "by", GetAdmin(c))

		c.Redirect(http.StatusFound, c.GetString("BaseURL")+"/admin/salas/")
	}
}

func adminDeleteRoom(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			AbortWithError(c, ErrRoomNotFound)
			return
		}

		err := env.Store.DeleteRoom(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrRoomNotFound)
			return
		} else if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}
		slog.Info("Room deleted", "id", id, "by", GetAdmin(c))

		c.Redirect(http.StatusFound, c.GetString("BaseURL")+"/admin/salas/")
	}
}

func adminReservations(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		query := strings.TrimSpace(c.Query("q"))
		roomFilter, _ := strconv.ParseInt(c.Query("sala"), 10, 64)

		rooms, err := env.Store.ListRooms(ctx, storage.RoomFilter{})
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		reservations, err := env.Store.ListReservations(ctx, storage.ReservationFilter{Search: query, RoomID: roomFilter})
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		HTML(c, http.StatusOK, "admin_reservations.html.tmpl", gin.H{
			"Query":        query,
			"Rooms":        rooms,
			"RoomFilter":   roomFilter,
			"Reservations": reservations,
			"CanDelete":    env.RBAC.Can(GetAdmin(c), access.ResourceReservations, access.ActionDelete),
		})
	}
}

func adminDeleteReservation(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			AbortWithError(c, ErrReservationNotFound)
			return
		}

		err := env.Store.DeleteReservation(c.Request.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrReservationNotFound)
			return
		} else if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}
		slog.Info("Reservation deleted", "id", id, "by", GetAdmin(c))

		c.Redirect(http.StatusFound, c.GetString("BaseURL")+"/admin/reservas/")
	}
}

func adminAccessLog(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		actorFilter := strings.ToUpper(c.Query("tipo"))
		actionFilter := strings.ToUpper(c.Query("accion"))

		if _, ok := actorLabels[storage.ActorType(actorFilter)]; !ok {
			actorFilter = ""
		}
		if _, ok := actionLabels[storage.Action(actionFilter)]; !ok {
			actionFilter = ""
		}

		entries, err := env.Store.ListAccessLog(c.Request.Context(), storage.AccessLogFilter{
			ActorType: storage.ActorType(actorFilter),
			Action:    storage.Action(actionFilter),
			Search:    query,
			Limit:     accessLogPageSize,
		})
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %w", ErrDatabaseError, err))
			return
		}

		HTML(c, http.StatusOK, "admin_log.html.tmpl", gin.H{
			"Query":        query,
			"ActorTypes":   actorTypes,
			"ActorFilter":  actorFilter,
			"Actions":      actions,
			"ActionFilter": actionFilter,
			"Entries":      entries,
		})
	}
}
