// Package audit writes the append-only access log.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"room-reservation/internal/storage"
)

const (
	detailStudentLogin  = "Inicio de sesión estudiante"
	detailAdminLogin    = "Inicio de sesión administrador"
	detailStudentLogout = "Cierre de sesión estudiante"
	detailAdminLogout   = "Cierre de sesión administrador"
	detailReservation   = "Reserva sala: %s"
)

// Identity is what the request knows about the caller.
type Identity struct {
	// Username of an authenticated staff user, empty otherwise
	Admin string

	// Student session values
	Student       bool
	StudentRUT    string
	StudentCareer string
}

// Actor is the classified author of an audited action.
type Actor struct {
	Type     storage.ActorType
	Username string
	RUT      string
	Career   string
}

// Classify picks the actor for a reservation. Staff wins over a student
// session, which wins over an anonymous guest. A student's session RUT
// replaces the one typed in the form.
func Classify(id Identity, formRUT string) Actor {
	switch {
	case id.Admin != "":
		return Actor{Type: storage.ActorAdmin, Username: id.Admin, RUT: formRUT}
	case id.Student:
		rut := id.StudentRUT
		if rut == "" {
			rut = formRUT
		}
		return Actor{Type: storage.ActorStudent, RUT: rut, Career: id.StudentCareer}
	default:
		return Actor{Type: storage.ActorGuest, RUT: formRUT}
	}
}

// Store is the append side of the access log.
type Store interface {
	CreateAccessLogEntry(ctx context.Context, entry *storage.AccessLogEntry) error
}

type Recorder struct {
	store  Store
	logger *slog.Logger
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store:  store,
		logger: slog.With("component", "audit"),
	}
}

func (r *Recorder) record(ctx context.Context, actor Actor, action storage.Action, detail string) error {
	entry := &storage.AccessLogEntry{
		ActorType: actor.Type,
		Action:    action,
		Username:  optional(actor.Username),
		RUT:       optional(actor.RUT),
		Career:    optional(actor.Career),
		Detail:    optional(detail),
	}
	if err := r.store.CreateAccessLogEntry(ctx, entry); err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	r.logger.Info("Access recorded", "actor", actor.Type, "action", action, "username", actor.Username, "rut", actor.RUT)
	return nil
}

func (r *Recorder) StudentLogin(ctx context.Context, rut, career string) error {
	return r.record(ctx, Actor{Type: storage.ActorStudent, RUT: rut, Career: career}, storage.ActionLogin, detailStudentLogin)
}

func (r *Recorder) AdminLogin(ctx context.Context, username string) error {
	return r.record(ctx, Actor{Type: storage.ActorAdmin, Username: username}, storage.ActionLogin, detailAdminLogin)
}

// Logout writes one entry per identity the caller holds: none, one or two.
func (r *Recorder) Logout(ctx context.Context, id Identity) error {
	if id.Admin != "" {
		actor := Actor{Type: storage.ActorAdmin, Username: id.Admin}
		if err := r.record(ctx, actor, storage.ActionLogout, detailAdminLogout); err != nil {
			return err
		}
	}
	if id.Student {
		actor := Actor{Type: storage.ActorStudent, RUT: id.StudentRUT, Career: id.StudentCareer}
		if err := r.record(ctx, actor, storage.ActionLogout, detailStudentLogout); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) Reservation(ctx context.Context, actor Actor, roomName string) error {
	return r.record(ctx, actor, storage.ActionReservation, fmt.Sprintf(detailReservation, roomName))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
