package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"
)

const reservationSubject = "Nueva reserva: %s"

var reservationTemplate = template.Must(template.New("reservation").Parse(`<p>Se ha registrado una reserva.</p>
<table>
<tr><th>Sala</th><td>{{.RoomName}}</td></tr>
<tr><th>RUT</th><td>{{.RUT}}</td></tr>
<tr><th>Tipo de usuario</th><td>{{.Actor}}</td></tr>
<tr><th>Inicio</th><td>{{.Start}}</td></tr>
<tr><th>Fin</th><td>{{.End}}</td></tr>
</table>
{{if .DetailURL}}<p><a href="{{.DetailURL}}">Ver sala</a></p>{{end}}`))

// ReservationNotice describes a reservation for staff notification
type ReservationNotice struct {
	RoomName  string
	RUT       string
	Actor     string
	Start     time.Time
	End       time.Time
	DetailURL string
}

// Notifier mails staff about new reservations
type Notifier struct {
	sender Sender
	to     []string
	loc    *time.Location
	logger *slog.Logger
}

func NewNotifier(sender Sender, to string, loc *time.Location) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		sender: sender,
		to:     []string{to},
		loc:    loc,
		logger: slog.With("component", "notifier"),
	}
}

// ReservationMessage renders the notification for a reservation
func (n *Notifier) ReservationMessage(notice ReservationNotice) (*Message, error) {
	const layout = "2006-01-02 15:04"

	var buf bytes.Buffer
	err := reservationTemplate.Execute(&buf, map[string]string{
		"RoomName":  notice.RoomName,
		"RUT":       notice.RUT,
		"Actor":     notice.Actor,
		"Start":     notice.Start.In(n.loc).Format(layout),
		"End":       notice.End.In(n.loc).Format(layout),
		"DetailURL": notice.DetailURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render notification: %w", err)
	}

	text, err := htmlToText(buf.String())
	if err != nil {
		return nil, err
	}

	return &Message{
		To:      n.to,
		Subject: fmt.Sprintf(reservationSubject, notice.RoomName),
		HTML:    buf.String(),
		Text:    text,
	}, nil
}

// Reservation sends the notification. Errors are returned to the caller, who usually only logs them.
func (n *Notifier) Reservation(ctx context.Context, notice ReservationNotice) error {
	msg, err := n.ReservationMessage(notice)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	n.logger.Info("Sent reservation notification", "room", notice.RoomName, "to", n.to)
	return nil
}
