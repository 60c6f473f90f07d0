package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// record arma el evento de historial de una transición; lo completan los casos de uso con áreas y piezas.
func record(s entity.Subject, action entity.HistoryAction, actor entity.Actor, now time.Time, description string) *entity.HistoryEvent {
	ref := s.Ref()
	return &entity.HistoryEvent{
		ID:          uuid.New().String(),
		SubjectKind: ref.Kind,
		SubjectID:   ref.ID,
		Action:      action,
		UserID:      actor.UserID,
		Description: description,
		CreatedAt:   now,
	}
}

// notice plantilla de notificación antes de asignar destinatarios.
type notice struct {
	Kind       entity.NotificationKind
	Title      string
	Message    string
	Subject    entity.SubjectRef
	TransferID string
}

// outbox acumula notificaciones dentro de la transacción y las entrega después del Commit.
// No repite destinatario para un mismo tipo y transferencia dentro de una operación.
type outbox struct {
	now  time.Time
	list []*entity.Notification
	seen map[string]struct{}
}

func newOutbox(now time.Time) *outbox {
	return &outbox{now: now, seen: make(map[string]struct{})}
}

func (o *outbox) add(n notice, userID string, area entity.Area) {
	key := string(n.Kind) + "|" + n.TransferID + "|" + userID + "|" + string(area)
	if _, ok := o.seen[key]; ok {
		return
	}
	o.seen[key] = struct{}{}
	o.list = append(o.list, &entity.Notification{
		ID:              uuid.New().String(),
		Kind:            n.Kind,
		Title:           n.Title,
		Message:         n.Message,
		RecipientUserID: userID,
		RecipientArea:   area,
		SubjectKind:     n.Subject.Kind,
		SubjectID:       n.Subject.ID,
		TransferID:      n.TransferID,
		CreatedAt:       o.now,
	})
}

// areas dirige la notificación a los miembros de cada área.
func (o *outbox) areas(n notice, areas ...entity.Area) {
	for _, a := range areas {
		if a == "" {
			continue
		}
		o.add(n, "", a)
	}
}

// users dirige la notificación a usuarios concretos.
func (o *outbox) users(n notice, ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		o.add(n, id, "")
	}
}

func (o *outbox) flush(ctx context.Context, d Deps) {
	d.dispatch(ctx, o.list)
	o.list = nil
}
