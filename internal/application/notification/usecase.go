// Package notification persiste, publica y consulta las notificaciones derivadas de las transiciones.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// Publisher canal de entrega en tiempo real (websocket, Redis). Es un acelerador: si falla,
// el cliente igual encuentra la notificación al consultar el listado.
type Publisher interface {
	Publish(ctx context.Context, n *entity.Notification) error
}

// UseCase casos de uso de notificaciones.
type UseCase struct {
	repo repository.NotificationRepository
	pub  Publisher
	log  *logger.Logger
	now  func() time.Time
}

// NewUseCase construye el caso de uso. pub puede ser nil (solo consulta por polling).
func NewUseCase(repo repository.NotificationRepository, pub Publisher, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{repo: repo, pub: pub, log: log, now: time.Now}
}

// Dispatch guarda y publica notificaciones de una transición ya comprometida.
// Los errores se registran y no se propagan.
func (uc *UseCase) Dispatch(ctx context.Context, notifications []*entity.Notification) {
	if len(notifications) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := uc.repo.CreateBatch(ctx, notifications); err != nil {
		uc.log.Error().Err(err).Int("count", len(notifications)).Msg("guardar notificaciones")
	}
	if uc.pub == nil {
		return
	}
	for _, n := range notifications {
		if err := uc.pub.Publish(ctx, n); err != nil {
			uc.log.Warn().Err(err).Str("notification_id", n.ID).Str("type", string(n.Kind)).Msg("publicar notificación")
		}
	}
}

// ScopeFor destinatarios visibles para el actor: él mismo y su área; admin ve además lo dirigido a admin.
func ScopeFor(actor entity.Actor) repository.NotificationScope {
	scope := repository.NotificationScope{UserID: actor.UserID}
	if actor.Area != "" {
		scope.Areas = append(scope.Areas, actor.Area)
	}
	if actor.IsAdmin() && actor.Area != entity.AreaAdmin {
		scope.Areas = append(scope.Areas, entity.AreaAdmin)
	}
	return scope
}

// Visible indica si la notificación está dirigida al actor.
func Visible(actor entity.Actor, n *entity.Notification) bool {
	scope := ScopeFor(actor)
	if n.RecipientUserID != "" {
		return n.RecipientUserID == scope.UserID
	}
	for _, a := range scope.Areas {
		if a == n.RecipientArea {
			return true
		}
	}
	return false
}

// List devuelve las notificaciones del actor, las más recientes primero.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, unreadOnly bool, page dto.PageRequest) (*dto.NotificationListResponse, error) {
	page.DefaultPage()
	scope := ScopeFor(actor)
	list, err := uc.repo.List(ctx, scope, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	unread, err := uc.repo.CountUnread(ctx, scope)
	if err != nil {
		return nil, err
	}
	items := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		items = append(items, ToResponse(n))
	}
	return &dto.NotificationListResponse{
		Items:  items,
		Unread: unread,
		Page:   dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UnreadCount cantidad de no leídas del actor.
func (uc *UseCase) UnreadCount(ctx context.Context, actor entity.Actor) (int, error) {
	return uc.repo.CountUnread(ctx, ScopeFor(actor))
}

// MarkRead marca una notificación como leída. Marcar dos veces no es error.
func (uc *UseCase) MarkRead(ctx context.Context, actor entity.Actor, id string) (*dto.NotificationResponse, error) {
	n, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Visible(actor, n) {
		return nil, fmt.Errorf("%w: la notificación no está dirigida a este usuario", domain.ErrForbidden)
	}
	if !n.Read {
		if err := uc.repo.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		now := uc.now()
		n.Read = true
		n.ReadAt = &now
	}
	out := ToResponse(n)
	return &out, nil
}

// MarkAllRead marca como leídas todas las del actor y devuelve cuántas cambiaron.
func (uc *UseCase) MarkAllRead(ctx context.Context, actor entity.Actor) (int, error) {
	return uc.repo.MarkAllRead(ctx, ScopeFor(actor))
}

// ToResponse mapea la entidad al DTO de salida.
func ToResponse(n *entity.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:              n.ID,
		Type:            string(n.Kind),
		Urgent:          n.Kind.Urgent(),
		Title:           n.Title,
		Message:         n.Message,
		RecipientUserID: n.RecipientUserID,
		RecipientArea:   string(n.RecipientArea),
		SubjectKind:     string(n.SubjectKind),
		SubjectID:       n.SubjectID,
		TransferID:      n.TransferID,
		Read:            n.Read,
		ReadAt:          n.ReadAt,
		CreatedAt:       n.CreatedAt,
	}
}
