package repository

import (
	"context"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// NotificationScope destinatarios visibles para un usuario: su id y sus áreas.
type NotificationScope struct {
	UserID string
	Areas  []entity.Area
}

// NotificationRepository define el puerto de persistencia para Notification (DIP).
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	List(ctx context.Context, scope NotificationScope, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, scope NotificationScope) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, scope NotificationScope) (int, error)
}
