package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo bandeja de notificaciones sobre PostgreSQL.
// Una notificación con usuario destinatario solo la ve ese usuario; sin usuario, la ven las áreas.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador de persistencia para notificaciones.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

const notificationColumns = `id, kind, title, message, recipient_user_id, recipient_area, subject_kind, subject_id,
	transfer_id, read, read_at, created_at`

// CreateBatch inserta todas las notificaciones en un solo round-trip.
func (r *NotificationRepo) CreateBatch(ctx context.Context, list []*entity.Notification) error {
	if len(list) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, n := range list {
		batch.Queue(query,
			n.ID, string(n.Kind), n.Title, n.Message, n.RecipientUserID, string(n.RecipientArea),
			string(n.SubjectKind), n.SubjectID, n.TransferID, n.Read, n.ReadAt, n.CreatedAt,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range list {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	n, err := scanNotification(r.q.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "get notification", domain.ErrNotFound)
	}
	return n, nil
}

// scopeFilter condición de visibilidad: $1 usuario, $2 áreas.
func scopeFilter(scope repository.NotificationScope) filter {
	var w filter
	w.args = []any{scope.UserID, areaStrings(scope.Areas)}
	w.raw("(recipient_user_id = $1 OR (recipient_user_id = '' AND recipient_area = ANY($2)))")
	return w
}

func (r *NotificationRepo) List(ctx context.Context, scope repository.NotificationScope, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	w := scopeFilter(scope)
	if unreadOnly {
		w.raw("NOT read")
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications` + w.where() + ` ORDER BY created_at DESC, id DESC` + w.page(limit, offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var list []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *NotificationRepo) CountUnread(ctx context.Context, scope repository.NotificationScope) (int, error) {
	w := scopeFilter(scope)
	w.raw("NOT read")
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+w.where(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead es idempotente: una notificación ya leída conserva su read_at.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE notifications SET read = TRUE, read_at = COALESCE(read_at, NOW()) WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, scope repository.NotificationScope) (int, error) {
	w := scopeFilter(scope)
	w.raw("NOT read")
	tag, err := r.q.Exec(ctx, `UPDATE notifications SET read = TRUE, read_at = NOW()`+w.where(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var n entity.Notification
	var kind, area, subjectKind string
	err := row.Scan(
		&n.ID, &kind, &n.Title, &n.Message, &n.RecipientUserID, &area, &subjectKind, &n.SubjectID,
		&n.TransferID, &n.Read, &n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Kind = entity.NotificationKind(kind)
	n.RecipientArea = entity.Area(area)
	n.SubjectKind = entity.SubjectKind(subjectKind)
	return &n, nil
}
