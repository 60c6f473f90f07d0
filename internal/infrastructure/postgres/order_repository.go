package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para pedidos.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, folio, client, model, fabric, color, description, total_pieces, current_area, status,
	is_paused, pause_reason, paused_by, paused_at, resumed_by, resumed_at,
	created_by, created_area, created_at, updated_at, completed_at, deleted_at`

// Create inserta el pedido.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.Folio, o.Client, o.Model, o.Fabric, o.Color, o.Description, o.TotalPieces,
		string(o.CurrentArea), string(o.Status),
		o.IsPaused, o.PauseReason, o.PausedBy, o.PausedAt, o.ResumedBy, o.ResumedAt,
		o.CreatedBy, string(o.CreatedArea), o.CreatedAt, o.UpdatedAt, o.CompletedAt, o.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, o.Folio)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido, incluidos los eliminados.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "get order", domain.ErrNotFound)
	}
	return o, nil
}

// GetForUpdate obtiene el pedido con bloqueo de fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "get order for update", domain.ErrNotFound)
	}
	return o, nil
}

// Update guarda los campos mutables del pedido.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET current_area = $2, status = $3,
			is_paused = $4, pause_reason = $5, paused_by = $6, paused_at = $7, resumed_by = $8, resumed_at = $9,
			updated_at = $10, completed_at = $11, deleted_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		o.ID, string(o.CurrentArea), string(o.Status),
		o.IsPaused, o.PauseReason, o.PausedBy, o.PausedAt, o.ResumedBy, o.ResumedAt,
		o.UpdatedAt, o.CompletedAt, o.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve pedidos no eliminados, los más recientes primero.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	var w filter
	w.raw("deleted_at IS NULL")
	if f.Status != nil {
		w.add("status = ?", string(*f.Status))
	}
	if f.Area != nil {
		w.add("current_area = ?", string(*f.Area))
	}
	query := `SELECT ` + orderColumns + ` FROM orders` + w.where() + ` ORDER BY created_at DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// NextFolio toma el siguiente número de la secuencia. Un rollback deja un hueco en la numeración.
func (r *OrderRepo) NextFolio(ctx context.Context) (string, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('order_folio_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next order folio: %w", err)
	}
	return fmt.Sprintf("ORD-%06d", n), nil
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	var currentArea, status, createdArea string
	err := row.Scan(
		&o.ID, &o.Folio, &o.Client, &o.Model, &o.Fabric, &o.Color, &o.Description, &o.TotalPieces,
		&currentArea, &status,
		&o.IsPaused, &o.PauseReason, &o.PausedBy, &o.PausedAt, &o.ResumedBy, &o.ResumedAt,
		&o.CreatedBy, &createdArea, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt, &o.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	o.CurrentArea = entity.Area(currentArea)
	o.Status = entity.OrderStatus(status)
	o.CreatedArea = entity.Area(createdArea)
	return &o, nil
}
