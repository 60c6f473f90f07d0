package repository

import (
	"context"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// OrderFilter filtros de listado de pedidos.
type OrderFilter struct {
	Status *entity.OrderStatus
	Area   *entity.Area
	Limit  int
	Offset int
}

// OrderRepository define el puerto de persistencia para Order (DIP).
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	NextFolio(ctx context.Context) (string, error)
}
