package repository

import (
	"context"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// RepositionFilter filtros de listado de reposiciones.
type RepositionFilter struct {
	Status  *entity.RepositionStatus
	OrderID string
	Limit   int
	Offset  int
}

// RepositionRepository define el puerto de persistencia para Reposition (DIP).
type RepositionRepository interface {
	Create(ctx context.Context, reposition *entity.Reposition) error
	GetByID(ctx context.Context, id string) (*entity.Reposition, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Reposition, error)
	Update(ctx context.Context, reposition *entity.Reposition) error
	List(ctx context.Context, filter RepositionFilter) ([]*entity.Reposition, error)
	// CountLiveByOrder cuenta reposiciones no eliminadas ni canceladas que referencian al pedido.
	CountLiveByOrder(ctx context.Context, orderID string) (int, error)
	NextFolio(ctx context.Context) (string, error)
}
