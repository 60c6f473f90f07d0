package repository

import (
	"context"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// TransferFilter filtros de listado de transferencias.
type TransferFilter struct {
	SubjectID string
	FromArea  *entity.Area
	ToArea    *entity.Area
	Status    *entity.TransferStatus
	Limit     int
	Offset    int
}

// TransferRepository define el puerto de persistencia para Transfer (DIP).
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	// GetForUpdate bloquea la transferencia: dos resoluciones simultáneas se serializan aquí.
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	Update(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
	// PendingOut suma las piezas en tránsito (pending) que salen del área para el sujeto.
	PendingOut(ctx context.Context, subjectID string, from entity.Area) (int, error)
	// LastRequestedAt fecha de la última propuesta entre el mismo par de áreas; nil si no hay.
	LastRequestedAt(ctx context.Context, subjectID string, from, to entity.Area) (*time.Time, error)
}
