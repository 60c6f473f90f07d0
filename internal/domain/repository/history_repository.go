package repository

import (
	"context"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// HistoryRepository historial append-only. No expone Update ni Delete.
type HistoryRepository interface {
	Append(ctx context.Context, event *entity.HistoryEvent) error
	// ListBySubject devuelve el historial en orden cronológico.
	ListBySubject(ctx context.Context, subjectID string) ([]*entity.HistoryEvent, error)
	// LastAt fecha del evento más reciente del sujeto; nil si no tiene historial.
	LastAt(ctx context.Context, subjectID string) (*time.Time, error)
}
