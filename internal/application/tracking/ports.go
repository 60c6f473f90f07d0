// Package tracking implementa los casos de uso del seguimiento de producción:
// creación de pedidos y reposiciones, transferencias de piezas entre áreas y el ciclo de vida
// (pausa, reanudación, completado). Cada operación corre en una transacción que bloquea al sujeto.
package tracking

import (
	"context"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Orders      repository.OrderRepository
	Repositions repository.RepositionRepository
	Ledger      repository.PieceLedgerRepository
	Transfers   repository.TransferRepository
	History     repository.HistoryRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún cambio (libro, estado, historial) queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// Dispatcher persiste y publica notificaciones después del Commit. No devuelve error:
// una falla de entrega nunca revierte la transición que la originó.
type Dispatcher interface {
	Dispatch(ctx context.Context, notifications []*entity.Notification)
}

// Policy parámetros de negocio configurables.
type Policy struct {
	// TransferCooldown ventana mínima entre dos propuestas del mismo par de áreas para un sujeto.
	TransferCooldown time.Duration
	// PauseReasonMinLength largo mínimo (en caracteres) del motivo de pausa.
	PauseReasonMinLength int
	// TerminalArea área desde la que se completa un sujeto.
	TerminalArea entity.Area
}

// DefaultPolicy valores observados en producción.
func DefaultPolicy() Policy {
	return Policy{
		TransferCooldown:     30 * time.Second,
		PauseReasonMinLength: 10,
		TerminalArea:         entity.AreaEnvios,
	}
}

// Deps dependencias compartidas por los casos de uso de tracking.
type Deps struct {
	Tx       TxRunner
	Notifier Dispatcher
	Policy   Policy
	Log      *logger.Logger
	Clock    *Clock
}

func (d Deps) withDefaults() Deps {
	if d.Policy.TerminalArea == "" {
		d.Policy.TerminalArea = entity.AreaEnvios
	}
	if d.Policy.PauseReasonMinLength <= 0 {
		d.Policy.PauseReasonMinLength = DefaultPolicy().PauseReasonMinLength
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Clock == nil {
		d.Clock = NewClock(nil)
	}
	return d
}

// stamp instante para una transición del sujeto ya bloqueado, posterior a su último evento de historial.
func (d Deps) stamp(ctx context.Context, repos Repos, subjectID string) (time.Time, error) {
	last, err := repos.History.LastAt(ctx, subjectID)
	if err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return d.Clock.Now(), nil
	}
	return d.Clock.After(*last), nil
}

// dispatch entrega las notificaciones ya comprometidas. Se llama siempre fuera de la transacción.
func (d Deps) dispatch(ctx context.Context, notifications []*entity.Notification) {
	if d.Notifier == nil || len(notifications) == 0 {
		return
	}
	d.Notifier.Dispatch(ctx, notifications)
}
