package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
)

// RepositionStatus estado del flujo de aprobación de una reposición.
type RepositionStatus string

const (
	RepositionPendiente  RepositionStatus = "pendiente"
	RepositionAprobado   RepositionStatus = "aprobado"
	RepositionRechazado  RepositionStatus = "rechazado"
	RepositionCompletado RepositionStatus = "completado"
	RepositionEliminado  RepositionStatus = "eliminado"
	RepositionCancelado  RepositionStatus = "cancelado"
)

// ParseRepositionStatus valida un estado recibido desde fuera del núcleo.
func ParseRepositionStatus(s string) (RepositionStatus, bool) {
	switch RepositionStatus(s) {
	case RepositionPendiente, RepositionAprobado, RepositionRechazado,
		RepositionCompletado, RepositionEliminado, RepositionCancelado:
		return RepositionStatus(s), true
	}
	return "", false
}

// IsTerminal indica si el estado ya no admite transiciones.
func (s RepositionStatus) IsTerminal() bool {
	switch s {
	case RepositionRechazado, RepositionCompletado, RepositionEliminado, RepositionCancelado:
		return true
	}
	return false
}

// Tipos de reposición.
const (
	RepositionTypeReposicion = "reposicion"
	RepositionTypeReproceso  = "reproceso"
)

// RepositionPiece desglose por talla.
type RepositionPiece struct {
	Talla    string
	Cantidad int
}

// Reposition es una solicitud de reposición o reproceso. Requiere aprobación antes de moverse entre áreas.
type Reposition struct {
	ID             string
	Folio          string
	OrderID        string // pedido de origen (opcional)
	Type           string
	Client         string
	Model          string
	Fabric         string
	Color          string
	Reason         string
	RequestingArea Area
	Pieces         []RepositionPiece
	TotalPieces    int
	CurrentArea    Area
	Status         RepositionStatus
	PauseInfo
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectedBy      string
	RejectionReason string
	RejectedAt      *time.Time
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

var _ Subject = (*Reposition)(nil)

func (r *Reposition) Ref() SubjectRef { return SubjectRef{Kind: SubjectReposition, ID: r.ID} }
func (r *Reposition) Code() string    { return r.Folio }
func (r *Reposition) Total() int      { return r.TotalPieces }
func (r *Reposition) Origin() Area    { return r.RequestingArea }
func (r *Reposition) Residence() Area { return r.CurrentArea }
func (r *Reposition) Paused() bool    { return r.IsPaused }

// IsDeleted indica si la reposición fue eliminada.
func (r *Reposition) IsDeleted() bool { return r.Status == RepositionEliminado }

// SumPieces suma las cantidades del desglose por talla.
func SumPieces(pieces []RepositionPiece) int {
	total := 0
	for _, p := range pieces {
		total += p.Cantidad
	}
	return total
}

func (r *Reposition) SetResidence(area Area, now time.Time) {
	r.CurrentArea = area
	r.UpdatedAt = now
}

func (r *Reposition) CanTransfer() error {
	if r.Status != RepositionAprobado {
		return fmt.Errorf("%w: la reposición %s no está aprobada (estado %s)", domain.ErrConflict, r.Folio, r.Status)
	}
	if r.IsPaused {
		return fmt.Errorf("%w: la reposición %s está pausada", domain.ErrConflict, r.Folio)
	}
	return nil
}

func (r *Reposition) CanPause() error {
	if r.Status != RepositionAprobado {
		return fmt.Errorf("%w: solo se pausa una reposición aprobada (estado %s)", domain.ErrConflict, r.Status)
	}
	if r.IsPaused {
		return fmt.Errorf("%w: la reposición ya está pausada", domain.ErrConflict)
	}
	return nil
}

func (r *Reposition) CanResume() error {
	if !r.IsPaused || r.Status.IsTerminal() {
		return fmt.Errorf("%w: la reposición no está pausada", domain.ErrConflict)
	}
	return nil
}

func (r *Reposition) CanComplete() error {
	return r.CanTransfer()
}

func (r *Reposition) Pause(reason, userID string, now time.Time) {
	r.PauseInfo.pause(reason, userID, now)
	r.UpdatedAt = now
}

func (r *Reposition) Resume(userID string, now time.Time) {
	r.PauseInfo.resume(userID, now)
	r.UpdatedAt = now
}

func (r *Reposition) Complete(now time.Time) {
	r.Status = RepositionCompletado
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// Approve pasa de pendiente a aprobado.
func (r *Reposition) Approve(userID string, now time.Time) error {
	if r.Status != RepositionPendiente {
		return fmt.Errorf("%w: la reposición está en estado %s", domain.ErrAlreadyProcessed, r.Status)
	}
	r.Status = RepositionAprobado
	r.ApprovedBy = userID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject pasa de pendiente a rechazado.
func (r *Reposition) Reject(userID, reason string, now time.Time) error {
	if r.Status != RepositionPendiente {
		return fmt.Errorf("%w: la reposición está en estado %s", domain.ErrAlreadyProcessed, r.Status)
	}
	r.Status = RepositionRechazado
	r.RejectedBy = userID
	r.RejectionReason = reason
	r.RejectedAt = &now
	r.UpdatedAt = now
	return nil
}

// Close lleva una reposición no terminal a cancelado o eliminado.
func (r *Reposition) Close(status RepositionStatus, now time.Time) error {
	if status != RepositionCancelado && status != RepositionEliminado {
		return domain.NewValidationError("status", "cierre inválido")
	}
	if r.Status.IsTerminal() {
		return fmt.Errorf("%w: la reposición ya está en estado %s", domain.ErrConflict, r.Status)
	}
	r.Status = status
	r.IsPaused = false
	r.UpdatedAt = now
	return nil
}
