package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
)

// TransferStatus estado de una transferencia de piezas.
type TransferStatus string

const (
	TransferPending  TransferStatus = "pending"
	TransferAccepted TransferStatus = "accepted"
	TransferRejected TransferStatus = "rejected"
)

// ParseTransferStatus valida un estado recibido desde fuera del núcleo.
func ParseTransferStatus(s string) (TransferStatus, bool) {
	switch TransferStatus(s) {
	case TransferPending, TransferAccepted, TransferRejected:
		return TransferStatus(s), true
	}
	return "", false
}

// Transfer es un movimiento propuesto de piezas entre dos áreas. Solo el área destino lo resuelve.
type Transfer struct {
	ID           string
	SubjectKind  SubjectKind
	SubjectID    string
	SubjectFolio string
	FromArea     Area
	ToArea       Area
	Pieces       int
	Notes        string
	Status       TransferStatus
	RequestedBy  string
	CreatedAt    time.Time
	ProcessedBy  string
	ProcessedAt  *time.Time
}

// Subject devuelve la referencia al sujeto transferido.
func (t *Transfer) Subject() SubjectRef {
	return SubjectRef{Kind: t.SubjectKind, ID: t.SubjectID}
}

// Resolve marca la transferencia como aceptada o rechazada. Los estados finales no cambian.
func (t *Transfer) Resolve(status TransferStatus, userID string, now time.Time) error {
	if t.Status != TransferPending {
		return fmt.Errorf("%w: transferencia en estado %s", domain.ErrAlreadyProcessed, t.Status)
	}
	if status != TransferAccepted && status != TransferRejected {
		return domain.NewValidationError("decision", "debe ser accept o reject")
	}
	t.Status = status
	t.ProcessedBy = userID
	t.ProcessedAt = &now
	return nil
}
