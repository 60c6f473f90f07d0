package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
)

// OrderStatus estado de un pedido.
type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderPaused    OrderStatus = "paused"
	OrderCompleted OrderStatus = "completed"
)

// ParseOrderStatus valida un estado recibido desde fuera del núcleo.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderActive, OrderPaused, OrderCompleted:
		return OrderStatus(s), true
	}
	return "", false
}

// Order es un lote de producción. TotalPieces es fijo desde la creación.
// CurrentArea solo es autoritativa cuando todas las piezas están en una misma área;
// si el pedido está repartido conserva la última área de residencia única.
type Order struct {
	ID          string
	Folio       string
	Client      string
	Model       string
	Fabric      string
	Color       string
	Description string
	TotalPieces int
	CurrentArea Area
	Status      OrderStatus
	PauseInfo
	CreatedBy   string
	CreatedArea Area
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	DeletedAt   *time.Time
}

var _ Subject = (*Order)(nil)

func (o *Order) Ref() SubjectRef { return SubjectRef{Kind: SubjectOrder, ID: o.ID} }
func (o *Order) Code() string    { return o.Folio }
func (o *Order) Total() int      { return o.TotalPieces }
func (o *Order) Origin() Area    { return o.CreatedArea }
func (o *Order) Residence() Area { return o.CurrentArea }
func (o *Order) Paused() bool    { return o.Status == OrderPaused }

// IsDeleted indica si el pedido fue eliminado (soft delete).
func (o *Order) IsDeleted() bool { return o.DeletedAt != nil }

func (o *Order) SetResidence(area Area, now time.Time) {
	o.CurrentArea = area
	o.UpdatedAt = now
}

func (o *Order) CanTransfer() error {
	switch o.Status {
	case OrderActive:
		return nil
	case OrderPaused:
		return fmt.Errorf("%w: el pedido %s está pausado", domain.ErrConflict, o.Folio)
	default:
		return fmt.Errorf("%w: el pedido %s ya fue completado", domain.ErrConflict, o.Folio)
	}
}

func (o *Order) CanPause() error {
	if o.Status != OrderActive {
		return fmt.Errorf("%w: solo se pausa un pedido activo (estado %s)", domain.ErrConflict, o.Status)
	}
	return nil
}

func (o *Order) CanResume() error {
	if o.Status != OrderPaused {
		return fmt.Errorf("%w: el pedido no está pausado", domain.ErrConflict)
	}
	return nil
}

func (o *Order) CanComplete() error {
	if o.Status != OrderActive {
		return fmt.Errorf("%w: solo se completa un pedido activo (estado %s)", domain.ErrConflict, o.Status)
	}
	return nil
}

func (o *Order) Pause(reason, userID string, now time.Time) {
	o.Status = OrderPaused
	o.PauseInfo.pause(reason, userID, now)
	o.UpdatedAt = now
}

func (o *Order) Resume(userID string, now time.Time) {
	o.Status = OrderActive
	o.PauseInfo.resume(userID, now)
	o.UpdatedAt = now
}

func (o *Order) Complete(now time.Time) {
	o.Status = OrderCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
}

// MarkDeleted aplica el borrado lógico.
func (o *Order) MarkDeleted(now time.Time) {
	o.DeletedAt = &now
	o.UpdatedAt = now
}
