package tracking

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// OrderUseCase alta y borrado lógico de pedidos.
type OrderUseCase struct {
	deps Deps
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(deps Deps) *OrderUseCase {
	return &OrderUseCase{deps: deps.withDefaults()}
}

// parseArea valida un área recibida del exterior.
func parseArea(field, raw string) (entity.Area, error) {
	area, ok := entity.ParseArea(raw)
	if !ok {
		return "", domain.NewValidationError(field, fmt.Sprintf("área desconocida %q", raw))
	}
	return area, nil
}

// originFor resuelve el área donde nacen las piezas. Un usuario de área solo crea en su propia área;
// admin elige un área productiva (corte por defecto).
func originFor(actor entity.Actor, raw string) (entity.Area, error) {
	if raw == "" {
		if actor.IsAdmin() {
			return entity.AreaCorte, nil
		}
		return actor.Area, nil
	}
	area, err := parseArea("origin_area", raw)
	if err != nil {
		return "", err
	}
	if !actor.IsAdmin() && area != actor.Area {
		return "", fmt.Errorf("%w: solo puede registrar en su propia área", domain.ErrForbidden)
	}
	if !area.HoldsPieces() {
		return "", domain.NewValidationError("origin_area", fmt.Sprintf("el área %q no puede tener piezas", area))
	}
	return area, nil
}

// Create registra el pedido, asigna folio y deja todas las piezas en el área de origen.
func (uc *OrderUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if !actor.IsAdmin() && !actor.Area.CanOriginateOrders() {
		return nil, fmt.Errorf("%w: el área %s no puede crear pedidos", domain.ErrForbidden, actor.Area)
	}
	client := strings.TrimSpace(in.Client)
	model := strings.TrimSpace(in.Model)
	if client == "" {
		return nil, domain.NewValidationError("client", "es obligatorio")
	}
	if model == "" {
		return nil, domain.NewValidationError("model", "es obligatorio")
	}
	if in.TotalPieces <= 0 {
		return nil, domain.NewValidationError("total_pieces", "debe ser mayor a cero")
	}
	origin, err := originFor(actor, in.OriginArea)
	if err != nil {
		return nil, err
	}

	var order *entity.Order
	var box *outbox
	err = uc.deps.Tx.Run(ctx, func(ctx context.Context, repos Repos) error {
		now := uc.deps.Clock.Now()
		box = newOutbox(now)
		folio, err := repos.Orders.NextFolio(ctx)
		if err != nil {
			return err
		}
		order = &entity.Order{
			ID:          uuid.New().String(),
			Folio:       folio,
			Client:      client,
			Model:       model,
			Fabric:      strings.TrimSpace(in.Fabric),
			Color:       strings.TrimSpace(in.Color),
			Description: strings.TrimSpace(in.Description),
			TotalPieces: in.TotalPieces,
			CurrentArea: origin,
			Status:      entity.OrderActive,
			CreatedBy:   actor.UserID,
			CreatedArea: origin,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		if _, err := initLedger(ctx, repos, order, now); err != nil {
			return err
		}
		ev := record(order, entity.ActionCreated, actor, now,
			fmt.Sprintf("Pedido %s creado con %d piezas en %s", folio, order.TotalPieces, origin))
		ev.ToArea = origin
		ev.Pieces = order.TotalPieces
		if err := repos.History.Append(ctx, ev); err != nil {
			return err
		}
		box.areas(notice{
			Kind:    entity.NotifyOrderCreated,
			Title:   "Nuevo pedido",
			Message: fmt.Sprintf("Pedido %s de %s (%d piezas) registrado en %s", folio, client, order.TotalPieces, origin),
			Subject: order.Ref(),
		}, entity.AreaAdmin)
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.deps)
	uc.deps.Log.Info().Str("order_id", order.ID).Str("folio", order.Folio).Int("pieces", order.TotalPieces).Msg("pedido creado")
	return toOrderResponse(order), nil
}

// Delete aplica el borrado lógico. Solo admin o envios; un pedido completado con reposiciones vivas no se borra.
// Las transferencias pendientes del pedido quedan rechazadas en la misma transacción.
func (uc *OrderUseCase) Delete(ctx context.Context, actor entity.Actor, orderID string) error {
	if !actor.IsAdmin() && !actor.In(entity.AreaEnvios) {
		return fmt.Errorf("%w: solo admin o envios eliminan pedidos", domain.ErrForbidden)
	}
	var box *outbox
	err := uc.deps.Tx.Run(ctx, func(ctx context.Context, repos Repos) error {
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.IsDeleted() {
			return fmt.Errorf("%w: pedido eliminado", domain.ErrNotFound)
		}
		if order.Status == entity.OrderCompleted {
			live, err := repos.Repositions.CountLiveByOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			if live > 0 {
				return fmt.Errorf("%w: el pedido %s tiene %d reposiciones activas", domain.ErrConflict, order.Folio, live)
			}
		}
		now, err := uc.deps.stamp(ctx, repos, order.ID)
		if err != nil {
			return err
		}
		box = newOutbox(now)
		order.MarkDeleted(now)
		if err := repos.Orders.Update(ctx, order); err != nil {
			return err
		}
		if err := repos.History.Append(ctx, record(order, entity.ActionDeleted, actor, now,
			fmt.Sprintf("Pedido %s eliminado", order.Folio))); err != nil {
			return err
		}
		box.areas(statusNotice(order, "eliminado"), entity.AreaAdmin, order.CreatedArea)
		return rejectPending(ctx, repos, uc.deps, order, actor, box, "eliminado")
	})
	if err != nil {
		return err
	}
	box.flush(ctx, uc.deps)
	return nil
}

// statusNotice aviso genérico de cambio de estado de un sujeto.
func statusNotice(s entity.Subject, status string) notice {
	return notice{
		Kind:    entity.NotifyStatusChanged,
		Title:   "Cambio de estado",
		Message: fmt.Sprintf("%s pasó a %s", s.Code(), status),
		Subject: s.Ref(),
	}
}
