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

// RepositionUseCase flujo de aprobación de reposiciones: alta, aprobación, rechazo, cancelación y borrado.
type RepositionUseCase struct {
	deps Deps
}

// NewRepositionUseCase construye el caso de uso.
func NewRepositionUseCase(deps Deps) *RepositionUseCase {
	return &RepositionUseCase{deps: deps.withDefaults()}
}

func normalizePieces(in []dto.RepositionPieceDTO) ([]entity.RepositionPiece, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("pieces", "debe indicar al menos una talla")
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]entity.RepositionPiece, 0, len(in))
	for _, p := range in {
		talla := strings.ToUpper(strings.TrimSpace(p.Talla))
		if talla == "" {
			return nil, domain.NewValidationError("pieces", "talla vacía")
		}
		if _, dup := seen[talla]; dup {
			return nil, domain.NewValidationError("pieces", fmt.Sprintf("talla %s repetida", talla))
		}
		if p.Cantidad <= 0 {
			return nil, domain.NewValidationError("pieces", fmt.Sprintf("la cantidad de la talla %s debe ser mayor a cero", talla))
		}
		seen[talla] = struct{}{}
		out = append(out, entity.RepositionPiece{Talla: talla, Cantidad: p.Cantidad})
	}
	return out, nil
}

// Create registra la solicitud en estado pendiente. Las piezas nacen en el área solicitante.
func (uc *RepositionUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateRepositionRequest) (*dto.RepositionResponse, error) {
	if !actor.IsAdmin() && !actor.Area.HoldsPieces() {
		return nil, fmt.Errorf("%w: el área %s no puede solicitar reposiciones", domain.ErrForbidden, actor.Area)
	}
	if in.Type != entity.RepositionTypeReposicion && in.Type != entity.RepositionTypeReproceso {
		return nil, domain.NewValidationError("type", "debe ser reposicion o reproceso")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "es obligatorio")
	}
	pieces, err := normalizePieces(in.Pieces)
	if err != nil {
		return nil, err
	}
	origin, err := originFor(actor, in.OriginArea)
	if err != nil {
		return nil, err
	}

	var rep *entity.Reposition
	var box *outbox
	err = uc.deps.Tx.Run(ctx, func(ctx context.Context, repos Repos) error {
		now := uc.deps.Clock.Now()
		box = newOutbox(now)
		rep = &entity.Reposition{
			ID:             uuid.New().String(),
			Type:           in.Type,
			Client:         strings.TrimSpace(in.Client),
			Model:          strings.TrimSpace(in.Model),
			Fabric:         strings.TrimSpace(in.Fabric),
			Color:          strings.TrimSpace(in.Color),
			Reason:         reason,
			RequestingArea: origin,
			Pieces:         pieces,
			TotalPieces:    entity.SumPieces(pieces),
			CurrentArea:    origin,
			Status:         entity.RepositionPendiente,
			CreatedBy:      actor.UserID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if in.OrderID != "" {
			order, err := repos.Orders.GetByID(ctx, in.OrderID)
			if err != nil {
				return err
			}
			if order.IsDeleted() {
				return fmt.Errorf("%w: pedido eliminado", domain.ErrNotFound)
			}
			rep.OrderID = order.ID
			if rep.Client == "" {
				rep.Client = order.Client
			}
			if rep.Model == "" {
				rep.Model = order.Model
			}
		}
		if rep.Model == "" {
			return domain.NewValidationError("model", "es obligatorio")
		}
		folio, err := repos.Repositions.NextFolio(ctx)
		if err != nil {
			return err
		}
		rep.Folio = folio
		if err := repos.Repositions.Create(ctx, rep); err != nil {
			return err
		}
		if _, err := initLedger(ctx, repos, rep, now); err != nil {
			return err
		}
		ev := record(rep, entity.ActionCreated, actor, now,
			fmt.Sprintf("Reposición %s solicitada por %s (%d piezas): %s", folio, origin, rep.TotalPieces, reason))
		ev.ToArea = origin
		ev.Pieces = rep.TotalPieces
		if err := repos.History.Append(ctx, ev); err != nil {
			return err
		}
		box.areas(notice{
			Kind:    entity.NotifyRepositionCreated,
			Title:   "Nueva reposición",
			Message: fmt.Sprintf("%s solicitó la reposición %s (%d piezas)", origin, folio, rep.TotalPieces),
			Subject: rep.Ref(),
		}, entity.AreaAdmin, origin)
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.deps)
	uc.deps.Log.Info().Str("reposition_id", rep.ID).Str("folio", rep.Folio).Msg("reposición creada")
	return toRepositionResponse(rep), nil
}

// mutate bloquea la reposición, aplica fn y registra historial y notificaciones en la misma transacción.
func (uc *RepositionUseCase) mutate(
	ctx context.Context,
	id string,
	fn func(ctx context.Context, repos Repos, rep *entity.Reposition, box *outbox) error,
) (*dto.RepositionResponse, error) {
	var rep *entity.Reposition
	var box *outbox
	err := uc.deps.Tx.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		rep, err = repos.Repositions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rep.IsDeleted() {
			return fmt.Errorf("%w: reposición eliminada", domain.ErrNotFound)
		}
		now, err := uc.deps.stamp(ctx, repos, rep.ID)
		if err != nil {
			return err
		}
		box = newOutbox(now)
		if err := fn(ctx, repos, rep, box); err != nil {
			return err
		}
		return repos.Repositions.Update(ctx, rep)
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.deps)
	return toRepositionResponse(rep), nil
}

// Approve pasa la reposición a aprobado; desde ahí puede transferirse entre áreas.
func (uc *RepositionUseCase) Approve(ctx context.Context, actor entity.Actor, id string) (*dto.RepositionResponse, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: solo admin aprueba reposiciones", domain.ErrForbidden)
	}
	return uc.mutate(ctx, id, func(ctx context.Context, repos Repos, rep *entity.Reposition, box *outbox) error {
		if err := rep.Approve(actor.UserID, box.now); err != nil {
			return err
		}
		if err := repos.History.Append(ctx, record(rep, entity.ActionApproved, actor, box.now,
			fmt.Sprintf("Reposición %s aprobada", rep.Folio))); err != nil {
			return err
		}
		box.areas(notice{
			Kind:    entity.NotifyRepositionApproved,
			Title:   "Reposición aprobada",
			Message: fmt.Sprintf("La reposición %s fue aprobada", rep.Folio),
			Subject: rep.Ref(),
		}, rep.RequestingArea, entity.AreaAdmin)
		return nil
	})
}

// Reject pasa la reposición a rechazado con su motivo.
func (uc *RepositionUseCase) Reject(ctx context.Context, actor entity.Actor, id, reason string) (*dto.RepositionResponse, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: solo admin rechaza reposiciones", domain.ErrForbidden)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "es obligatorio")
	}
	return uc.mutate(ctx, id, func(ctx context.Context, repos Repos, rep *entity.Reposition, box *outbox) error {
		if err := rep.Reject(actor.UserID, reason, box.now); err != nil {
			return err
		}
		if err := repos.History.Append(ctx, record(rep, entity.ActionRejected, actor, box.now,
			fmt.Sprintf("Reposición %s rechazada: %s", rep.Folio, reason))); err != nil {
			return err
		}
		box.areas(notice{
			Kind:    entity.NotifyRepositionRejected,
			Title:   "Reposición rechazada",
			Message: fmt.Sprintf("La reposición %s fue rechazada: %s", rep.Folio, reason),
			Subject: rep.Ref(),
		}, rep.RequestingArea, entity.AreaAdmin)
		return nil
	})
}

// Cancel la retira el área solicitante (o admin) mientras no esté en un estado final.
func (uc *RepositionUseCase) Cancel(ctx context.Context, actor entity.Actor, id string) (*dto.RepositionResponse, error) {
	return uc.mutate(ctx, id, func(ctx context.Context, repos Repos, rep *entity.Reposition, box *outbox) error {
		if !actor.IsAdmin() && !actor.In(rep.RequestingArea) {
			return fmt.Errorf("%w: solo el área solicitante cancela la reposición", domain.ErrForbidden)
		}
		return uc.close(ctx, repos, rep, box, actor, entity.RepositionCancelado, entity.ActionCancelled, "cancelada")
	})
}

// Delete borrado lógico (estado eliminado). Solo admin o envios.
func (uc *RepositionUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() && !actor.In(entity.AreaEnvios) {
		return fmt.Errorf("%w: solo admin o envios eliminan reposiciones", domain.ErrForbidden)
	}
	_, err := uc.mutate(ctx, id, func(ctx context.Context, repos Repos, rep *entity.Reposition, box *outbox) error {
		return uc.close(ctx, repos, rep, box, actor, entity.RepositionEliminado, entity.ActionDeleted, "eliminada")
	})
	return err
}

func (uc *RepositionUseCase) close(
	ctx context.Context, repos Repos, rep *entity.Reposition, box *outbox,
	actor entity.Actor, status entity.RepositionStatus, action entity.HistoryAction, label string,
) error {
	if err := rep.Close(status, box.now); err != nil {
		return err
	}
	if err := repos.History.Append(ctx, record(rep, action, actor, box.now,
		fmt.Sprintf("Reposición %s %s", rep.Folio, label))); err != nil {
		return err
	}
	box.areas(statusNotice(rep, string(status)), entity.AreaAdmin, rep.RequestingArea)
	return rejectPending(ctx, repos, uc.deps, rep, actor, box, label)
}
