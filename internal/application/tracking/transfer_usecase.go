package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

// Decisiones válidas al resolver una transferencia.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// TransferUseCase protocolo de transferencia: el área origen propone, el área destino acepta o rechaza.
// El libro solo cambia al aceptar.
type TransferUseCase struct {
	deps Deps
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(deps Deps) *TransferUseCase {
	return &TransferUseCase{deps: deps.withDefaults()}
}

// Propose crea una transferencia pendiente. Las piezas disponibles en el origen son las del libro
// menos las que ya van en otras transferencias pendientes desde esa misma área.
func (uc *TransferUseCase) Propose(ctx context.Context, actor entity.Actor, in dto.ProposeTransferRequest) (*dto.TransferResponse, error) {
	from, err := parseArea("from_area", in.FromArea)
	if err != nil {
		return nil, err
	}
	to, err := parseArea("to_area", in.ToArea)
	if err != nil {
		return nil, err
	}
	if in.Pieces <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if from == to {
		return nil, domain.NewValidationError("to_area", "el área destino debe ser distinta del origen")
	}
	if !to.HoldsPieces() {
		return nil, domain.NewValidationError("to_area", fmt.Sprintf("el área %q no puede recibir piezas", to))
	}
	if !actor.In(from) {
		return nil, fmt.Errorf("%w: solo un usuario de %s puede enviar sus piezas", domain.ErrForbidden, from)
	}

	var tr *entity.Transfer
	var box *outbox
	err = uc.deps.Tx.Run(ctx, func(ctx context.Context, repos Repos) error {
		s, err := lockSubject(ctx, repos, in.SubjectID)
		if err != nil {
			return err
		}
		if err := s.CanTransfer(); err != nil {
			return err
		}
		now, err := uc.deps.stamp(ctx, repos, s.Ref().ID)
		if err != nil {
			return err
		}
		box = newOutbox(now)

		if uc.deps.Policy.TransferCooldown > 0 {
			last, err := repos.Transfers.LastRequestedAt(ctx, s.Ref().ID, from, to)
			if err != nil {
				return err
			}
			if last != nil && now.Sub(*last) < uc.deps.Policy.TransferCooldown {
				wait := uc.deps.Policy.TransferCooldown - now.Sub(*last)
				return fmt.Errorf("%w: espere %ds antes de volver a enviar de %s a %s", domain.ErrRateLimited, int(wait.Seconds())+1, from, to)
			}
		}

		l, err := loadLedger(ctx, repos, s)
		if err != nil {
			return err
		}
		inFlight, err := repos.Transfers.PendingOut(ctx, s.Ref().ID, from)
		if err != nil {
			return err
		}
		if available := l.Get(from) - inFlight; in.Pieces > available {
			return fmt.Errorf("%w: %s tiene %d piezas disponibles (%d en tránsito), se pidieron %d",
				domain.ErrInsufficientPieces, from, available, inFlight, in.Pieces)
		}

		tr = &entity.Transfer{
			ID:           uuid.New().String(),
			SubjectKind:  s.Ref().Kind,
			SubjectID:    s.Ref().ID,
			SubjectFolio: s.Code(),
			FromArea:     from,
			ToArea:       to,
			Pieces:       in.Pieces,
			Notes:        strings.TrimSpace(in.Notes),
			Status:       entity.TransferPending,
			RequestedBy:  actor.UserID,
			CreatedAt:    now,
		}
		if err := repos.Transfers.Create(ctx, tr); err != nil {
			return err
		}
		ev := record(s, entity.ActionTransferRequested, actor, now,
			fmt.Sprintf("%s envía %d piezas de %s a %s", from, tr.Pieces, s.Code(), to))
		ev.FromArea, ev.ToArea, ev.Pieces, ev.TransferID = from, to, tr.Pieces, tr.ID
		if err := repos.History.Append(ctx, ev); err != nil {
			return err
		}
		box.areas(notice{
			Kind:       entity.NotifyTransferRequest,
			Title:      "Transferencia pendiente",
			Message:    fmt.Sprintf("%s envía %d piezas de %s", from, tr.Pieces, s.Code()),
			Subject:    s.Ref(),
			TransferID: tr.ID,
		}, to)
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.deps)
	uc.deps.Log.Info().Str("transfer_id", tr.ID).Str("from", string(from)).Str("to", string(to)).Int("pieces", tr.Pieces).Msg("transferencia propuesta")
	return toTransferResponse(tr), nil
}

// Resolve acepta o rechaza según decision.
func (uc *TransferUseCase) Resolve(ctx context.Context, actor entity.Actor, transferID, decision string) (*dto.TransferResponse, error) {
	switch decision {
	case DecisionAccept:
		return uc.Accept(ctx, actor, transferID)
	case DecisionReject:
		return uc.Reject(ctx, actor, transferID)
	}
	return nil, domain.NewValidationError("decision", "debe ser accept o reject")
}

// lockPending bloquea al sujeto y después a la transferencia, el mismo orden que usan los cierres
// del sujeto. Las resoluciones concurrentes se serializan en el sujeto y la segunda ve el estado final.
func lockPending(ctx context.Context, repos Repos, actor entity.Actor, transferID string) (*entity.Transfer, entity.Subject, error) {
	tr, err := repos.Transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.In(tr.ToArea) {
		return nil, nil, fmt.Errorf("%w: solo %s puede resolver esta transferencia", domain.ErrForbidden, tr.ToArea)
	}
	if tr.Status != entity.TransferPending {
		return nil, nil, fmt.Errorf("%w: transferencia en estado %s", domain.ErrAlreadyProcessed, tr.Status)
	}
	s, err := lockSubject(ctx, repos, tr.SubjectID)
	if err != nil {
		return nil, nil, err
	}
	if tr, err = repos.Transfers.GetForUpdate(ctx, transferID); err != nil {
		return nil, nil, err
	}
	if tr.Status != entity.TransferPending {
		return nil, nil, fmt.Errorf("%w: transferencia en estado %s", domain.ErrAlreadyProcessed, tr.Status)
	}
	return tr, s, nil
}

// Accept mueve las piezas en el libro. Si el sujeto queda en una sola área esa pasa a ser su área actual;
// si queda repartido se avisa con partial_transfer_warning.
func (uc *TransferUseCase) Accept(ctx context.Context, actor entity.Actor, transferID string) (*dto.TransferResponse, error) {
	var tr *entity.Transfer
	var box *outbox
	err := uc.deps.Tx.Run(ctx, func(ctx context.Context, repos Repos) error {
		var s entity.Subject
		var err error
		tr, s, err = lockPending(ctx, repos, actor, transferID)
		if err != nil {
			return err
		}
		if err := s.CanTransfer(); err != nil {
			return err
		}
		l, err := loadLedger(ctx, repos, s)
		if err != nil {
			return err
		}
		if err := l.Move(tr.FromArea, tr.ToArea, tr.Pieces); err != nil {
			return err
		}
		now, err := uc.deps.stamp(ctx, repos, s.Ref().ID)
		if err != nil {
			return err
		}
		box = newOutbox(now)
		if err := tr.Resolve(entity.TransferAccepted, actor.UserID, now); err != nil {
			return err
		}
		if err := repos.Transfers.Update(ctx, tr); err != nil {
			return err
		}
		if err := storeAreas(ctx, repos, l, now, tr.FromArea, tr.ToArea); err != nil {
			return err
		}
		if area, ok := l.Residence(); ok && area != s.Residence() {
			s.SetResidence(area, now)
			if err := saveSubject(ctx, repos, s); err != nil {
				return err
			}
		}
		ev := record(s, entity.ActionTransferAccepted, actor, now,
			fmt.Sprintf("%s recibió %d piezas de %s desde %s", tr.ToArea, tr.Pieces, s.Code(), tr.FromArea))
		ev.FromArea, ev.ToArea, ev.Pieces, ev.TransferID = tr.FromArea, tr.ToArea, tr.Pieces, tr.ID
		if err := repos.History.Append(ctx, ev); err != nil {
			return err
		}

		accepted := notice{
			Kind:       entity.NotifyTransferAccepted,
			Title:      "Transferencia aceptada",
			Message:    fmt.Sprintf("%s aceptó %d piezas de %s", tr.ToArea, tr.Pieces, s.Code()),
			Subject:    s.Ref(),
			TransferID: tr.ID,
		}
		box.users(accepted, tr.RequestedBy)
		box.areas(accepted, s.Origin(), entity.AreaAdmin)

		if l.IsSplit() {
			holders := l.Holders()
			parts := make([]string, 0, len(holders))
			for _, a := range holders {
				parts = append(parts, fmt.Sprintf("%s:%d", a, l.Get(a)))
			}
			box.areas(notice{
				Kind:       entity.NotifyPartialTransferWarning,
				Title:      "Transferencia parcial",
				Message:    fmt.Sprintf("%s quedó repartido (%s); no se puede pausar hasta consolidar", s.Code(), strings.Join(parts, ", ")),
				Subject:    s.Ref(),
				TransferID: tr.ID,
			}, append(holders, entity.AreaAdmin)...)
		}
		if terminal := uc.deps.Policy.TerminalArea; tr.ToArea == terminal && l.IsFullyConsolidated(terminal) {
			box.areas(notice{
				Kind:       entity.NotifyCompletionApprovalNeeded,
				Title:      "Listo para completar",
				Message:    fmt.Sprintf("Todas las piezas de %s están en %s", s.Code(), terminal),
				Subject:    s.Ref(),
				TransferID: tr.ID,
			}, terminal, entity.AreaAdmin)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.deps)
	uc.deps.Log.Info().Str("transfer_id", tr.ID).Str("subject_id", tr.SubjectID).Msg("transferencia aceptada")
	return toTransferResponse(tr), nil
}

// Reject cierra la transferencia sin tocar el libro.
func (uc *TransferUseCase) Reject(ctx context.Context, actor entity.Actor, transferID string) (*dto.TransferResponse, error) {
	var tr *entity.Transfer
	var box *outbox
	err := uc.deps.Tx.Run(ctx, func(ctx context.Context, repos Repos) error {
		var s entity.Subject
		var err error
		tr, s, err = lockPending(ctx, repos, actor, transferID)
		if err != nil {
			return err
		}
		now, err := uc.deps.stamp(ctx, repos, s.Ref().ID)
		if err != nil {
			return err
		}
		box = newOutbox(now)
		return rejectTransfer(ctx, repos, s, tr, actor, box, now,
			fmt.Sprintf("%s rechazó %d piezas de %s enviadas por %s", tr.ToArea, tr.Pieces, s.Code(), tr.FromArea))
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.deps)
	return toTransferResponse(tr), nil
}

func rejectTransfer(
	ctx context.Context, repos Repos, s entity.Subject, tr *entity.Transfer,
	actor entity.Actor, box *outbox, now time.Time, description string,
) error {
	if err := tr.Resolve(entity.TransferRejected, actor.UserID, now); err != nil {
		return err
	}
	if err := repos.Transfers.Update(ctx, tr); err != nil {
		return err
	}
	ev := record(s, entity.ActionTransferRejected, actor, now, description)
	ev.FromArea, ev.ToArea, ev.Pieces, ev.TransferID = tr.FromArea, tr.ToArea, tr.Pieces, tr.ID
	if err := repos.History.Append(ctx, ev); err != nil {
		return err
	}
	rejected := notice{
		Kind:       entity.NotifyTransferRejected,
		Title:      "Transferencia rechazada",
		Message:    description,
		Subject:    s.Ref(),
		TransferID: tr.ID,
	}
	box.users(rejected, tr.RequestedBy)
	box.areas(rejected, tr.FromArea)
	return nil
}

// rejectPending rechaza las transferencias pendientes de un sujeto que se elimina o cancela.
// Se llama con el sujeto ya bloqueado; cada rechazo deja su propio evento de historial.
func rejectPending(ctx context.Context, repos Repos, d Deps, s entity.Subject, actor entity.Actor, box *outbox, label string) error {
	pending := entity.TransferPending
	list, err := repos.Transfers.List(ctx, repository.TransferFilter{SubjectID: s.Ref().ID, Status: &pending})
	if err != nil {
		return err
	}
	for _, tr := range list {
		now, err := d.stamp(ctx, repos, s.Ref().ID)
		if err != nil {
			return err
		}
		if err := rejectTransfer(ctx, repos, s, tr, actor, box, now,
			fmt.Sprintf("Transferencia de %d piezas de %s a %s anulada: %s %s", tr.Pieces, tr.FromArea, tr.ToArea, s.Code(), label)); err != nil {
			return err
		}
	}
	return nil
}
