package tracking

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/ledger"
)

// LifecycleUseCase pausa, reanudación y completado de pedidos y reposiciones.
type LifecycleUseCase struct {
	deps Deps
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(deps Deps) *LifecycleUseCase {
	return &LifecycleUseCase{deps: deps.withDefaults()}
}

type transition func(ctx context.Context, repos Repos, s entity.Subject, l *ledger.Ledger, box *outbox) error

// apply bloquea al sujeto, carga su libro, ejecuta fn y guarda el sujeto en la misma transacción.
func (uc *LifecycleUseCase) apply(ctx context.Context, subjectID string, fn transition) (*dto.SubjectResponse, error) {
	var s entity.Subject
	var box *outbox
	err := uc.deps.Tx.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		s, err = lockSubject(ctx, repos, subjectID)
		if err != nil {
			return err
		}
		l, err := loadLedger(ctx, repos, s)
		if err != nil {
			return err
		}
		now, err := uc.deps.stamp(ctx, repos, s.Ref().ID)
		if err != nil {
			return err
		}
		box = newOutbox(now)
		if err := fn(ctx, repos, s, l, box); err != nil {
			return err
		}
		return saveSubject(ctx, repos, s)
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, uc.deps)
	return toSubjectResponse(s), nil
}

// Pause congela al sujeto. Solo lo pausa el área que tiene todas sus piezas; mientras haya piezas
// en otra área por una transferencia parcial se devuelve ErrPartialTransferBlocksPause.
func (uc *LifecycleUseCase) Pause(ctx context.Context, actor entity.Actor, subjectID, reason string) (*dto.SubjectResponse, error) {
	reason = strings.TrimSpace(reason)
	if minLen := uc.deps.Policy.PauseReasonMinLength; utf8.RuneCountInString(reason) < minLen {
		return nil, domain.NewValidationError("reason", fmt.Sprintf("el motivo debe tener al menos %d caracteres", minLen))
	}
	return uc.apply(ctx, subjectID, func(ctx context.Context, repos Repos, s entity.Subject, l *ledger.Ledger, box *outbox) error {
		if err := s.CanPause(); err != nil {
			return err
		}
		if err := canPauseFrom(actor, s, l); err != nil {
			return err
		}
		s.Pause(reason, actor.UserID, box.now)
		ev := record(s, entity.ActionPaused, actor, box.now, fmt.Sprintf("%s pausado: %s", s.Code(), reason))
		ev.FromArea = actor.Area
		if !actor.Area.HoldsPieces() {
			ev.FromArea = ""
		}
		if err := repos.History.Append(ctx, ev); err != nil {
			return err
		}
		box.areas(statusNotice(s, "pausado"), entity.AreaAdmin, s.Origin())
		return nil
	})
}

func canPauseFrom(actor entity.Actor, s entity.Subject, l *ledger.Ledger) error {
	if actor.IsAdmin() {
		if _, ok := l.Residence(); !ok {
			return fmt.Errorf("%w: %s tiene piezas en %d áreas", domain.ErrPartialTransferBlocksPause, s.Code(), len(l.Holders()))
		}
		return nil
	}
	if l.Get(actor.Area) == 0 && s.Residence() != actor.Area {
		return fmt.Errorf("%w: %s no está en %s", domain.ErrForbidden, s.Code(), actor.Area)
	}
	if !l.IsFullyConsolidated(actor.Area) {
		return fmt.Errorf("%w: %s tiene %d de %d piezas en %s", domain.ErrPartialTransferBlocksPause,
			s.Code(), l.Get(actor.Area), s.Total(), actor.Area)
	}
	return nil
}

// Resume reactiva un sujeto pausado. Lo puede hacer admin o un área que tenga piezas del sujeto.
func (uc *LifecycleUseCase) Resume(ctx context.Context, actor entity.Actor, subjectID string) (*dto.SubjectResponse, error) {
	return uc.apply(ctx, subjectID, func(ctx context.Context, repos Repos, s entity.Subject, l *ledger.Ledger, box *outbox) error {
		if err := s.CanResume(); err != nil {
			return err
		}
		if !actor.IsAdmin() && l.Get(actor.Area) == 0 && !actor.In(s.Residence()) {
			return fmt.Errorf("%w: %s no tiene piezas de %s", domain.ErrForbidden, actor.Area, s.Code())
		}
		s.Resume(actor.UserID, box.now)
		if err := repos.History.Append(ctx, record(s, entity.ActionResumed, actor, box.now,
			fmt.Sprintf("%s reanudado", s.Code()))); err != nil {
			return err
		}
		box.areas(statusNotice(s, "activo"), entity.AreaAdmin, s.Origin())
		return nil
	})
}

// Complete cierra el sujeto desde el área terminal, con todas las piezas consolidadas ahí
// y sin transferencias pendientes que salgan de ella.
func (uc *LifecycleUseCase) Complete(ctx context.Context, actor entity.Actor, subjectID string) (*dto.SubjectResponse, error) {
	terminal := uc.deps.Policy.TerminalArea
	if !actor.In(terminal) {
		return nil, fmt.Errorf("%w: solo %s completa pedidos", domain.ErrForbidden, terminal)
	}
	return uc.apply(ctx, subjectID, func(ctx context.Context, repos Repos, s entity.Subject, l *ledger.Ledger, box *outbox) error {
		if err := s.CanComplete(); err != nil {
			return err
		}
		if !l.IsFullyConsolidated(terminal) {
			if l.IsSplit() {
				return fmt.Errorf("%w: %s tiene piezas en %d áreas", domain.ErrPartialTransferBlocksPause, s.Code(), len(l.Holders()))
			}
			return fmt.Errorf("%w: %s tiene %d de %d piezas en %s", domain.ErrInsufficientPieces,
				s.Code(), l.Get(terminal), s.Total(), terminal)
		}
		pending, err := repos.Transfers.PendingOut(ctx, s.Ref().ID, terminal)
		if err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("%w: %s tiene %d piezas en tránsito desde %s", domain.ErrConflict, s.Code(), pending, terminal)
		}
		s.Complete(box.now)
		ev := record(s, entity.ActionCompleted, actor, box.now, fmt.Sprintf("%s completado en %s", s.Code(), terminal))
		ev.FromArea = terminal
		ev.Pieces = s.Total()
		if err := repos.History.Append(ctx, ev); err != nil {
			return err
		}
		box.areas(statusNotice(s, "completado"), entity.AreaAdmin, s.Origin())
		return nil
	})
}
