package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/ledger"
)

// lockSubject bloquea la fila del sujeto (pedido o reposición) hasta el fin de la transacción.
// Todas las mutaciones del libro y del estado pasan por aquí: es la frontera de serialización por sujeto.
func lockSubject(ctx context.Context, repos Repos, id string) (entity.Subject, error) {
	order, err := repos.Orders.GetForUpdate(ctx, id)
	if err == nil {
		if order.IsDeleted() {
			return nil, fmt.Errorf("%w: pedido eliminado", domain.ErrNotFound)
		}
		return order, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	rep, err := repos.Repositions.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.IsDeleted() {
		return nil, fmt.Errorf("%w: reposición eliminada", domain.ErrNotFound)
	}
	return rep, nil
}

// readSubject igual que lockSubject pero sin bloqueo, para consultas.
func readSubject(ctx context.Context, repos Repos, id string) (entity.Subject, error) {
	order, err := repos.Orders.GetByID(ctx, id)
	if err == nil {
		if order.IsDeleted() {
			return nil, fmt.Errorf("%w: pedido eliminado", domain.ErrNotFound)
		}
		return order, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	rep, err := repos.Repositions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.IsDeleted() {
		return nil, fmt.Errorf("%w: reposición eliminada", domain.ErrNotFound)
	}
	return rep, nil
}

func saveSubject(ctx context.Context, repos Repos, s entity.Subject) error {
	switch v := s.(type) {
	case *entity.Order:
		return repos.Orders.Update(ctx, v)
	case *entity.Reposition:
		return repos.Repositions.Update(ctx, v)
	}
	return fmt.Errorf("tipo de sujeto desconocido %T", s)
}

// loadLedger reconstruye el libro del sujeto y verifica que la suma coincida con el total declarado.
func loadLedger(ctx context.Context, repos Repos, s entity.Subject) (*ledger.Ledger, error) {
	entries, err := repos.Ledger.ListBySubject(ctx, s.Ref().ID)
	if err != nil {
		return nil, err
	}
	l := ledger.FromEntries(s.Ref(), entries)
	if l.Total() != s.Total() {
		return nil, fmt.Errorf("libro de piezas inconsistente para %s: suma %d, total %d", s.Code(), l.Total(), s.Total())
	}
	return l, nil
}

// storeAreas persiste el conteo actual de las áreas tocadas por un Move (incluye las que quedan en 0).
func storeAreas(ctx context.Context, repos Repos, l *ledger.Ledger, now time.Time, areas ...entity.Area) error {
	ref := l.Subject()
	for _, area := range areas {
		entry := &entity.PieceEntry{
			SubjectKind: ref.Kind,
			SubjectID:   ref.ID,
			Area:        area,
			Pieces:      l.Get(area),
			UpdatedAt:   now,
		}
		if err := repos.Ledger.Upsert(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// initLedger crea el libro con todas las piezas en el área de origen.
func initLedger(ctx context.Context, repos Repos, s entity.Subject, now time.Time) (*ledger.Ledger, error) {
	l, err := ledger.New(s.Ref(), s.Total(), s.Origin())
	if err != nil {
		return nil, err
	}
	entry := &entity.PieceEntry{
		SubjectKind: s.Ref().Kind,
		SubjectID:   s.Ref().ID,
		Area:        s.Origin(),
		Pieces:      s.Total(),
		UpdatedAt:   now,
	}
	if err := repos.Ledger.Initialize(ctx, entry); err != nil {
		return nil, err
	}
	return l, nil
}
