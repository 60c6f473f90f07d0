package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

type ledgerRepo struct{ v view }

var _ repository.PieceLedgerRepository = (*ledgerRepo)(nil)

func (r *ledgerRepo) Initialize(_ context.Context, e *entity.PieceEntry) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.ledger[e.SubjectID]; ok {
			return domain.ErrDuplicate
		}
		st.ledger[e.SubjectID] = map[entity.Area]entity.PieceEntry{e.Area: *e}
		return nil
	})
}

func (r *ledgerRepo) ListBySubject(_ context.Context, subjectID string) ([]entity.PieceEntry, error) {
	var out []entity.PieceEntry
	err := r.v.with(func(st *state) error {
		for _, e := range st.ledger[subjectID] {
			out = append(out, e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Area < out[j].Area })
	return out, err
}

func (r *ledgerRepo) Upsert(_ context.Context, e *entity.PieceEntry) error {
	if e.Pieces < 0 {
		return domain.NewValidationError("pieces", "no puede ser negativo")
	}
	return r.v.with(func(st *state) error {
		rows, ok := st.ledger[e.SubjectID]
		if !ok {
			rows = make(map[entity.Area]entity.PieceEntry)
			st.ledger[e.SubjectID] = rows
		}
		rows[e.Area] = *e
		return nil
	})
}

type historyRepo struct{ v view }

var _ repository.HistoryRepository = (*historyRepo)(nil)

func (r *historyRepo) Append(_ context.Context, e *entity.HistoryEvent) error {
	return r.v.with(func(st *state) error {
		c := *e
		st.history[e.SubjectID] = append(st.history[e.SubjectID], &c)
		return nil
	})
}

func (r *historyRepo) ListBySubject(_ context.Context, subjectID string) ([]*entity.HistoryEvent, error) {
	var out []*entity.HistoryEvent
	err := r.v.with(func(st *state) error {
		for _, e := range st.history[subjectID] {
			c := *e
			out = append(out, &c)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (r *historyRepo) LastAt(_ context.Context, subjectID string) (*time.Time, error) {
	var last *time.Time
	err := r.v.with(func(st *state) error {
		for _, e := range st.history[subjectID] {
			if last == nil || e.CreatedAt.After(*last) {
				at := e.CreatedAt
				last = &at
			}
		}
		return nil
	})
	return last, err
}
