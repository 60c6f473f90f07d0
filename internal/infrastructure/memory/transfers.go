package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

type transferRepo struct{ v view }

var _ repository.TransferRepository = (*transferRepo)(nil)

func copyTransfer(t *entity.Transfer) *entity.Transfer {
	c := *t
	return &c
}

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return domain.ErrDuplicate
		}
		st.transfers[t.ID] = copyTransfer(t)
		st.transferOrder = append(st.transferOrder, t.ID)
		return nil
	})
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.v.with(func(st *state) error {
		t, ok := st.transfers[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyTransfer(t)
		return nil
	})
	return out, err
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) Update(_ context.Context, t *entity.Transfer) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.transfers[t.ID]; !ok {
			return domain.ErrNotFound
		}
		st.transfers[t.ID] = copyTransfer(t)
		return nil
	})
}

func (r *transferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	err := r.v.with(func(st *state) error {
		for i := len(st.transferOrder) - 1; i >= 0; i-- {
			t := st.transfers[st.transferOrder[i]]
			if f.SubjectID != "" && t.SubjectID != f.SubjectID {
				continue
			}
			if f.FromArea != nil && t.FromArea != *f.FromArea {
				continue
			}
			if f.ToArea != nil && t.ToArea != *f.ToArea {
				continue
			}
			if f.Status != nil && t.Status != *f.Status {
				continue
			}
			out = append(out, copyTransfer(t))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), err
}

func (r *transferRepo) PendingOut(_ context.Context, subjectID string, from entity.Area) (int, error) {
	total := 0
	err := r.v.with(func(st *state) error {
		for _, t := range st.transfers {
			if t.SubjectID == subjectID && t.FromArea == from && t.Status == entity.TransferPending {
				total += t.Pieces
			}
		}
		return nil
	})
	return total, err
}

func (r *transferRepo) LastRequestedAt(_ context.Context, subjectID string, from, to entity.Area) (*time.Time, error) {
	var last *time.Time
	err := r.v.with(func(st *state) error {
		for _, t := range st.transfers {
			if t.SubjectID != subjectID || t.FromArea != from || t.ToArea != to {
				continue
			}
			if last == nil || t.CreatedAt.After(*last) {
				at := t.CreatedAt
				last = &at
			}
		}
		return nil
	})
	return last, err
}
