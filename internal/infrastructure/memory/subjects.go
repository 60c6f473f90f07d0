package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

type orderRepo struct{ v view }

var _ repository.OrderRepository = (*orderRepo)(nil)

func copyOrder(o *entity.Order) *entity.Order {
	c := *o
	return &c
}

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range st.orders {
			if existing.Folio == o.Folio {
				return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, o.Folio)
			}
		}
		st.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.v.with(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyOrder(o)
		return nil
	})
	return out, err
}

// GetForUpdate no necesita bloqueo propio: Run ya serializa las transacciones.
func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) Update(_ context.Context, o *entity.Order) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.orders[o.ID]; !ok {
			return domain.ErrNotFound
		}
		st.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func (r *orderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.v.with(func(st *state) error {
		for _, o := range st.orders {
			if o.IsDeleted() {
				continue
			}
			if f.Status != nil && o.Status != *f.Status {
				continue
			}
			if f.Area != nil && o.CurrentArea != *f.Area {
				continue
			}
			out = append(out, copyOrder(o))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), err
}

func (r *orderRepo) NextFolio(_ context.Context) (string, error) {
	var folio string
	err := r.v.with(func(st *state) error {
		st.orderSeq++
		folio = fmt.Sprintf("ORD-%06d", st.orderSeq)
		return nil
	})
	return folio, err
}

type repositionRepo struct{ v view }

var _ repository.RepositionRepository = (*repositionRepo)(nil)

func copyReposition(r *entity.Reposition) *entity.Reposition {
	c := *r
	c.Pieces = append([]entity.RepositionPiece(nil), r.Pieces...)
	return &c
}

func (r *repositionRepo) Create(_ context.Context, rep *entity.Reposition) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.repositions[rep.ID]; ok {
			return domain.ErrDuplicate
		}
		st.repositions[rep.ID] = copyReposition(rep)
		return nil
	})
}

func (r *repositionRepo) GetByID(_ context.Context, id string) (*entity.Reposition, error) {
	var out *entity.Reposition
	err := r.v.with(func(st *state) error {
		rep, ok := st.repositions[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyReposition(rep)
		return nil
	})
	return out, err
}

func (r *repositionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Reposition, error) {
	return r.GetByID(ctx, id)
}

func (r *repositionRepo) Update(_ context.Context, rep *entity.Reposition) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.repositions[rep.ID]; !ok {
			return domain.ErrNotFound
		}
		st.repositions[rep.ID] = copyReposition(rep)
		return nil
	})
}

func (r *repositionRepo) List(_ context.Context, f repository.RepositionFilter) ([]*entity.Reposition, error) {
	var out []*entity.Reposition
	err := r.v.with(func(st *state) error {
		for _, rep := range st.repositions {
			if f.Status != nil {
				if rep.Status != *f.Status {
					continue
				}
			} else if rep.IsDeleted() {
				continue
			}
			if f.OrderID != "" && rep.OrderID != f.OrderID {
				continue
			}
			out = append(out, copyReposition(rep))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), err
}

func (r *repositionRepo) CountLiveByOrder(_ context.Context, orderID string) (int, error) {
	n := 0
	err := r.v.with(func(st *state) error {
		for _, rep := range st.repositions {
			if rep.OrderID == orderID && rep.Status != entity.RepositionEliminado && rep.Status != entity.RepositionCancelado {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *repositionRepo) NextFolio(_ context.Context) (string, error) {
	var folio string
	err := r.v.with(func(st *state) error {
		st.repositionSeq++
		folio = fmt.Sprintf("REP-%06d", st.repositionSeq)
		return nil
	})
	return folio, err
}

// page aplica limit/offset a un listado ya ordenado.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
