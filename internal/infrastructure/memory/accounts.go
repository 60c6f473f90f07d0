package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

// UserRepository usuarios en memoria.
type UserRepository struct{ v view }

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	return r.v.with(func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == u.Email {
				return domain.ErrEmailAlreadyExists
			}
		}
		c := *u
		st.users[u.ID] = &c
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.v.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		c := *u
		out = &c
		return nil
	})
	return out, err
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				c := *u
				out = &c
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return out, err
}

func (r *UserRepository) ListByArea(_ context.Context, area entity.Area) ([]*entity.User, error) {
	var out []*entity.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.Area == area {
				c := *u
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// NotificationRepository notificaciones en memoria, en orden de creación.
type NotificationRepository struct{ v view }

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) CreateBatch(_ context.Context, list []*entity.Notification) error {
	return r.v.with(func(st *state) error {
		for _, n := range list {
			c := *n
			st.notifications = append(st.notifications, &c)
		}
		return nil
	})
}

func (r *NotificationRepository) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	var out *entity.Notification
	err := r.v.with(func(st *state) error {
		for _, n := range st.notifications {
			if n.ID == id {
				c := *n
				out = &c
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func inScope(n *entity.Notification, scope repository.NotificationScope) bool {
	if n.RecipientUserID != "" {
		return n.RecipientUserID == scope.UserID
	}
	for _, a := range scope.Areas {
		if a == n.RecipientArea {
			return true
		}
	}
	return false
}

func (r *NotificationRepository) List(_ context.Context, scope repository.NotificationScope, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	err := r.v.with(func(st *state) error {
		for i := len(st.notifications) - 1; i >= 0; i-- {
			n := st.notifications[i]
			if !inScope(n, scope) || (unreadOnly && n.Read) {
				continue
			}
			c := *n
			out = append(out, &c)
		}
		return nil
	})
	return page(out, limit, offset), err
}

func (r *NotificationRepository) CountUnread(_ context.Context, scope repository.NotificationScope) (int, error) {
	count := 0
	err := r.v.with(func(st *state) error {
		for _, n := range st.notifications {
			if !n.Read && inScope(n, scope) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *NotificationRepository) MarkRead(_ context.Context, id string) error {
	return r.v.with(func(st *state) error {
		for i, n := range st.notifications {
			if n.ID != id {
				continue
			}
			if !n.Read {
				now := r.v.store.now()
				c := *n
				c.Read = true
				c.ReadAt = &now
				st.notifications[i] = &c
			}
			return nil
		}
		return domain.ErrNotFound
	})
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, scope repository.NotificationScope) (int, error) {
	changed := 0
	err := r.v.with(func(st *state) error {
		now := r.v.store.now()
		for i, n := range st.notifications {
			if n.Read || !inScope(n, scope) {
				continue
			}
			c := *n
			c.Read = true
			c.ReadAt = &now
			st.notifications[i] = &c
			changed++
		}
		return nil
	})
	return changed, err
}
