// Package memory implementa los repositorios sobre un estado en memoria.
// Run serializa todas las transacciones con un único mutex y trabaja sobre una copia del estado
// que solo reemplaza al original si fn termina sin error: equivale a Commit/Rollback.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

var _ tracking.TxRunner = (*Store)(nil)

// Store almacén en memoria para pruebas y para DB_DRIVER=memory.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

type state struct {
	orders        map[string]*entity.Order
	repositions   map[string]*entity.Reposition
	ledger        map[string]map[entity.Area]entity.PieceEntry
	transfers     map[string]*entity.Transfer
	transferOrder []string
	history       map[string][]*entity.HistoryEvent
	orderSeq      int
	repositionSeq int
	users         map[string]*entity.User
	notifications []*entity.Notification
}

func newState() *state {
	return &state{
		orders:      make(map[string]*entity.Order),
		repositions: make(map[string]*entity.Reposition),
		ledger:      make(map[string]map[entity.Area]entity.PieceEntry),
		transfers:   make(map[string]*entity.Transfer),
		history:     make(map[string][]*entity.HistoryEvent),
		users:       make(map[string]*entity.User),
	}
}

// clone copia lo que una transacción puede modificar. Usuarios y notificaciones no participan de Run.
func (s *state) clone() *state {
	c := &state{
		orders:        make(map[string]*entity.Order, len(s.orders)),
		repositions:   make(map[string]*entity.Reposition, len(s.repositions)),
		ledger:        make(map[string]map[entity.Area]entity.PieceEntry, len(s.ledger)),
		transfers:     make(map[string]*entity.Transfer, len(s.transfers)),
		transferOrder: append([]string(nil), s.transferOrder...),
		history:       make(map[string][]*entity.HistoryEvent, len(s.history)),
		orderSeq:      s.orderSeq,
		repositionSeq: s.repositionSeq,
		users:         s.users,
		notifications: s.notifications,
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.repositions {
		c.repositions[k] = v
	}
	for k, rows := range s.ledger {
		m := make(map[entity.Area]entity.PieceEntry, len(rows))
		for a, e := range rows {
			m[a] = e
		}
		c.ledger[k] = m
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	for k, v := range s.history {
		c.history[k] = v[:len(v):len(v)]
	}
	return c
}

// Run ejecuta fn con repositorios sobre una copia del estado; la copia se publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos tracking.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, reposFor(view{store: s, tx: work})); err != nil {
		return err
	}
	work.users = s.data.users
	work.notifications = s.data.notifications
	s.data = work
	return nil
}

// Repos repositorios fuera de transacción (lecturas de consulta).
func (s *Store) Repos() tracking.Repos {
	return reposFor(view{store: s})
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepository {
	return &UserRepository{v: view{store: s}}
}

// Notifications repositorio de notificaciones.
func (s *Store) Notifications() *NotificationRepository {
	return &NotificationRepository{v: view{store: s}}
}

func reposFor(v view) tracking.Repos {
	return tracking.Repos{
		Orders:      &orderRepo{v: v},
		Repositions: &repositionRepo{v: v},
		Ledger:      &ledgerRepo{v: v},
		Transfers:   &transferRepo{v: v},
		History:     &historyRepo{v: v},
	}
}

// view apunta al estado de una transacción o, si tx es nil, al estado comprometido bajo el mutex.
type view struct {
	store *Store
	tx    *state
}

func (v view) with(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}
