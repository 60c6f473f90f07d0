package tracking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/infrastructure/memory"
)

var (
	admin    = entity.Actor{UserID: "u-admin", Area: entity.AreaAdmin, Role: entity.RoleAdmin}
	corte    = entity.Actor{UserID: "u-corte", Area: entity.AreaCorte, Role: entity.RoleOperador}
	bordado  = entity.Actor{UserID: "u-bordado", Area: entity.AreaBordado, Role: entity.RoleOperador}
	ensamble = entity.Actor{UserID: "u-ensamble", Area: entity.AreaEnsamble, Role: entity.RoleOperador}
	calidad  = entity.Actor{UserID: "u-calidad", Area: entity.AreaCalidad, Role: entity.RoleOperador}
	envios   = entity.Actor{UserID: "u-envios", Area: entity.AreaEnvios, Role: entity.RoleOperador}
)

// fakeNow reloj manual: solo avanza con advance.
type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

// sink Dispatcher que guarda todo lo despachado.
type sink struct {
	mu   sync.Mutex
	list []*entity.Notification
}

func (s *sink) Dispatch(_ context.Context, n []*entity.Notification) {
	s.mu.Lock()
	s.list = append(s.list, n...)
	s.mu.Unlock()
}

func (s *sink) ofKind(kind entity.NotificationKind) []*entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Notification
	for _, n := range s.list {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (s *sink) reset() {
	s.mu.Lock()
	s.list = nil
	s.mu.Unlock()
}

type fixture struct {
	t           *testing.T
	ctx         context.Context
	store       *memory.Store
	clock       *fakeNow
	sink        *sink
	orders      *tracking.OrderUseCase
	repositions *tracking.RepositionUseCase
	transfers   *tracking.TransferUseCase
	lifecycle   *tracking.LifecycleUseCase
	query       *tracking.QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &fakeNow{t: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	sk := &sink{}
	deps := tracking.Deps{
		Tx:       store,
		Notifier: sk,
		Policy:   tracking.DefaultPolicy(),
		Clock:    tracking.NewClock(clock.now),
	}
	return &fixture{
		t:           t,
		ctx:         context.Background(),
		store:       store,
		clock:       clock,
		sink:        sk,
		orders:      tracking.NewOrderUseCase(deps),
		repositions: tracking.NewRepositionUseCase(deps),
		transfers:   tracking.NewTransferUseCase(deps),
		lifecycle:   tracking.NewLifecycleUseCase(deps),
		query:       tracking.NewQueryUseCase(store.Repos()),
	}
}

func (f *fixture) createOrder(total int) *dto.OrderResponse {
	f.t.Helper()
	o, err := f.orders.Create(f.ctx, corte, dto.CreateOrderRequest{Client: "Uniformes del Norte", Model: "Polo", TotalPieces: total})
	require.NoError(f.t, err)
	return o
}

// move propone y acepta; avanza el reloj para no caer en la ventana de espera.
func (f *fixture) move(subjectID string, from, to entity.Actor, pieces int) {
	f.t.Helper()
	f.clock.advance(time.Minute)
	tr, err := f.transfers.Propose(f.ctx, from, dto.ProposeTransferRequest{
		SubjectID: subjectID, FromArea: string(from.Area), ToArea: string(to.Area), Pieces: pieces,
	})
	require.NoError(f.t, err)
	_, err = f.transfers.Accept(f.ctx, to, tr.ID)
	require.NoError(f.t, err)
}

func (f *fixture) distribution(subjectID string) map[string]int {
	f.t.Helper()
	d, err := f.query.Distribution(f.ctx, subjectID)
	require.NoError(f.t, err)
	out := make(map[string]int, len(d.Distribution))
	sum := 0
	for _, item := range d.Distribution {
		out[item.Area] = item.Pieces
		sum += item.Pieces
	}
	require.Equal(f.t, d.TotalPieces, sum, "la suma del libro debe igualar el total")
	return out
}
