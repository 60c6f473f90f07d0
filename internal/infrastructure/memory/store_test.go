package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
	"github.com/jhoicas/seguimiento-confeccion/internal/infrastructure/memory"
)

func order(id string) *entity.Order {
	return &entity.Order{ID: id, Folio: "F-" + id, TotalPieces: 10, CurrentArea: entity.AreaCorte, CreatedArea: entity.AreaCorte, Status: entity.OrderActive}
}

func TestRun_RollbackDescartaCambios(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Run(ctx, func(ctx context.Context, repos tracking.Repos) error {
		require.NoError(t, repos.Orders.Create(ctx, order("o1")))
		require.NoError(t, repos.Ledger.Initialize(ctx, &entity.PieceEntry{SubjectID: "o1", Area: entity.AreaCorte, Pieces: 10}))
		require.NoError(t, repos.History.Append(ctx, &entity.HistoryEvent{ID: "h1", SubjectID: "o1", Action: entity.ActionCreated}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Repos().Orders.GetByID(ctx, "o1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	entries, err := store.Repos().Ledger.ListBySubject(ctx, "o1")
	require.NoError(t, err)
	assert.Empty(t, entries)
	events, err := store.Repos().History.ListBySubject(ctx, "o1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRun_CommitPublica(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Run(ctx, func(ctx context.Context, repos tracking.Repos) error {
		folio, err := repos.Orders.NextFolio(ctx)
		require.NoError(t, err)
		o := order("o1")
		o.Folio = folio
		return repos.Orders.Create(ctx, o)
	}))

	got, err := store.Repos().Orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-000001", got.Folio)

	// una copia devuelta no altera el almacén
	got.Status = entity.OrderCompleted
	again, err := store.Repos().Orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderActive, again.Status)
}

func TestRun_FolioNoSeConsumeEnRollback(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_ = store.Run(ctx, func(ctx context.Context, repos tracking.Repos) error {
		_, _ = repos.Orders.NextFolio(ctx)
		return errors.New("falla")
	})
	var folio string
	require.NoError(t, store.Run(ctx, func(ctx context.Context, repos tracking.Repos) error {
		var err error
		folio, err = repos.Orders.NextFolio(ctx)
		return err
	}))
	assert.Equal(t, "ORD-000001", folio)
}

func TestLedger_InitializeDosVeces(t *testing.T) {
	repos := memory.NewStore().Repos()
	ctx := context.Background()
	e := &entity.PieceEntry{SubjectID: "s", Area: entity.AreaCorte, Pieces: 5}

	require.NoError(t, repos.Ledger.Initialize(ctx, e))
	assert.ErrorIs(t, repos.Ledger.Initialize(ctx, e), domain.ErrDuplicate)

	assert.ErrorIs(t, repos.Ledger.Upsert(ctx, &entity.PieceEntry{SubjectID: "s", Area: entity.AreaCorte, Pieces: -1}), domain.ErrInvalidInput)
}

func TestTransfers_PendingOutYUltimaPropuesta(t *testing.T) {
	repos := memory.NewStore().Repos()
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	add := func(id string, to entity.Area, pieces int, status entity.TransferStatus, at time.Time) {
		require.NoError(t, repos.Transfers.Create(ctx, &entity.Transfer{
			ID: id, SubjectID: "s", FromArea: entity.AreaCorte, ToArea: to, Pieces: pieces, Status: status, CreatedAt: at,
		}))
	}
	add("t1", entity.AreaBordado, 10, entity.TransferPending, t0)
	add("t2", entity.AreaEnsamble, 5, entity.TransferPending, t0.Add(time.Minute))
	add("t3", entity.AreaBordado, 7, entity.TransferRejected, t0.Add(2*time.Minute))

	n, err := repos.Transfers.PendingOut(ctx, "s", entity.AreaCorte)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	last, err := repos.Transfers.LastRequestedAt(ctx, "s", entity.AreaCorte, entity.AreaBordado)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(t0.Add(2*time.Minute)))

	none, err := repos.Transfers.LastRequestedAt(ctx, "s", entity.AreaBordado, entity.AreaCorte)
	require.NoError(t, err)
	assert.Nil(t, none)

	pending := entity.TransferPending
	list, err := repos.Transfers.List(ctx, repository.TransferFilter{SubjectID: "s", Status: &pending})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].ID)
}

func TestUsers_EmailUnico(t *testing.T) {
	users := memory.NewStore().Users()
	ctx := context.Background()
	u := &entity.User{ID: "u1", Email: "ana@taller.mx", Area: entity.AreaCorte}

	require.NoError(t, users.Create(ctx, u))
	assert.ErrorIs(t, users.Create(ctx, &entity.User{ID: "u2", Email: "ana@taller.mx"}), domain.ErrEmailAlreadyExists)

	_, err := users.GetByEmail(ctx, "otro@taller.mx")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	list, err := users.ListByArea(ctx, entity.AreaCorte)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
