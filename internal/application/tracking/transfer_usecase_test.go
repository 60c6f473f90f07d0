package tracking_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo: corte -> bordado -> envios -> completado
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_PedidoDeCienPiezas(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(100)
	assert.Equal(t, map[string]int{"corte": 100}, f.distribution(order.ID))

	tr, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", tr.Status)
	assert.Equal(t, map[string]int{"corte": 100}, f.distribution(order.ID), "una propuesta no mueve piezas")

	_, err = f.transfers.Accept(f.ctx, bordado, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"corte": 40, "bordado": 60}, f.distribution(order.ID))

	_, err = f.lifecycle.Pause(f.ctx, corte, order.ID, "falta de hilo en la máquina")
	assert.ErrorIs(t, err, domain.ErrPartialTransferBlocksPause)

	f.move(order.ID, corte, bordado, 40)
	assert.Equal(t, map[string]int{"bordado": 100}, f.distribution(order.ID))

	paused, err := f.lifecycle.Pause(f.ctx, bordado, order.ID, "falta de hilo en la máquina")
	require.NoError(t, err)
	assert.Equal(t, "paused", paused.Order.Status)
	assert.Equal(t, "bordado", paused.Order.CurrentArea)

	_, err = f.lifecycle.Complete(f.ctx, envios, order.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "pausado no se completa")

	_, err = f.lifecycle.Resume(f.ctx, bordado, order.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.Complete(f.ctx, envios, order.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientPieces)

	f.move(order.ID, bordado, envios, 100)
	done, err := f.lifecycle.Complete(f.ctx, envios, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Order.Status)
	assert.NotNil(t, done.Order.CompletedAt)

	f.clock.advance(time.Minute)
	_, err = f.transfers.Propose(f.ctx, envios, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "envios", ToArea: "almacen", Pieces: 1,
	})
	assert.ErrorIs(t, err, domain.ErrConflict, "completado es terminal")
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_SegundaLlamadaAlreadyProcessed(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(50)
	tr, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 20,
	})
	require.NoError(t, err)

	_, err = f.transfers.Resolve(f.ctx, bordado, tr.ID, "accept")
	require.NoError(t, err)

	_, err = f.transfers.Resolve(f.ctx, bordado, tr.ID, "accept")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	_, err = f.transfers.Resolve(f.ctx, bordado, tr.ID, "reject")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	assert.Equal(t, map[string]int{"corte": 30, "bordado": 20}, f.distribution(order.ID))
}

func TestResolve_DecisionInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.transfers.Resolve(f.ctx, bordado, "x", "maybe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAccept_ConcurrenteMueveUnaVez(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(100)
	tr, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 70,
	})
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.transfers.Accept(f.ctx, bordado, tr.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, map[string]int{"corte": 30, "bordado": 70}, f.distribution(order.ID))
}

func TestAccept_ConcurrenteDistintasTransferenciasConservaTotal(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(100)
	toBordado, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 30,
	})
	require.NoError(t, err)
	toEnsamble, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "ensamble", Pieces: 40,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, job := range []struct {
		actor entity.Actor
		id    string
	}{{bordado, toBordado.ID}, {ensamble, toEnsamble.ID}} {
		wg.Add(1)
		go func(i int, actor entity.Actor, id string) {
			defer wg.Done()
			_, errs[i] = f.transfers.Accept(f.ctx, actor, id)
		}(i, job.actor, job.id)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, map[string]int{"corte": 30, "bordado": 30, "ensamble": 40}, f.distribution(order.ID))

	events, err := f.query.History(f.ctx, order.ID)
	require.NoError(t, err)
	accepted := 0
	for _, e := range events {
		if e.Action == "transfer_accepted" {
			accepted++
		}
	}
	assert.Equal(t, 2, accepted)
}

func TestReject_NoTocaElLibro(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(80)
	before := f.distribution(order.ID)

	tr, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 30, Notes: "primer lote",
	})
	require.NoError(t, err)
	out, err := f.transfers.Reject(f.ctx, bordado, tr.ID)
	require.NoError(t, err)

	assert.Equal(t, "rejected", out.Status)
	assert.Equal(t, bordado.UserID, out.ProcessedBy)
	assert.Equal(t, before, f.distribution(order.ID))

	// las piezas reservadas vuelven a estar disponibles
	f.clock.advance(time.Minute)
	_, err = f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 80,
	})
	assert.NoError(t, err)
}

func TestResolve_SoloAreaDestino(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(10)
	tr, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 5,
	})
	require.NoError(t, err)

	_, err = f.transfers.Accept(f.ctx, corte, tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.transfers.Reject(f.ctx, admin, tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.transfers.Accept(f.ctx, bordado, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propuesta
// ──────────────────────────────────────────────────────────────────────────────

func TestPropose_Validaciones(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(10)

	cases := []struct {
		name  string
		actor entity.Actor
		in    dto.ProposeTransferRequest
		want  error
	}{
		{"cero piezas", corte, dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 0}, domain.ErrInvalidInput},
		{"misma área", corte, dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "corte", Pieces: 1}, domain.ErrInvalidInput},
		{"área desconocida", corte, dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "lavado", Pieces: 1}, domain.ErrInvalidInput},
		{"destino admin", corte, dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "admin", Pieces: 1}, domain.ErrInvalidInput},
		{"usuario de otra área", bordado, dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 1}, domain.ErrForbidden},
		{"más de lo que hay", corte, dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 11}, domain.ErrInsufficientPieces},
		{"sujeto inexistente", corte, dto.ProposeTransferRequest{SubjectID: "nada", FromArea: "corte", ToArea: "bordado", Pieces: 1}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transfers.Propose(f.ctx, tc.actor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPropose_ReservaPiezasEnTransito(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(100)

	_, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 60,
	})
	require.NoError(t, err)

	_, err = f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "ensamble", Pieces: 50,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPieces)

	_, err = f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "ensamble", Pieces: 40,
	})
	assert.NoError(t, err)
}

func TestPropose_VentanaDeEspera(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(100)
	in := dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 10}

	_, err := f.transfers.Propose(f.ctx, corte, in)
	require.NoError(t, err)

	f.clock.advance(10 * time.Second)
	_, err = f.transfers.Propose(f.ctx, corte, in)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)

	// otro par de áreas no está limitado
	_, err = f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{SubjectID: order.ID, FromArea: "corte", ToArea: "ensamble", Pieces: 10})
	assert.NoError(t, err)

	f.clock.advance(25 * time.Second)
	_, err = f.transfers.Propose(f.ctx, corte, in)
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Notificaciones derivadas
// ──────────────────────────────────────────────────────────────────────────────

func TestNotificaciones_Transferencias(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(100)
	require.Len(t, f.sink.ofKind(entity.NotifyOrderCreated), 1)
	f.sink.reset()

	tr, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 60,
	})
	require.NoError(t, err)
	req := f.sink.ofKind(entity.NotifyTransferRequest)
	require.Len(t, req, 1)
	assert.Equal(t, entity.AreaBordado, req[0].RecipientArea)
	assert.Equal(t, tr.ID, req[0].TransferID)

	_, err = f.transfers.Accept(f.ctx, bordado, tr.ID)
	require.NoError(t, err)

	accepted := f.sink.ofKind(entity.NotifyTransferAccepted)
	var toUser, toAdmin bool
	for _, n := range accepted {
		toUser = toUser || n.RecipientUserID == corte.UserID
		toAdmin = toAdmin || n.RecipientArea == entity.AreaAdmin
	}
	assert.True(t, toUser, "avisa al que propuso")
	assert.True(t, toAdmin, "avisa a admin")

	warnings := f.sink.ofKind(entity.NotifyPartialTransferWarning)
	require.NotEmpty(t, warnings)
	assert.True(t, warnings[0].Kind.Urgent())

	f.sink.reset()
	f.move(order.ID, corte, bordado, 40)
	assert.Empty(t, f.sink.ofKind(entity.NotifyPartialTransferWarning), "consolidado no avisa")

	f.move(order.ID, bordado, envios, 100)
	ready := f.sink.ofKind(entity.NotifyCompletionApprovalNeeded)
	require.NotEmpty(t, ready)
	assert.Equal(t, entity.AreaEnvios, ready[0].RecipientArea)
}

func TestNotificaciones_RechazoAvisaAlOrigen(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(10)
	tr, err := f.transfers.Propose(f.ctx, corte, dto.ProposeTransferRequest{
		SubjectID: order.ID, FromArea: "corte", ToArea: "bordado", Pieces: 5,
	})
	require.NoError(t, err)
	_, err = f.transfers.Reject(f.ctx, bordado, tr.ID)
	require.NoError(t, err)

	list := f.sink.ofKind(entity.NotifyTransferRejected)
	require.Len(t, list, 2)
	assert.Equal(t, corte.UserID, list[0].RecipientUserID)
	assert.Equal(t, entity.AreaCorte, list[1].RecipientArea)
}
