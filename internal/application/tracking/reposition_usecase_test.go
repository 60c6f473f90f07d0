package tracking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/application/tracking"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

func newReposition(t *testing.T, f *fixture) *dto.RepositionResponse {
	t.Helper()
	rep, err := f.repositions.Create(f.ctx, calidad, dto.CreateRepositionRequest{
		Type:   "reproceso",
		Model:  "Polo",
		Reason: "costura abierta en hombro",
		Pieces: []dto.RepositionPieceDTO{{Talla: "s", Cantidad: 3}, {Talla: "M", Cantidad: 4}},
	})
	require.NoError(t, err)
	return rep
}

func TestCreateReposition_Pendiente(t *testing.T) {
	f := newFixture(t)
	rep := newReposition(t, f)

	assert.Equal(t, "REP-000001", rep.Folio)
	assert.Equal(t, "pendiente", rep.Status)
	assert.Equal(t, 7, rep.TotalPieces)
	assert.Equal(t, "calidad", rep.RequestingArea)
	assert.Equal(t, "S", rep.Pieces[0].Talla)
	assert.Equal(t, map[string]int{"calidad": 7}, f.distribution(rep.ID))

	created := f.sink.ofKind(entity.NotifyRepositionCreated)
	require.Len(t, created, 2)
}

func TestCreateReposition_Validaciones(t *testing.T) {
	f := newFixture(t)
	base := dto.CreateRepositionRequest{Type: "reposicion", Model: "Polo", Reason: "falla"}

	cases := map[string]dto.CreateRepositionRequest{
		"sin tallas":     base,
		"talla repetida": withPieces(base, dto.RepositionPieceDTO{Talla: "M", Cantidad: 1}, dto.RepositionPieceDTO{Talla: "m", Cantidad: 2}),
		"cantidad cero":  withPieces(base, dto.RepositionPieceDTO{Talla: "L", Cantidad: 0}),
		"tipo inválido": func() dto.CreateRepositionRequest {
			in := withPieces(base, dto.RepositionPieceDTO{Talla: "L", Cantidad: 1})
			in.Type = "otro"
			return in
		}(),
		"sin motivo": func() dto.CreateRepositionRequest {
			in := withPieces(base, dto.RepositionPieceDTO{Talla: "L", Cantidad: 1})
			in.Reason = " "
			return in
		}(),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.repositions.Create(f.ctx, calidad, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	in := withPieces(base, dto.RepositionPieceDTO{Talla: "L", Cantidad: 1})
	in.OrderID = "00000000-0000-0000-0000-000000000000"
	_, err := f.repositions.Create(f.ctx, calidad, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func withPieces(in dto.CreateRepositionRequest, pieces ...dto.RepositionPieceDTO) dto.CreateRepositionRequest {
	in.Pieces = pieces
	return in
}

func TestReposition_AprobacionHabilitaTransferencias(t *testing.T) {
	f := newFixture(t)
	rep := newReposition(t, f)

	_, err := f.transfers.Propose(f.ctx, calidad, dto.ProposeTransferRequest{
		SubjectID: rep.ID, FromArea: "calidad", ToArea: "ensamble", Pieces: 7,
	})
	assert.ErrorIs(t, err, domain.ErrConflict, "pendiente no se transfiere")

	_, err = f.repositions.Approve(f.ctx, calidad, rep.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	approved, err := f.repositions.Approve(f.ctx, admin, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "aprobado", approved.Status)
	assert.Equal(t, admin.UserID, approved.ApprovedBy)

	_, err = f.repositions.Approve(f.ctx, admin, rep.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	f.move(rep.ID, calidad, ensamble, 7)
	f.move(rep.ID, ensamble, envios, 7)
	done, err := f.lifecycle.Complete(f.ctx, envios, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "reposition", done.Kind)
	assert.Equal(t, "completado", done.Reposition.Status)

	_, err = f.repositions.Cancel(f.ctx, calidad, rep.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "completado es terminal")
}

func TestReposition_Rechazo(t *testing.T) {
	f := newFixture(t)
	rep := newReposition(t, f)

	_, err := f.repositions.Reject(f.ctx, admin, rep.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rejected, err := f.repositions.Reject(f.ctx, admin, rep.ID, "no procede")
	require.NoError(t, err)
	assert.Equal(t, "rechazado", rejected.Status)
	assert.Equal(t, "no procede", rejected.RejectionReason)

	_, err = f.repositions.Approve(f.ctx, admin, rep.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	notes := f.sink.ofKind(entity.NotifyRepositionRejected)
	require.Len(t, notes, 2)
	assert.Equal(t, entity.AreaCalidad, notes[0].RecipientArea)
}

func TestReposition_PausaEsEstadoDeMaterial(t *testing.T) {
	f := newFixture(t)
	rep := newReposition(t, f)
	_, err := f.repositions.Approve(f.ctx, admin, rep.ID)
	require.NoError(t, err)

	out, err := f.lifecycle.Pause(f.ctx, calidad, rep.ID, "esperando tela de reposición")
	require.NoError(t, err)
	assert.True(t, out.Reposition.Pause.IsPaused)
	assert.Equal(t, "aprobado", out.Reposition.Status)

	_, err = f.transfers.Propose(f.ctx, calidad, dto.ProposeTransferRequest{
		SubjectID: rep.ID, FromArea: "calidad", ToArea: "ensamble", Pieces: 1,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.lifecycle.Resume(f.ctx, calidad, rep.ID)
	require.NoError(t, err)
}

func TestReposition_CancelarYEliminar(t *testing.T) {
	f := newFixture(t)
	rep := newReposition(t, f)

	_, err := f.repositions.Cancel(f.ctx, corte, rep.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	cancelled, err := f.repositions.Cancel(f.ctx, calidad, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelado", cancelled.Status)

	other := newReposition(t, f)
	assert.ErrorIs(t, f.repositions.Delete(f.ctx, calidad, other.ID), domain.ErrForbidden)
	require.NoError(t, f.repositions.Delete(f.ctx, envios, other.ID))

	_, err = f.query.GetReposition(f.ctx, other.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.query.ListRepositions(f.ctx, "", "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, rep.ID, list.Items[0].ID)

	events, err := f.query.History(f.ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"created", "deleted"}, []string{events[0].Action, events[1].Action})
}

func TestReposition_CancelarRechazaTransferenciasPendientes(t *testing.T) {
	f := newFixture(t)
	rep := newReposition(t, f)
	_, err := f.repositions.Approve(f.ctx, admin, rep.ID)
	require.NoError(t, err)

	first, err := f.transfers.Propose(f.ctx, calidad, dto.ProposeTransferRequest{
		SubjectID: rep.ID, FromArea: "calidad", ToArea: "ensamble", Pieces: 3,
	})
	require.NoError(t, err)
	second, err := f.transfers.Propose(f.ctx, calidad, dto.ProposeTransferRequest{
		SubjectID: rep.ID, FromArea: "calidad", ToArea: "plancha", Pieces: 4,
	})
	require.NoError(t, err)
	f.sink.reset()

	cancelled, err := f.repositions.Cancel(f.ctx, calidad, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelado", cancelled.Status)

	for _, id := range []string{first.ID, second.ID} {
		got, err := f.query.GetTransfer(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "rejected", got.Status)
	}
	pending, err := f.query.ListTransfers(f.ctx, tracking.TransferQuery{SubjectID: rep.ID, Status: "pending"})
	require.NoError(t, err)
	assert.Empty(t, pending)

	events, err := f.query.History(f.ctx, rep.ID)
	require.NoError(t, err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{"created", "approved", "transfer_requested", "transfer_requested",
		"cancelled", "transfer_rejected", "transfer_rejected"}, actions)

	// un aviso por transferencia al área origen y otro al usuario que la propuso
	assert.Len(t, f.sink.ofKind(entity.NotifyTransferRejected), 4)
	assert.Equal(t, map[string]int{"calidad": 7}, f.distribution(rep.ID))
}
