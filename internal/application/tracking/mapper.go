package tracking

import (
	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/ledger"
)

func toPauseResponse(p entity.PauseInfo) dto.PauseResponse {
	return dto.PauseResponse{
		IsPaused:    p.IsPaused,
		PauseReason: p.PauseReason,
		PausedBy:    p.PausedBy,
		PausedAt:    p.PausedAt,
		ResumedBy:   p.ResumedBy,
		ResumedAt:   p.ResumedAt,
	}
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	return &dto.OrderResponse{
		ID:          o.ID,
		Folio:       o.Folio,
		Client:      o.Client,
		Model:       o.Model,
		Fabric:      o.Fabric,
		Color:       o.Color,
		Description: o.Description,
		TotalPieces: o.TotalPieces,
		CurrentArea: string(o.CurrentArea),
		Status:      string(o.Status),
		Pause:       toPauseResponse(o.PauseInfo),
		CreatedBy:   o.CreatedBy,
		CreatedArea: string(o.CreatedArea),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		CompletedAt: o.CompletedAt,
	}
}

func toRepositionResponse(r *entity.Reposition) *dto.RepositionResponse {
	if r == nil {
		return nil
	}
	pieces := make([]dto.RepositionPieceDTO, 0, len(r.Pieces))
	for _, p := range r.Pieces {
		pieces = append(pieces, dto.RepositionPieceDTO{Talla: p.Talla, Cantidad: p.Cantidad})
	}
	return &dto.RepositionResponse{
		ID:              r.ID,
		Folio:           r.Folio,
		OrderID:         r.OrderID,
		Type:            r.Type,
		Client:          r.Client,
		Model:           r.Model,
		Fabric:          r.Fabric,
		Color:           r.Color,
		Reason:          r.Reason,
		RequestingArea:  string(r.RequestingArea),
		Pieces:          pieces,
		TotalPieces:     r.TotalPieces,
		CurrentArea:     string(r.CurrentArea),
		Status:          string(r.Status),
		Pause:           toPauseResponse(r.PauseInfo),
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectionReason: r.RejectionReason,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		CompletedAt:     r.CompletedAt,
	}
}

func toSubjectResponse(s entity.Subject) *dto.SubjectResponse {
	out := &dto.SubjectResponse{Kind: string(s.Ref().Kind)}
	switch v := s.(type) {
	case *entity.Order:
		out.Order = toOrderResponse(v)
	case *entity.Reposition:
		out.Reposition = toRepositionResponse(v)
	}
	return out
}

func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	if t == nil {
		return nil
	}
	return &dto.TransferResponse{
		ID:           t.ID,
		SubjectKind:  string(t.SubjectKind),
		SubjectID:    t.SubjectID,
		SubjectFolio: t.SubjectFolio,
		FromArea:     string(t.FromArea),
		ToArea:       string(t.ToArea),
		Pieces:       t.Pieces,
		Notes:        t.Notes,
		Status:       string(t.Status),
		RequestedBy:  t.RequestedBy,
		CreatedAt:    t.CreatedAt,
		ProcessedBy:  t.ProcessedBy,
		ProcessedAt:  t.ProcessedAt,
	}
}

func toHistoryResponse(e *entity.HistoryEvent) dto.HistoryEventResponse {
	return dto.HistoryEventResponse{
		ID:          e.ID,
		SubjectKind: string(e.SubjectKind),
		SubjectID:   e.SubjectID,
		Action:      string(e.Action),
		FromArea:    string(e.FromArea),
		ToArea:      string(e.ToArea),
		Pieces:      e.Pieces,
		TransferID:  e.TransferID,
		UserID:      e.UserID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func toDistribution(l *ledger.Ledger) []dto.PieceDistributionItem {
	entries := l.Entries()
	out := make([]dto.PieceDistributionItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.PieceDistributionItem{Area: string(e.Area), Pieces: e.Pieces})
	}
	return out
}
