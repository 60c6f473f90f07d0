package tracking

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/dto"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/repository"
)

// QueryUseCase lecturas sin bloqueo: distribución de piezas, historial y listados.
type QueryUseCase struct {
	repos Repos
}

// NewQueryUseCase construye el caso de uso con repositorios fuera de transacción.
func NewQueryUseCase(repos Repos) *QueryUseCase {
	return &QueryUseCase{repos: repos}
}

// Distribution devuelve {área, piezas} del sujeto en el orden del registro de áreas.
func (uc *QueryUseCase) Distribution(ctx context.Context, subjectID string) (*dto.PieceDistributionResponse, error) {
	s, err := readSubject(ctx, uc.repos, subjectID)
	if err != nil {
		return nil, err
	}
	l, err := loadLedger(ctx, uc.repos, s)
	if err != nil {
		return nil, err
	}
	_, consolidated := l.Residence()
	return &dto.PieceDistributionResponse{
		SubjectID:    s.Ref().ID,
		SubjectKind:  string(s.Ref().Kind),
		TotalPieces:  s.Total(),
		Consolidated: consolidated,
		Distribution: toDistribution(l),
	}, nil
}

// History devuelve el historial cronológico del sujeto. Un sujeto eliminado conserva su historial.
func (uc *QueryUseCase) History(ctx context.Context, subjectID string) ([]dto.HistoryEventResponse, error) {
	if _, err := uc.repos.Orders.GetByID(ctx, subjectID); err != nil {
		if _, err2 := uc.repos.Repositions.GetByID(ctx, subjectID); err2 != nil {
			return nil, err
		}
	}
	events, err := uc.repos.History.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toHistoryResponse(e))
	}
	return out, nil
}

// GetOrder devuelve el pedido con su distribución de piezas.
func (uc *QueryUseCase) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsDeleted() {
		return nil, fmt.Errorf("%w: pedido eliminado", domain.ErrNotFound)
	}
	l, err := loadLedger(ctx, uc.repos, order)
	if err != nil {
		return nil, err
	}
	out := toOrderResponse(order)
	out.Pieces = toDistribution(l)
	return out, nil
}

// ListOrders lista pedidos no eliminados; status y area son filtros opcionales.
func (uc *QueryUseCase) ListOrders(ctx context.Context, status, area string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	filter := repository.OrderFilter{Limit: page.Limit, Offset: page.Offset}
	if status != "" {
		st, ok := entity.ParseOrderStatus(status)
		if !ok {
			return nil, domain.NewValidationError("status", fmt.Sprintf("estado desconocido %q", status))
		}
		filter.Status = &st
	}
	if area != "" {
		a, err := parseArea("area", area)
		if err != nil {
			return nil, err
		}
		filter.Area = &a
	}
	orders, err := uc.repos.Orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// GetReposition devuelve la reposición con su distribución de piezas.
func (uc *QueryUseCase) GetReposition(ctx context.Context, id string) (*dto.RepositionResponse, error) {
	rep, err := uc.repos.Repositions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.IsDeleted() {
		return nil, fmt.Errorf("%w: reposición eliminada", domain.ErrNotFound)
	}
	l, err := loadLedger(ctx, uc.repos, rep)
	if err != nil {
		return nil, err
	}
	out := toRepositionResponse(rep)
	out.Distribution = toDistribution(l)
	return out, nil
}

// ListRepositions lista reposiciones; sin filtro de estado se omiten las eliminadas.
func (uc *QueryUseCase) ListRepositions(ctx context.Context, status, orderID string, page dto.PageRequest) (*dto.RepositionListResponse, error) {
	page.DefaultPage()
	filter := repository.RepositionFilter{OrderID: orderID, Limit: page.Limit, Offset: page.Offset}
	if status != "" {
		st, ok := entity.ParseRepositionStatus(status)
		if !ok {
			return nil, domain.NewValidationError("status", fmt.Sprintf("estado desconocido %q", status))
		}
		filter.Status = &st
	}
	reps, err := uc.repos.Repositions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RepositionResponse, 0, len(reps))
	for _, r := range reps {
		items = append(items, *toRepositionResponse(r))
	}
	return &dto.RepositionListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// GetTransfer devuelve una transferencia por id.
func (uc *QueryUseCase) GetTransfer(ctx context.Context, id string) (*dto.TransferResponse, error) {
	tr, err := uc.repos.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(tr), nil
}

// TransferQuery filtros del listado de transferencias (todos opcionales).
type TransferQuery struct {
	SubjectID string
	FromArea  string
	ToArea    string
	Status    string
	Page      dto.PageRequest
}

// ListTransfers lista transferencias, las más recientes primero.
func (uc *QueryUseCase) ListTransfers(ctx context.Context, q TransferQuery) ([]dto.TransferResponse, error) {
	q.Page.DefaultPage()
	filter := repository.TransferFilter{SubjectID: q.SubjectID, Limit: q.Page.Limit, Offset: q.Page.Offset}
	if q.FromArea != "" {
		a, err := parseArea("from_area", q.FromArea)
		if err != nil {
			return nil, err
		}
		filter.FromArea = &a
	}
	if q.ToArea != "" {
		a, err := parseArea("to_area", q.ToArea)
		if err != nil {
			return nil, err
		}
		filter.ToArea = &a
	}
	if q.Status != "" {
		st, ok := entity.ParseTransferStatus(q.Status)
		if !ok {
			return nil, domain.NewValidationError("status", fmt.Sprintf("estado desconocido %q", q.Status))
		}
		filter.Status = &st
	}
	list, err := uc.repos.Transfers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTransferResponse(t))
	}
	return out, nil
}

// Areas devuelve el registro de áreas.
func Areas() []dto.AreaResponse {
	areas := entity.Areas()
	out := make([]dto.AreaResponse, 0, len(areas))
	for _, a := range areas {
		out = append(out, dto.AreaResponse{Name: string(a), HoldsPieces: a.HoldsPieces(), Originates: a.CanOriginateOrders()})
	}
	return out
}
