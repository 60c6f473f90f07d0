package dto

import "time"

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Client      string `json:"client" validate:"required,max=200"`
	Model       string `json:"model" validate:"required,max=120"`
	Fabric      string `json:"fabric" validate:"omitempty,max=120"`
	Color       string `json:"color" validate:"omitempty,max=80"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	TotalPieces int    `json:"total_pieces" validate:"required,min=1"`
	OriginArea  string `json:"origin_area,omitempty"`
}

// PauseRequest body para pausar un pedido o una reposición.
type PauseRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// PauseResponse metadatos de pausa.
type PauseResponse struct {
	IsPaused    bool       `json:"is_paused"`
	PauseReason string     `json:"pause_reason,omitempty"`
	PausedBy    string     `json:"paused_by,omitempty"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	ResumedBy   string     `json:"resumed_by,omitempty"`
	ResumedAt   *time.Time `json:"resumed_at,omitempty"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID          string                  `json:"id"`
	Folio       string                  `json:"folio"`
	Client      string                  `json:"client"`
	Model       string                  `json:"model"`
	Fabric      string                  `json:"fabric,omitempty"`
	Color       string                  `json:"color,omitempty"`
	Description string                  `json:"description,omitempty"`
	TotalPieces int                     `json:"total_pieces"`
	CurrentArea string                  `json:"current_area"`
	Status      string                  `json:"status"`
	Pause       PauseResponse           `json:"pause"`
	CreatedBy   string                  `json:"created_by"`
	CreatedArea string                  `json:"created_area"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	Pieces      []PieceDistributionItem `json:"pieces,omitempty"`
}

// OrderListResponse listado paginado de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
