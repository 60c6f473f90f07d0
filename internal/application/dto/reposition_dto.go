package dto

import "time"

// RepositionPieceDTO cantidad por talla.
type RepositionPieceDTO struct {
	Talla    string `json:"talla" validate:"required,max=20"`
	Cantidad int    `json:"cantidad" validate:"required,min=1"`
}

// CreateRepositionRequest body para POST /api/repositions.
type CreateRepositionRequest struct {
	OrderID    string               `json:"order_id,omitempty" validate:"omitempty,uuid"`
	Type       string               `json:"type" validate:"required,oneof=reposicion reproceso"`
	Client     string               `json:"client" validate:"omitempty,max=200"`
	Model      string               `json:"model" validate:"required,max=120"`
	Fabric     string               `json:"fabric" validate:"omitempty,max=120"`
	Color      string               `json:"color" validate:"omitempty,max=80"`
	Reason     string               `json:"reason" validate:"required,max=1000"`
	OriginArea string               `json:"origin_area,omitempty"`
	Pieces     []RepositionPieceDTO `json:"pieces" validate:"required,min=1,dive"`
}

// RejectRepositionRequest body para rechazar una reposición.
type RejectRepositionRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// RepositionResponse salida de una reposición.
type RepositionResponse struct {
	ID              string                  `json:"id"`
	Folio           string                  `json:"folio"`
	OrderID         string                  `json:"order_id,omitempty"`
	Type            string                  `json:"type"`
	Client          string                  `json:"client,omitempty"`
	Model           string                  `json:"model"`
	Fabric          string                  `json:"fabric,omitempty"`
	Color           string                  `json:"color,omitempty"`
	Reason          string                  `json:"reason"`
	RequestingArea  string                  `json:"requesting_area"`
	Pieces          []RepositionPieceDTO    `json:"pieces"`
	TotalPieces     int                     `json:"total_pieces"`
	CurrentArea     string                  `json:"current_area"`
	Status          string                  `json:"status"`
	Pause           PauseResponse           `json:"pause"`
	ApprovedBy      string                  `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time              `json:"approved_at,omitempty"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
	CreatedBy       string                  `json:"created_by"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	CompletedAt     *time.Time              `json:"completed_at,omitempty"`
	Distribution    []PieceDistributionItem `json:"distribution,omitempty"`
}

// RepositionListResponse listado paginado de reposiciones.
type RepositionListResponse struct {
	Items []RepositionResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
