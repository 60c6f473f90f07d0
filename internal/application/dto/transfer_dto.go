package dto

import "time"

// ProposeTransferRequest body para POST /api/transfers.
type ProposeTransferRequest struct {
	SubjectID string `json:"subject_id" validate:"required,uuid"`
	FromArea  string `json:"from_area" validate:"required"`
	ToArea    string `json:"to_area" validate:"required"`
	Pieces    int    `json:"pieces" validate:"required,min=1"`
	Notes     string `json:"notes" validate:"omitempty,max=500"`
}

// TransferResponse salida de una transferencia.
type TransferResponse struct {
	ID           string     `json:"id"`
	SubjectKind  string     `json:"subject_kind"`
	SubjectID    string     `json:"subject_id"`
	SubjectFolio string     `json:"subject_folio"`
	FromArea     string     `json:"from_area"`
	ToArea       string     `json:"to_area"`
	Pieces       int        `json:"pieces"`
	Notes        string     `json:"notes,omitempty"`
	Status       string     `json:"status"`
	RequestedBy  string     `json:"requested_by"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedBy  string     `json:"processed_by,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

// PieceDistributionItem piezas de un sujeto en un área.
type PieceDistributionItem struct {
	Area   string `json:"area"`
	Pieces int    `json:"pieces"`
}

// PieceDistributionResponse salida de GET /api/subjects/:id/pieces.
type PieceDistributionResponse struct {
	SubjectID    string                  `json:"subject_id"`
	SubjectKind  string                  `json:"subject_kind"`
	TotalPieces  int                     `json:"total_pieces"`
	Consolidated bool                    `json:"consolidated"`
	Distribution []PieceDistributionItem `json:"distribution"`
}
