package dto

import "time"

// HistoryEventResponse una entrada del historial.
type HistoryEventResponse struct {
	ID          string    `json:"id"`
	SubjectKind string    `json:"subject_kind"`
	SubjectID   string    `json:"subject_id"`
	Action      string    `json:"action"`
	FromArea    string    `json:"from_area,omitempty"`
	ToArea      string    `json:"to_area,omitempty"`
	Pieces      int       `json:"pieces,omitempty"`
	TransferID  string    `json:"transfer_id,omitempty"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
