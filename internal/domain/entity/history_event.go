package entity

import "time"

// HistoryAction acción registrada en el historial.
type HistoryAction string

const (
	ActionCreated           HistoryAction = "created"
	ActionTransferRequested HistoryAction = "transfer_requested"
	ActionTransferAccepted  HistoryAction = "transfer_accepted"
	ActionTransferRejected  HistoryAction = "transfer_rejected"
	ActionPaused            HistoryAction = "paused"
	ActionResumed           HistoryAction = "resumed"
	ActionCompleted         HistoryAction = "completed"
	ActionApproved          HistoryAction = "approved"
	ActionRejected          HistoryAction = "rejected"
	ActionCancelled         HistoryAction = "cancelled"
	ActionDeleted           HistoryAction = "deleted"
)

// HistoryEvent registro inmutable de una transición. Nunca se actualiza ni se borra.
type HistoryEvent struct {
	ID          string
	SubjectKind SubjectKind
	SubjectID   string
	Action      HistoryAction
	FromArea    Area // vacío si no aplica
	ToArea      Area
	Pieces      int // 0 si no aplica
	TransferID  string
	UserID      string
	Description string
	CreatedAt   time.Time
}
