package entity

import "time"

// NotificationKind tipo de notificación.
type NotificationKind string

const (
	NotifyOrderCreated             NotificationKind = "order_created"
	NotifyRepositionCreated        NotificationKind = "reposition_created"
	NotifyRepositionApproved       NotificationKind = "reposition_approved"
	NotifyRepositionRejected       NotificationKind = "reposition_rejected"
	NotifyTransferRequest          NotificationKind = "transfer_request"
	NotifyTransferAccepted         NotificationKind = "transfer_accepted"
	NotifyTransferRejected         NotificationKind = "transfer_rejected"
	NotifyPartialTransferWarning   NotificationKind = "partial_transfer_warning"
	NotifyCompletionApprovalNeeded NotificationKind = "completion_approval_needed"
	NotifyStatusChanged            NotificationKind = "status_changed"
)

// Urgent indica los tipos que el cliente debe destacar.
func (k NotificationKind) Urgent() bool {
	return k == NotifyPartialTransferWarning || k == NotifyCompletionApprovalNeeded
}

// Notification aviso derivado de una transición. Va dirigido a un usuario o a un área;
// solo cambia al marcarse como leído.
type Notification struct {
	ID              string
	Kind            NotificationKind
	Title           string
	Message         string
	RecipientUserID string
	RecipientArea   Area
	SubjectKind     SubjectKind
	SubjectID       string
	TransferID      string
	Read            bool
	ReadAt          *time.Time
	CreatedAt       time.Time
}
