package dto

import "time"

// NotificationResponse salida de una notificación.
type NotificationResponse struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Urgent          bool       `json:"urgent"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	RecipientUserID string     `json:"recipient_user_id,omitempty"`
	RecipientArea   string     `json:"recipient_area,omitempty"`
	SubjectKind     string     `json:"subject_kind,omitempty"`
	SubjectID       string     `json:"subject_id,omitempty"`
	TransferID      string     `json:"transfer_id,omitempty"`
	Read            bool       `json:"read"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NotificationListResponse listado paginado de notificaciones.
type NotificationListResponse struct {
	Items  []NotificationResponse `json:"items"`
	Unread int                    `json:"unread"`
	Page   PageResponse           `json:"page"`
}
