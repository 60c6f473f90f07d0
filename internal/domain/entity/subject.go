package entity

import "time"

// SubjectKind distingue los dos tipos de sujeto que tienen libro de piezas: pedidos y reposiciones.
type SubjectKind string

const (
	SubjectOrder      SubjectKind = "order"
	SubjectReposition SubjectKind = "reposition"
)

// Valid indica si el tipo es conocido.
func (k SubjectKind) Valid() bool {
	return k == SubjectOrder || k == SubjectReposition
}

// SubjectRef referencia a un pedido o a una reposición por id.
type SubjectRef struct {
	Kind SubjectKind
	ID   string
}

// PauseInfo metadatos de pausa. En reposiciones equivale al estado de material.
type PauseInfo struct {
	IsPaused    bool
	PauseReason string
	PausedBy    string
	PausedAt    *time.Time
	ResumedBy   string
	ResumedAt   *time.Time
}

func (p *PauseInfo) pause(reason, userID string, now time.Time) {
	p.IsPaused = true
	p.PauseReason = reason
	p.PausedBy = userID
	p.PausedAt = &now
	p.ResumedBy = ""
	p.ResumedAt = nil
}

func (p *PauseInfo) resume(userID string, now time.Time) {
	p.IsPaused = false
	p.PauseReason = ""
	p.PausedBy = ""
	p.PausedAt = nil
	p.ResumedBy = userID
	p.ResumedAt = &now
}

// Subject es el contrato común de Order y Reposition sobre el que opera el ciclo de vida.
type Subject interface {
	Ref() SubjectRef
	Code() string
	Total() int
	Origin() Area
	Residence() Area
	SetResidence(area Area, now time.Time)
	Paused() bool

	// CanTransfer valida que el sujeto admita proponer o aceptar transferencias.
	CanTransfer() error
	// CanPause valida el estado para pausar.
	CanPause() error
	// CanResume valida el estado para reanudar.
	CanResume() error
	// CanComplete valida el estado para completar.
	CanComplete() error

	Pause(reason, userID string, now time.Time)
	Resume(userID string, now time.Time)
	Complete(now time.Time)
}
