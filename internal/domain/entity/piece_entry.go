package entity

import "time"

// PieceEntry fila del libro de piezas: cuántas piezas de un sujeto hay en un área.
type PieceEntry struct {
	SubjectKind SubjectKind
	SubjectID   string
	Area        Area
	Pieces      int
	UpdatedAt   time.Time
}
