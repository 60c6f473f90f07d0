// Package ledger contiene la lógica pura del libro de piezas: dónde está cada pieza de un sujeto.
// No conoce la persistencia; los casos de uso cargan las filas, aplican Move y guardan el resultado.
package ledger

import (
	"fmt"
	"sort"

	"github.com/jhoicas/seguimiento-confeccion/internal/domain"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
)

// Ledger distribución de piezas de un sujeto por área. La suma se mantiene constante tras cada Move.
type Ledger struct {
	subject entity.SubjectRef
	counts  map[entity.Area]int
}

// New inicializa el libro con todas las piezas en el área de origen.
func New(subject entity.SubjectRef, total int, origin entity.Area) (*Ledger, error) {
	if total <= 0 {
		return nil, domain.NewValidationError("total_pieces", "debe ser mayor a cero")
	}
	if !origin.HoldsPieces() {
		return nil, domain.NewValidationError("origin_area", fmt.Sprintf("el área %q no puede tener piezas", origin))
	}
	return &Ledger{subject: subject, counts: map[entity.Area]int{origin: total}}, nil
}

// FromEntries reconstruye el libro a partir de las filas persistidas.
func FromEntries(subject entity.SubjectRef, entries []entity.PieceEntry) *Ledger {
	l := &Ledger{subject: subject, counts: make(map[entity.Area]int, len(entries))}
	for _, e := range entries {
		if e.Pieces != 0 {
			l.counts[e.Area] += e.Pieces
		}
	}
	return l
}

// Subject devuelve la referencia del sujeto dueño del libro.
func (l *Ledger) Subject() entity.SubjectRef { return l.subject }

// Get devuelve las piezas en el área; 0 si no hay fila.
func (l *Ledger) Get(area entity.Area) int {
	return l.counts[area]
}

// Total suma las piezas de todas las áreas.
func (l *Ledger) Total() int {
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Move descuenta amount de from y lo suma en to. Valida antes de mutar: o se aplica completo o no se aplica.
func (l *Ledger) Move(from, to entity.Area, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if from == to {
		return domain.NewValidationError("to_area", "el área destino debe ser distinta del origen")
	}
	if !to.HoldsPieces() {
		return domain.NewValidationError("to_area", fmt.Sprintf("el área %q no puede recibir piezas", to))
	}
	if available := l.counts[from]; amount > available {
		return fmt.Errorf("%w: %s tiene %d piezas, se pidieron %d", domain.ErrInsufficientPieces, from, available, amount)
	}
	l.counts[from] -= amount
	if l.counts[from] == 0 {
		delete(l.counts, from)
	}
	l.counts[to] += amount
	return nil
}

// IsFullyConsolidated es true si todas las piezas están en el área indicada.
func (l *Ledger) IsFullyConsolidated(area entity.Area) bool {
	total := l.Total()
	return total > 0 && l.counts[area] == total
}

// Residence devuelve el área única donde están todas las piezas; ok=false si el sujeto está repartido.
func (l *Ledger) Residence() (entity.Area, bool) {
	var found entity.Area
	n := 0
	for area, pieces := range l.counts {
		if pieces > 0 {
			found = area
			n++
		}
	}
	if n != 1 {
		return "", false
	}
	return found, true
}

// IsSplit indica si hay piezas en más de un área.
func (l *Ledger) IsSplit() bool {
	return len(l.Holders()) > 1
}

// Holders devuelve las áreas con piezas, en el orden del registro de áreas.
func (l *Ledger) Holders() []entity.Area {
	out := make([]entity.Area, 0, len(l.counts))
	for _, area := range entity.Areas() {
		if l.counts[area] > 0 {
			out = append(out, area)
		}
	}
	return out
}

// Entries devuelve las filas con piezas, ordenadas como el registro de áreas.
func (l *Ledger) Entries() []entity.PieceEntry {
	order := make(map[entity.Area]int)
	for i, a := range entity.Areas() {
		order[a] = i
	}
	out := make([]entity.PieceEntry, 0, len(l.counts))
	for area, pieces := range l.counts {
		out = append(out, entity.PieceEntry{
			SubjectKind: l.subject.Kind,
			SubjectID:   l.subject.ID,
			Area:        area,
			Pieces:      pieces,
		})
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].Area] < order[out[j].Area] })
	return out
}
