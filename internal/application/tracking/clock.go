package tracking

import (
	"sync"
	"time"
)

// Clock entrega instantes estrictamente crecientes con precisión de microsegundo (la de timestamptz),
// de modo que el historial de un sujeto quede ordenado aunque dos operaciones caigan en el mismo tick.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock construye un reloj; now nil usa time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Now devuelve el siguiente instante, nunca igual ni anterior al devuelto antes.
func (c *Clock) Now() time.Time {
	return c.After(time.Time{})
}

// After como Now, pero además estrictamente posterior a floor. Cubre eventos escritos por otra
// instancia cuyo reloj va adelantado respecto del local.
func (c *Clock) After(floor time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	if floor = floor.UTC().Truncate(time.Microsecond); !t.After(floor) {
		t = floor.Add(time.Microsecond)
	}
	c.last = t
	return t
}
