// Package realtime entrega notificaciones por websocket. Con Redis configurado cada instancia
// publica en un canal compartido y reenvía a sus propios clientes lo que recibe de él.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jhoicas/seguimiento-confeccion/internal/application/notification"
	"github.com/jhoicas/seguimiento-confeccion/internal/domain/entity"
	"github.com/jhoicas/seguimiento-confeccion/pkg/logger"
)

var _ notification.Publisher = (*Hub)(nil)

// Event mensaje que recibe el cliente por el websocket.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub mantiene los clientes conectados de esta instancia.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *logger.Logger
}

// NewHub crea un hub; hay que arrancar Run para aceptar clientes.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run atiende altas y bajas hasta que ctx termina; al salir cierra todas las conexiones.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return nil
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.log.Debug().Str("user_id", c.actor.UserID).Str("area", string(c.actor.Area)).Msg("ws conectado")
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Debug().Str("user_id", c.actor.UserID).Msg("ws desconectado")
		}
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount clientes conectados.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish entrega en esta instancia. Implementa notification.Publisher cuando no hay Redis.
func (h *Hub) Publish(_ context.Context, n *entity.Notification) error {
	h.Deliver(n)
	return nil
}

// Deliver envía la notificación a los clientes a quienes va dirigida. Devuelve a cuántos llegó.
// Un cliente con el buffer lleno se salta: el listado por consulta sigue teniendo la notificación.
func (h *Hub) Deliver(n *entity.Notification) int {
	msg, err := json.Marshal(Event{Type: "notification", Data: notification.ToResponse(n)})
	if err != nil {
		h.log.Error().Err(err).Msg("serializar notificación")
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.clients {
		if !notification.Visible(c.actor, n) {
			continue
		}
		select {
		case c.send <- msg:
			sent++
		default:
			h.log.Warn().Str("user_id", c.actor.UserID).Msg("ws buffer lleno, se descarta")
		}
	}
	return sent
}
