package simulator

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// hub fans frame notifications out to websocket viewers.
type hub struct {
	register   chan *viewer
	unregister chan *viewer
	broadcast  chan []byte

	mu      sync.RWMutex
	viewers map[*viewer]struct{}
}

func newHub() *hub {
	return &hub{
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		broadcast:  make(chan []byte, 64),
		viewers:    make(map[*viewer]struct{}),
	}
}

func (h *hub) run(ctx context.Context) {
	log := logrus.WithField("component", "hub")
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for v := range h.viewers {
				close(v.send)
				delete(h.viewers, v)
			}
			h.mu.Unlock()
			return
		case v := <-h.register:
			h.mu.Lock()
			h.viewers[v] = struct{}{}
			h.mu.Unlock()
			log.Debug("viewer connected")
		case v := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.viewers[v]; ok {
				delete(h.viewers, v)
				close(v.send)
			}
			h.mu.Unlock()
			log.Debug("viewer disconnected")
		case msg := <-h.broadcast:
			h.mu.Lock()
			for v := range h.viewers {
				select {
				case v.send <- msg:
				default:
					log.Warn("viewer too slow, dropping connection")
					delete(h.viewers, v)
					close(v.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// publish queues msg for every viewer without blocking the caller.
func (h *hub) publish(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		logrus.Warn("hub: broadcast queue full, dropping frame")
	}
}

type viewer struct {
	hub  *hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards incoming messages and detects closed connections.
func (v *viewer) readPump(ctx context.Context) {
	defer func() {
		select {
		case v.hub.unregister <- v:
		case <-ctx.Done():
		}
		v.conn.Close()
	}()
	v.conn.SetReadLimit(maxMessageSize)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Warn("websocket read error")
			}
			return
		}
	}
}

func (v *viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
