package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// defaultDocName is used when a subscriber or publisher names no
// document explicitly.
const defaultDocName = "default"

// subscriber is one WebSocket connection following a document.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newSubscriber(conn *websocket.Conn, queue int) *subscriber {
	return &subscriber{
		conn: conn,
		send: make(chan []byte, queue),
		done: make(chan struct{}),
	}
}

// enqueue queues a frame for delivery. It reports false when the
// subscriber's buffer is full.
func (s *subscriber) enqueue(frame []byte) bool {
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// handleWebSocket upgrades the connection and streams binary patch
// frames for the requested document until either side disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	docName := r.URL.Query().Get("doc")
	if docName == "" {
		docName = defaultDocName
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sub := newSubscriber(conn, s.config.SendQueue)
	s.hub.subscribe(docName, sub)
	s.metrics.subscribers.Inc()
	s.logger.Info("subscriber connected", "doc", docName, "remote", r.RemoteAddr)

	defer func() {
		s.hub.unsubscribe(docName, sub)
		s.metrics.subscribers.Dec()
		sub.close()
		conn.Close()
		s.logger.Info("subscriber disconnected", "doc", docName, "remote", r.RemoteAddr)
	}()

	go s.writePump(sub)
	s.readLoop(sub)
}

// readLoop drains incoming messages. Subscribers never send application
// data; the loop exists to surface pongs and disconnects.
func (s *Server) readLoop(sub *subscriber) {
	sub.conn.SetReadLimit(1024)
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(2 * s.config.PingInterval))
	})
	sub.conn.SetReadDeadline(time.Now().Add(2 * s.config.PingInterval))

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump delivers queued frames and keepalive pings.
func (s *Server) writePump(sub *subscriber) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := sub.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				sub.close()
				return
			}
			s.metrics.framesSent.Inc()
			s.metrics.frameBytes.Add(float64(len(frame)))

		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sub.close()
				return
			}

		case <-sub.done:
			sub.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			sub.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}
