package websocketpubsub

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Subscribers are anonymous read-only consumers.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type envelope struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// socketService broadcasts every published event to all connected websocket
// clients. Clients are read-only, inbound frames are drained and dropped.
type socketService struct {
	mtx     sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

// NewWebSocketPubSubService returns a pubsub that broadcasts events to
// websocket subscribers. Expose Handler on an HTTP mux to accept them.
func NewWebSocketPubSubService() *socketService {
	return &socketService{clients: map[*websocket.Conn]struct{}{}}
}

// Handler upgrades an HTTP request to a websocket subscription.
func (s *socketService) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		conn.Close()
		return
	}
	s.clients[conn] = struct{}{}
	s.mtx.Unlock()

	go s.drain(conn)
}

func (s *socketService) Publish(topic string, message string) error {
	frame, err := json.Marshal(envelope{
		Topic: topic,
		Data:  json.RawMessage(message),
	})
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
	return nil
}

func (s *socketService) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.closed = true
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
	return nil
}

// drain consumes inbound frames until the peer goes away, then detaches it.
func (s *socketService) drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	conn.Close()
	delete(s.clients, conn)
}

var _ ports.PubSub = (*socketService)(nil)
