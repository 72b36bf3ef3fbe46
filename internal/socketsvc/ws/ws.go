package ws

import (
	"encoding/json"
	"sync"

	"github.com/astra-games/crash-services/internal/comm"
	"github.com/astra-games/crash-services/internal/socketsvc/broker"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "init", "place-bet", "cash-out", "get-state", "get-balance", "get-game-history":
		s.forward(socketId, message, "socket.service")
	case "deposit", "withdrawal", "get-transactions":
		s.forward(socketId, message, "payment.service")
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// forward stamps the socket id on the message and relays it to the owning
// service over NATS.
func (s *Ws) forward(socketId string, msg *comm.WSMessage, topic string) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
		return
	}

	log.Debugf("forwarded %s message for socket %s to topic %s", msg.Type, socketId, topic)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

// EachConnection visits every live connection, for broadcast fan-out.
func (s *Ws) EachConnection(f func(socketId string, conn *websocket.Conn)) {
	s.connMap.Range(func(key, value interface{}) bool {
		f(key.(string), value.(*websocket.Conn))
		return true // continue iterating
	})
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}
