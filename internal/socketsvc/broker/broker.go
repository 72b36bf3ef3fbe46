package broker

import (
	"encoding/json"

	"github.com/astra-games/crash-services/internal/comm"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	EachConnection func(func(socketId string, conn *websocket.Conn))
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool),
	fncEachConnection func(func(socketId string, conn *websocket.Conn))) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		EachConnection: fncEachConnection,
	}
}

// consume message from crash service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to crash service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives messages from the crash service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case comm.TopicRoundState, comm.TopicMultiplierTick, comm.TopicCrashResult,
		comm.TopicCrashHistory, comm.TopicPlayerList:
		b.broadcastMessage(message)
	case "init-response", "balance-resp", "place-bet-response", "cash-out-response",
		"get-state-response", "get-game-history-response",
		"deposit-res", "withdrawal-res", "get-transactions-res":
		b.sendMessage(message)
	default:
		log.Errorf("Unknown message type: %s", message.Type)
	}
}

// send socket message to one web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Println(err)
		}
	}
}

// fan a game event out to every connected client
func (b *Broker) broadcastMessage(m *comm.WSMessage) {
	b.EachConnection(func(socketId string, conn *websocket.Conn) {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("broadcast to socket %s failed: %v", socketId, err)
		}
	})
}
