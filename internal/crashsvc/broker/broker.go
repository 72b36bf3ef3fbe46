package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/astra-games/crash-services/internal/comm"
	"github.com/astra-games/crash-services/internal/crashsvc/engine"
	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/astra-games/crash-services/internal/crashsvc/names"
	"github.com/astra-games/crash-services/internal/crashsvc/store"
	"github.com/astra-games/crash-services/internal/crashsvc/wallet"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const gameTopic = "game.service"

type Broker struct {
	Conn          *nats.Conn
	Engine        *engine.Engine
	WalletService *wallet.Service
	UserStore     *store.UserStore
	HistoryStore  *store.GameHistoryStore
}

func NewBroker(nc *nats.Conn, walletService *wallet.Service,
	userStore *store.UserStore, historyStore *store.GameHistoryStore) *Broker {
	return &Broker{
		Conn:          nc,
		WalletService: walletService,
		UserStore:     userStore,
		HistoryStore:  historyStore,
	}
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "init":
		var request struct {
			UID  string `json:"uid"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding init request: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := b.getOrCreateUser(ctx, request.UID, request.Name)
		if err != nil {
			log.Errorf("Error [getOrCreateUser] %s", err)
			return
		}

		balance, err := b.WalletService.Balance(ctx, user.UID)
		if err != nil {
			log.Errorf("Error [WalletService.Balance] %s", err)
			return
		}

		playerData := comm.PlayerData{
			Name:    user.Name,
			UID:     user.UID,
			Balance: balance.StringFixed(2),
		}
		b.PublishInitResponse(playerData, msg.SocketId)
	case "place-bet":
		var request comm.BetRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding bet request: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := b.Engine.PlaceBet(ctx, request.UID, request.Name, request.Amount)
		res := comm.BetRes{
			Status:    "success",
			Timestamp: time.Now().UnixMilli(),
		}
		switch {
		case err == nil:
		case errors.Is(err, engine.ErrBetRejected):
			res.Status = "rejected"
			res.Message = "Round is not accepting bets"
		case errors.Is(err, wallet.ErrInvalidAmount):
			res.Status = "invalid-amount"
			res.Message = "Bet amount must be positive"
		case errors.Is(err, store.ErrInsufficientFunds):
			res.Status = "insufficient-balance"
			res.Message = "Insufficient balance for this bet"
		default:
			log.Errorf("Error [Engine.PlaceBet] for user %s: %s", request.UID, err)
			res.Status = "server-error"
			res.Message = "Failed to place bet. Please try again"
		}
		b.PublishBetRes(res, msg.SocketId)
	case "cash-out":
		var request comm.CashOutRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding cashout request: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		winnings, err := b.Engine.CashOut(ctx, request.UID)
		res := comm.CashOutRes{
			Status:    "success",
			Timestamp: time.Now().UnixMilli(),
		}
		switch {
		case err == nil:
			state := b.Engine.CurrentState()
			res.Multiplier = state.CurrentMultiplier
			res.Winnings = winnings.StringFixed(2)
		case errors.Is(err, engine.ErrCashOutRejected):
			res.Status = "rejected"
		default:
			log.Errorf("Error [Engine.CashOut] for user %s: %s", request.UID, err)
			res.Status = "server-error"
		}
		b.PublishCashOutRes(res, msg.SocketId)
	case "get-state":
		state := b.Engine.CurrentState()
		b.PublishStateResponse(state, msg.SocketId)
	case "get-balance":
		var request struct {
			UID string `json:"uid"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding balance request: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		balance, err := b.WalletService.Balance(ctx, request.UID)
		if err != nil {
			log.Errorf("Error [WalletService.Balance] %s", err)
			return
		}

		b.PublishBalance(comm.PlayerData{UID: request.UID, Balance: balance.StringFixed(2)}, msg.SocketId)
	case "get-game-history":
		var request comm.GameHistoryRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding game history request: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		records, err := b.HistoryStore.ListByUser(ctx, request.UID, request.Limit)
		res := comm.GameHistoryRes{
			Status:    "success",
			Records:   records,
			Timestamp: time.Now().UnixMilli(),
		}
		if err != nil {
			log.Errorf("Error [HistoryStore.ListByUser] for user %s: %s", request.UID, err)
			res.Status = "server-error"
			res.Records = nil
		}
		b.PublishGameHistoryRes(res, msg.SocketId)
	default:
		log.Errorf("Unknown message type: %s", msg.Type)
	}
}

func (b *Broker) getOrCreateUser(ctx context.Context, uid, name string) (*models.User, error) {
	user, err := b.UserStore.GetByUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	if name == "" {
		name = names.Generate()
	}
	created := models.User{UID: uid, Name: name, Status: "ACTIVE"}
	if err := b.UserStore.CreateUser(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (b *Broker) PublishInitResponse(p comm.PlayerData, socketId string) {
	b.publishToSocket("init-response", p, socketId)
}

func (b *Broker) PublishBalance(p comm.PlayerData, socketId string) {
	b.publishToSocket("balance-resp", p, socketId)
}

func (b *Broker) PublishBetRes(r comm.BetRes, socketId string) {
	b.publishToSocket("place-bet-response", r, socketId)
}

func (b *Broker) PublishCashOutRes(r comm.CashOutRes, socketId string) {
	b.publishToSocket("cash-out-response", r, socketId)
}

func (b *Broker) PublishStateResponse(s comm.GameState, socketId string) {
	b.publishToSocket("get-state-response", s, socketId)
}

func (b *Broker) PublishGameHistoryRes(r comm.GameHistoryRes, socketId string) {
	b.publishToSocket("get-game-history-response", r, socketId)
}

func (b *Broker) publishToSocket(msgType string, payload interface{}, socketId string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("[%s] unable to marshal payload: %s", msgType, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.publish(gameTopic, raw)
}

// Publish implements the engine's broadcast boundary: the topic becomes the
// message type and the payload travels as-is to every subscriber.
func (b *Broker) Publish(topic string, payload []byte) error {
	msg := &comm.WSMessage{
		Type: topic,
		Data: payload,
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return err
	}

	return b.publish(gameTopic, raw)
}

// consume message from socket service
func (b *Broker) SubscribSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
