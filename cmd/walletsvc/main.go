package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	config "github.com/astra-games/crash-services/configs"
	"github.com/astra-games/crash-services/internal/comm"
	"github.com/astra-games/crash-services/internal/crashsvc/store"
	"github.com/astra-games/crash-services/internal/crashsvc/wallet"
	"github.com/astra-games/crash-services/internal/db"
	natscli "github.com/astra-games/crash-services/internal/nats"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "wallet"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

// TelegramNotifier handles sending notifications to multiple chats
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(botToken string, chatIDs []int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %v", err)
	}

	return &TelegramNotifier{
		bot:     bot,
		chatIDs: chatIDs,
	}, nil
}

// SendNotification sends a message to all configured chat IDs
func (tn *TelegramNotifier) SendNotification(message string) {
	if tn == nil || tn.bot == nil {
		return
	}

	for _, chatID := range tn.chatIDs {
		go func(cid int64) {
			msg := tgbotapi.NewMessage(cid, message)
			msg.ParseMode = "Markdown"
			if _, err := tn.bot.Send(msg); err != nil {
				log.Errorf("Failed to send telegram message to chat %d: %v", cid, err)
			}
		}(chatID)
	}
}

// Initialize Telegram notifier
func initTelegramNotifier() *TelegramNotifier {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Warn("TELEGRAM_BOT_TOKEN not set, notifications disabled")
		return nil
	}

	// Parse chat IDs from environment variables
	var chatIDs []int64
	for i := 1; i <= 3; i++ {
		chatIDStr := os.Getenv(fmt.Sprintf("TELEGRAM_CHAT_ID_%d", i))
		if chatIDStr != "" {
			if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
				chatIDs = append(chatIDs, chatID)
			} else {
				log.Errorf("Invalid TELEGRAM_CHAT_ID_%d format: %v", i, err)
			}
		}
	}

	if len(chatIDs) == 0 {
		log.Warn("No valid telegram chat IDs found, notifications disabled")
		return nil
	}

	notifier, err := NewTelegramNotifier(botToken, chatIDs)
	if err != nil {
		log.Errorf("Failed to initialize Telegram notifier: %v", err)
		return nil
	}

	log.Infof("Telegram notifier initialized with %d chat IDs", len(chatIDs))
	return notifier
}

var telegramNotifier *TelegramNotifier

func main() {
	// Initialize Telegram notifier
	telegramNotifier = initTelegramNotifier()

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	walletService := wallet.NewService(store.NewLedgerStore(dbpool))

	// Connect to NATS
	nc, err := natscli.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Conn.Close()
	log.Infof("NATS connected at %s", nc.Url)

	// Subscribe to payment service
	_, err = nc.Conn.Subscribe("payment.service", func(m *nats.Msg) {
		handlePaymentService(nc, walletService, m)
	})
	if err != nil {
		log.Fatalf("Subscribe payment.service error: %v", err)
	}

	select {}
}

func handlePaymentService(nc *natscli.Nats, svc *wallet.Service, msg *nats.Msg) {
	// Decode wrapper
	var ws comm.WSMessage
	if err := json.Unmarshal(msg.Data, &ws); err != nil {
		log.Errorf("invalid WSMessage: %v", err)
		return
	}

	switch ws.Type {
	case "deposit":
		handleDeposit(nc, svc, ws)
	case "withdrawal":
		handleWithdrawal(nc, svc, ws)
	case "get-transactions":
		handleGetTransactions(nc, svc, ws)
	default:
		log.Warnf("unknown message type: %s", ws.Type)
	}
}

func handleDeposit(nc *natscli.Nats, svc *wallet.Service, ws comm.WSMessage) {
	var req comm.PaymentRequest
	if err := json.Unmarshal(ws.Data, &req); err != nil {
		log.Errorf("invalid PaymentRequest: %v", err)
		publishPaymentRes(nc, "deposit-res", comm.PaymentRes{
			Status:    "invalid-request",
			Message:   "Invalid request format",
			Timestamp: time.Now().Unix(),
		}, ws.SocketId)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	balance, err := svc.Deposit(ctx, req.UID, req.Amount)
	if err != nil {
		publishPaymentRes(nc, "deposit-res", paymentErrorRes(err), ws.SocketId)
		return
	}

	// Send Telegram notification for successful deposit
	if telegramNotifier != nil {
		message := fmt.Sprintf(
			"💰 *DEPOSIT SUCCESS*\n\n"+
				"👤 *User:* %s\n"+
				"💵 *Amount:* %s\n"+
				"📊 *New Balance:* %s\n"+
				"⏰ *Time:* %s",
			req.UID,
			req.Amount.StringFixed(2),
			balance.StringFixed(2),
			time.Now().Format("2006-01-02 15:04:05"),
		)
		telegramNotifier.SendNotification(message)
	}

	publishPaymentRes(nc, "deposit-res", comm.PaymentRes{
		Status:    "success",
		Message:   "Deposit processed successfully",
		Balance:   balance.StringFixed(2),
		Timestamp: time.Now().Unix(),
	}, ws.SocketId)
}

func handleWithdrawal(nc *natscli.Nats, svc *wallet.Service, ws comm.WSMessage) {
	var req comm.PaymentRequest
	if err := json.Unmarshal(ws.Data, &req); err != nil {
		log.Errorf("invalid PaymentRequest: %v", err)
		publishPaymentRes(nc, "withdrawal-res", comm.PaymentRes{
			Status:    "invalid-request",
			Message:   "Invalid request format",
			Timestamp: time.Now().Unix(),
		}, ws.SocketId)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	balance, err := svc.Withdraw(ctx, req.UID, req.Amount)
	if err != nil {
		publishPaymentRes(nc, "withdrawal-res", paymentErrorRes(err), ws.SocketId)
		return
	}

	// Send Telegram notification for successful withdrawal
	if telegramNotifier != nil {
		message := fmt.Sprintf(
			"💸 *WITHDRAWAL SUCCESS*\n\n"+
				"👤 *User:* %s\n"+
				"💵 *Amount:* %s\n"+
				"📊 *New Balance:* %s\n"+
				"⏰ *Time:* %s",
			req.UID,
			req.Amount.StringFixed(2),
			balance.StringFixed(2),
			time.Now().Format("2006-01-02 15:04:05"),
		)
		telegramNotifier.SendNotification(message)
	}

	publishPaymentRes(nc, "withdrawal-res", comm.PaymentRes{
		Status:    "success",
		Message:   "Withdrawal processed successfully",
		Balance:   balance.StringFixed(2),
		Timestamp: time.Now().Unix(),
	}, ws.SocketId)
}

func handleGetTransactions(nc *natscli.Nats, svc *wallet.Service, ws comm.WSMessage) {
	var req comm.TransactionsRequest
	if err := json.Unmarshal(ws.Data, &req); err != nil {
		log.Errorf("invalid TransactionsRequest: %v", err)
		publishTransactionsRes(nc, comm.TransactionsRes{
			Status:    "invalid-request",
			Timestamp: time.Now().Unix(),
		}, ws.SocketId)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	txs, err := svc.Transactions(ctx, req.UID, req.Limit)
	if err != nil {
		log.Errorf("list transactions error: %v", err)
		status := "server-error"
		if errors.Is(err, store.ErrUserNotFound) {
			status = "user-not-found"
		}
		publishTransactionsRes(nc, comm.TransactionsRes{
			Status:    status,
			Timestamp: time.Now().Unix(),
		}, ws.SocketId)
		return
	}

	publishTransactionsRes(nc, comm.TransactionsRes{
		Status:       "success",
		Transactions: txs,
		Timestamp:    time.Now().Unix(),
	}, ws.SocketId)
}

// paymentErrorRes maps wallet errors to client-facing statuses.
func paymentErrorRes(err error) comm.PaymentRes {
	res := comm.PaymentRes{Timestamp: time.Now().Unix()}
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount):
		res.Status = "invalid-amount"
		res.Message = "Amount must be positive"
	case errors.Is(err, store.ErrInsufficientFunds):
		res.Status = "insufficient-balance"
		res.Message = "Insufficient balance"
	case errors.Is(err, store.ErrUserNotFound):
		res.Status = "user-not-found"
		res.Message = "User not found"
	default:
		log.Errorf("payment error: %v", err)
		res.Status = "server-error"
		res.Message = "Failed to process request. Please try again"
	}
	return res
}

func publishPaymentRes(n *natscli.Nats, msgType string, p comm.PaymentRes, socketId string) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Errorf("unable to marshal PaymentRes: %v", err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error marshaling WSMessage: %s", err)
		return
	}

	n.Conn.Publish("game.service", payload)
}

func publishTransactionsRes(n *natscli.Nats, p comm.TransactionsRes, socketId string) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Errorf("unable to marshal TransactionsRes: %v", err)
		return
	}

	msg := &comm.WSMessage{
		Type:     "get-transactions-res",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error marshaling WSMessage: %s", err)
		return
	}

	n.Conn.Publish("game.service", payload)
}
