package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/astra-games/crash-services/internal/crashsvc/admin"
	"github.com/astra-games/crash-services/internal/crashsvc/engine"
	"github.com/astra-games/crash-services/internal/crashsvc/store"
	"github.com/astra-games/crash-services/internal/crashsvc/wallet"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	engine  *engine.Engine
	history *store.GameHistoryStore
	wallet  *wallet.Service
	admin   *admin.Service
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func NewHandler(e *engine.Engine, history *store.GameHistoryStore, w *wallet.Service, a *admin.Service) *Handler {
	return &Handler{engine: e, history: history, wallet: w, admin: a}
}

// GetState returns the live round snapshot: state, multiplier, players and
// crash history.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.engine.CurrentState()); err != nil {
		log.Errorf("Failed to encode state response: %v", err)
	}
}

func (h *Handler) GetGameHistory(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "uid is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.history.ListByUser(r.Context(), uid, limit)
	if err != nil {
		log.Errorf("Failed to list game history for %s: %v", uid, err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to load game history"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: records})
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "uid is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := h.wallet.Transactions(r.Context(), uid, limit)
	if err != nil {
		log.Errorf("Failed to list transactions for %s: %v", uid, err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to load transactions"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: txs})
}

// GetBigWins is the public dashboard feed of recent winning outcomes under
// generated aliases.
func (h *Handler) GetBigWins(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	wins, err := h.admin.RecentBigWins(r.Context(), limit)
	if err != nil {
		log.Errorf("Failed to list big wins: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to load big wins"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: wins})
}

// GetAdminTransactions lists the newest ledger rows across all users.
func (h *Handler) GetAdminTransactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := h.admin.RecentTransactions(r.Context(), limit)
	if err != nil {
		log.Errorf("Failed to list admin transactions: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to load transactions"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: txs})
}

// GetAdminGames lists the newest game outcomes across all users.
func (h *Handler) GetAdminGames(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	games, err := h.admin.RecentGames(r.Context(), limit)
	if err != nil {
		log.Errorf("Failed to list admin games: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to load games"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: games})
}

func (h *Handler) GetAdminStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Statistics(r.Context())
	if err != nil {
		log.Errorf("Failed to load statistics: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to load statistics"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: stats})
}

func (h *Handler) GetAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.Users(r.Context())
	if err != nil {
		log.Errorf("Failed to list users: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "failed to load users"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: users})
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "crash service is running at port " + os.Getenv("CRASH_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}
