package store

import (
	"context"
	"time"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gameHistoryCollection = "game_history"

type GameHistoryStore struct {
	coll *mongo.Collection
}

func NewGameHistoryStore(db *mongo.Database) *GameHistoryStore {
	return &GameHistoryStore{coll: db.Collection(gameHistoryCollection)}
}

// historyDoc is the bson shape; amounts are stored as fixed-point strings.
type historyDoc struct {
	UserID    string    `bson:"user_id"`
	GameType  string    `bson:"game_type"`
	BetAmount string    `bson:"bet_amount"`
	WinAmount string    `bson:"win_amount"`
	Result    string    `bson:"result"`
	CreatedAt time.Time `bson:"created_at"`
}

func (s *GameHistoryStore) Record(ctx context.Context, h *models.GameHistory) error {
	doc := historyDoc{
		UserID:    h.UserID,
		GameType:  string(h.GameType),
		BetAmount: h.BetAmount.StringFixed(2),
		WinAmount: h.WinAmount.StringFixed(2),
		Result:    h.Result,
		CreatedAt: h.CreatedAt,
	}

	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

func (s *GameHistoryStore) ListByUser(ctx context.Context, uid string, limit int) ([]models.GameHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.list(ctx, bson.M{"user_id": uid}, limit)
}

// ListRecent returns the newest records across all users.
func (s *GameHistoryStore) ListRecent(ctx context.Context, limit int) ([]models.GameHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.list(ctx, bson.M{}, limit)
}

// ListRecentWins returns the newest records with a positive win amount.
// Amounts are fixed-2 strings, so only an exact "0.00" sorts at or below the
// threshold.
func (s *GameHistoryStore) ListRecentWins(ctx context.Context, limit int) ([]models.GameHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.list(ctx, bson.M{"win_amount": bson.M{"$gt": "0.00"}}, limit)
}

func (s *GameHistoryStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

func (s *GameHistoryStore) list(ctx context.Context, filter bson.M, limit int) ([]models.GameHistory, error) {
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.GameHistory
	for cur.Next(ctx) {
		var doc historyDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}

		bet, err := decimal.NewFromString(doc.BetAmount)
		if err != nil {
			return nil, err
		}
		win, err := decimal.NewFromString(doc.WinAmount)
		if err != nil {
			return nil, err
		}

		records = append(records, models.GameHistory{
			UserID:    doc.UserID,
			GameType:  models.GameType(doc.GameType),
			BetAmount: bet,
			WinAmount: win,
			Result:    doc.Result,
			CreatedAt: doc.CreatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
