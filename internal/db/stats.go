package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
)

// UpsertOverallStats updates or inserts overall stats
func (db *Database) UpsertOverallStats(
	ctx context.Context,
	totalUsers uint64,
	activeStakes uint64,
	totalStaked string,
) error {
	filter := bson.M{"_id": "overall_stats"}
	update := bson.M{
		"$set": bson.M{
			"total_users":   totalUsers,
			"active_stakes": activeStakes,
			"total_staked":  totalStaked,
			"last_updated":  time.Now().Unix(),
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.OverallStatsCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetOverallStats(ctx context.Context) (*model.OverallStatsDocument, error) {
	var doc model.OverallStatsDocument
	err := db.collection(model.OverallStatsCollection).
		FindOne(ctx, bson.M{"_id": "overall_stats"}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// a fresh database simply has no activity yet
		return &model.OverallStatsDocument{ID: "overall_stats", TotalStaked: "0"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
