package model

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pgold-labs/staking-ledger/internal/config"
)

type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	EventCollection: {
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "type", Value: 1}}},
	},
	UserCollection: {
		{Keys: bson.D{{Key: "referrer", Value: 1}}},
	},
	StakeCollection: {
		{Keys: bson.D{{Key: "staker_address", Value: 1}, {Key: "stake_id", Value: 1}}, Unique: true},
	},
	AdminStateCollection:   nil,
	OverallStatsCollection: nil,
}

// Setup creates the collections and their indexes. It is idempotent and runs
// on every server start before the journal replay.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)
	for name, idxs := range collections {
		if err := createCollection(dbCtx, database, name); err != nil {
			return err
		}
		for _, idx := range idxs {
			if err := createIndex(dbCtx, database, name, idx); err != nil {
				return err
			}
		}
	}

	return client.Disconnect(dbCtx)
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	// CreateCollection fails if the collection exists; that is fine here
	if err := database.CreateCollection(ctx, name); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.HasErrorCode(48) { // NamespaceExists
			return nil
		}
		return err
	}
	return nil
}

func createIndex(ctx context.Context, database *mongo.Database, collection string, idx index) error {
	model := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: options.Index().SetUnique(idx.Unique),
	}
	_, err := database.Collection(collection).Indexes().CreateOne(ctx, model)
	return err
}
