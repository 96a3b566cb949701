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

const adminStateID = "admin_state"

func (db *Database) UpsertAdminState(ctx context.Context, owner, pool string, paused bool) error {
	filter := bson.M{"_id": adminStateID}
	update := bson.M{
		"$set": bson.M{
			"owner":        owner,
			"pool":         pool,
			"paused":       paused,
			"last_updated": time.Now().Unix(),
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.AdminStateCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

// GetAdminState returns the persisted admin configuration, or a NotFoundError
// on a fresh database.
func (db *Database) GetAdminState(ctx context.Context) (*model.AdminStateDocument, error) {
	var doc model.AdminStateDocument
	err := db.collection(model.AdminStateCollection).
		FindOne(ctx, bson.M{"_id": adminStateID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{
			Key:     adminStateID,
			Message: "admin state not initialized",
		}
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
