package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
)

func (db *Database) UpsertStake(ctx context.Context, stakeDoc *model.StakeDocument) error {
	filter := bson.M{"_id": stakeDoc.ID}
	update := bson.M{"$set": stakeDoc}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.StakeCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetStake(
	ctx context.Context, stakerAddress string, stakeID uint64,
) (*model.StakeDocument, error) {
	id := model.StakeDocumentID(stakerAddress, stakeID)

	var stakeDoc model.StakeDocument
	err := db.collection(model.StakeCollection).
		FindOne(ctx, bson.M{"_id": id}).Decode(&stakeDoc)
	if err == mongo.ErrNoDocuments {
		return nil, &NotFoundError{
			Key:     id,
			Message: "stake not found",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stake %s: %w", id, err)
	}
	return &stakeDoc, nil
}

// GetStakesByStaker returns every stake of one staker, stake id ascending.
func (db *Database) GetStakesByStaker(
	ctx context.Context, stakerAddress string,
) ([]model.StakeDocument, error) {
	filter := bson.M{"staker_address": stakerAddress}
	opts := options.Find().SetSort(bson.M{"stake_id": 1})

	cursor, err := db.collection(model.StakeCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stakes []model.StakeDocument
	if err := cursor.All(ctx, &stakes); err != nil {
		return nil, err
	}

	return stakes, nil
}
