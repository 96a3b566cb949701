package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
)

func (db *Database) UpsertUser(ctx context.Context, userDoc *model.UserDocument) error {
	filter := bson.M{"_id": userDoc.Address}
	update := bson.M{"$set": userDoc}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.UserCollection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetUser(ctx context.Context, address string) (*model.UserDocument, error) {
	var userDoc model.UserDocument
	err := db.collection(model.UserCollection).
		FindOne(ctx, bson.M{"_id": address}).Decode(&userDoc)
	if err == mongo.ErrNoDocuments {
		return nil, &NotFoundError{
			Key:     address,
			Message: "user not found",
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", address, err)
	}
	return &userDoc, nil
}

// GetUsersByReferrer returns the users referred by the given address.
func (db *Database) GetUsersByReferrer(ctx context.Context, referrer string) ([]model.UserDocument, error) {
	cursor, err := db.collection(model.UserCollection).Find(ctx, bson.M{"referrer": referrer})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []model.UserDocument
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}
