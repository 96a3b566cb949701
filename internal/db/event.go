package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pgold-labs/staking-ledger/internal/db/model"
)

// SaveEvent appends one journal entry. The sequence number is the primary
// key, so a concurrent writer racing on the same seq surfaces as a
// DuplicateKeyError instead of a silent overwrite.
func (db *Database) SaveEvent(ctx context.Context, eventDoc *model.EventDocument) error {
	_, err := db.collection(model.EventCollection).InsertOne(ctx, eventDoc)
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{
			Key:     fmt.Sprintf("%d", eventDoc.Seq),
			Message: "event with this sequence number already exists",
		}
	}
	return err
}

// IterateEvents streams journal entries with seq > afterSeq in ascending
// order into the handler. The handler returning an error stops the iteration.
func (db *Database) IterateEvents(
	ctx context.Context, afterSeq uint64, handler func(*model.EventDocument) error,
) error {
	filter := bson.M{"_id": bson.M{"$gt": afterSeq}}
	opts := options.Find().SetSort(bson.M{"_id": 1})

	cursor, err := db.collection(model.EventCollection).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc model.EventDocument
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		if err := handler(&doc); err != nil {
			return err
		}
	}

	return cursor.Err()
}

// GetEventsByUser returns the journal entries of one user, newest first.
func (db *Database) GetEventsByUser(
	ctx context.Context, userAddress string, limit int64,
) ([]model.EventDocument, error) {
	filter := bson.M{"user": userAddress}
	opts := options.Find().SetSort(bson.M{"_id": -1}).SetLimit(limit)

	cursor, err := db.collection(model.EventCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.EventDocument
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// GetLastEventSeq returns the highest journaled sequence number, 0 when the
// journal is empty.
func (db *Database) GetLastEventSeq(ctx context.Context) (uint64, error) {
	opts := options.FindOne().SetSort(bson.M{"_id": -1})

	var doc model.EventDocument
	err := db.collection(model.EventCollection).FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
