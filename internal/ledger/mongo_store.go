package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"codeberg.org/studyhall/server/internal/quota"
)

const usageCollection = "usage_logs"

// MongoStore keeps one document per (user_id, day) with a unique index on
// the pair. The conditional increment is a filtered upsert.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// creates the store and its unique (user_id, day) index
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	coll := db.Collection(usageCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "day", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_day_unique"),
	})
	if err != nil {
		return nil, fmt.Errorf("create usage index: %w", err)
	}

	return &MongoStore{coll: coll, now: time.Now}, nil
}

func (s *MongoStore) Find(ctx context.Context, userID string, day Day) (*UsageRecord, error) {
	var record UsageRecord

	err := s.coll.FindOne(ctx, bson.M{"user_id": userID, "day": string(day)}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}

		return nil, fmt.Errorf("find usage document: %w", err)
	}

	return &record, nil
}

func (s *MongoStore) ConsumeIfBelow(ctx context.Context, userID string, day Day, capability quota.Capability, limit int64) (int64, bool, error) {
	field, err := counterField(capability)
	if err != nil {
		return 0, false, err
	}

	if limit == 0 {
		return 0, false, nil
	}

	filter := bson.M{"user_id": userID, "day": string(day)}
	if limit > 0 {
		filter[field] = bson.M{"$lt": limit}
	}

	setOnInsert := bson.M{}
	for _, other := range []string{"qna_count", "flashcard_count", "quiz_count"} {
		if other != field {
			setOnInsert[other] = int64(0)
		}
	}

	update := bson.M{
		"$inc":         bson.M{field: int64(1)},
		"$set":         bson.M{"updated_at": s.now().UTC()},
		"$setOnInsert": setOnInsert,
	}

	record, err := s.findOneAndUpdate(ctx, filter, update, true)
	if mongo.IsDuplicateKeyError(err) {
		// the record exists but did not match the filter, or a concurrent
		// upsert created it first; retry against the existing document only
		record, err = s.findOneAndUpdate(ctx, filter, update, false)
	}

	if err == nil {
		return record.Count(capability), true, nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, fmt.Errorf("consume %s: %w", capability, err)
	}

	current, err := s.Find(ctx, userID, day)
	if err != nil {
		return 0, false, err
	}

	if current == nil {
		return limit, false, nil
	}

	return current.Count(capability), false, nil
}

func (s *MongoStore) findOneAndUpdate(ctx context.Context, filter, update bson.M, upsert bool) (UsageRecord, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)

	var record UsageRecord
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)

	return record, err
}

func (s *MongoStore) ListSince(ctx context.Context, userID string, since Day) ([]UsageRecord, error) {
	filter := bson.M{
		"user_id": userID,
		"day":     bson.M{"$gte": string(since)},
	}

	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "day", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list usage documents: %w", err)
	}
	defer cursor.Close(ctx)

	records := []UsageRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode usage documents: %w", err)
	}

	return records, nil
}

func (s *MongoStore) DeleteBefore(ctx context.Context, day Day) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"day": bson.M{"$lt": string(day)}})
	if err != nil {
		return 0, fmt.Errorf("delete usage documents: %w", err)
	}

	return result.DeletedCount, nil
}
