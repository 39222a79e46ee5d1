package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoStore is a Store backed by a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zerolog.Logger
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to uri and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, logger *zerolog.Logger, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", ErrStoreUnavailable, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping: %w", ErrStoreUnavailable, err)
	}

	logger.Info().Str("database", database).Msg("connected to MongoDB")

	return &MongoStore{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc Document) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	return classify(err)
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, bool, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 0}})

	var doc Document
	err := s.db.Collection(collection).FindOne(ctx, toBSON(filter), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, classify(err)
	}

	return doc, true, nil
}

func (s *MongoStore) FindMany(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}})

	cursor, err := s.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	docs := []Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify(err)
	}

	return docs, nil
}

func (s *MongoStore) UpdateFields(ctx context.Context, collection string, filter Filter, set Document) (int64, error) {
	result, err := s.db.Collection(collection).UpdateOne(
		ctx,
		toBSON(filter),
		bson.M{"$set": set},
	)
	if err != nil {
		return 0, classify(err)
	}

	return result.MatchedCount, nil
}

func (s *MongoStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, classify(err)
	}

	return n, nil
}

func (s *MongoStore) EnsureIndexes(ctx context.Context, collection string, indexes ...Index) error {
	if len(indexes) == 0 {
		return nil
	}

	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, idx := range indexes {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: idx.Field, Value: 1}},
			Options: options.Index().SetUnique(idx.Unique),
		})
	}

	if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
		return classify(err)
	}

	s.logger.Debug().Str("collection", collection).Int("count", len(models)).Msg("ensured indexes")

	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toBSON(filter Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}

// classify maps driver errors onto the package errors.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}
