package newsletter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSubscriber struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Source    string    `bson:"source,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoStore keeps subscribers in one collection with a unique email index.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore ensures the unique email index exists.
func NewMongoStore(ctx context.Context, coll *mongo.Collection) (*MongoStore, error) {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return nil, fmt.Errorf("create subscriber index: %w", err)
	}
	return &MongoStore{coll: coll}, nil
}

// ConnectMongo dials uri and returns the subscriber collection.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*mongo.Client, *mongo.Collection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(database).Collection(collection), nil
}

func (s *MongoStore) Ready() error { return nil }

func (s *MongoStore) Create(ctx context.Context, sub Subscriber) error {
	doc := mongoSubscriber{
		ID:        uuid.NewString(),
		Email:     sub.Email,
		Source:    sub.Source,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoStore) DeleteByEmail(ctx context.Context, email string) (int, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"email": email})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (s *MongoStore) Each(ctx context.Context, pageSize int, fn func([]Subscriber) error) error {
	if pageSize <= 0 {
		pageSize = searchPageSize
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetBatchSize(int32(pageSize))
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	batch := make([]Subscriber, 0, pageSize)
	for cur.Next(ctx) {
		var doc mongoSubscriber
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		batch = append(batch, Subscriber{ID: doc.ID, Email: doc.Email, Source: doc.Source, CreatedAt: doc.CreatedAt})
		if len(batch) == pageSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]Subscriber, 0, pageSize)
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}
