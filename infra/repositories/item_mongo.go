package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra"
)

type mongoRecord struct {
	Id      string `bson:"_id"`
	Payload string `bson:"payload"`
}

type ItemRepositoryMongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewItemRepositoryMongo(client *mongo.Client, database, collection string) *ItemRepositoryMongo {
	return &ItemRepositoryMongo{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

func (r *ItemRepositoryMongo) GetItem(ctx context.Context, itemId string) (*item.Item, error) {
	var record mongoRecord
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: itemId}}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, item.ErrNotFound
	}
	if err != nil {
		return nil, infra.NewStoreError("mongo find", err)
	}
	return decodeItem(itemId, []byte(record.Payload))
}

func (r *ItemRepositoryMongo) SaveItem(ctx context.Context, it *item.Item) error {
	raw, err := it.Serialize()
	if err != nil {
		return infra.NewStoreError("mongo encode", err)
	}
	_, err = r.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: it.Id}},
		mongoRecord{Id: it.Id, Payload: string(raw)},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return infra.NewStoreError("mongo replace", err)
	}
	return nil
}

func (r *ItemRepositoryMongo) DeleteItem(ctx context.Context, itemId string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: itemId}}); err != nil {
		return infra.NewStoreError("mongo delete", err)
	}
	return nil
}

func (r *ItemRepositoryMongo) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return infra.NewStoreError("mongo ping", err)
	}
	return nil
}

func (r *ItemRepositoryMongo) Close() error {
	return r.client.Disconnect(context.Background())
}
