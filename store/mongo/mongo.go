package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/yaoapp/kun/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store mongo store
type Store struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	Option     Option
}

// Option mongo store option
type Option struct {
	URI        string
	Database   string
	Collection string
	Timeout    int // seconds
}

// New connect and prepare the collection with a unique key index
func New(option Option) (*Store, error) {
	if option.URI == "" {
		return nil, fmt.Errorf("store mongo: option.uri is required")
	}

	if option.Timeout == 0 {
		option.Timeout = 5
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(option.Timeout)*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(option.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	coll := client.Database(option.Database).Collection(option.Collection)
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: -1}},
		Options: options.Index().SetUnique(true),
	}

	_, err = coll.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{Client: client, Collection: coll, Option: option}, nil
}

func (store *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(store.Option.Timeout)*time.Second)
}

// Get looks up a key's value from the store.
func (store *Store) Get(key string) (value interface{}, ok bool) {
	ctx, cancel := store.ctx()
	defer cancel()

	var result bson.M
	err := store.Collection.FindOne(ctx, bson.D{{Key: "key", Value: key}}).Decode(&result)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Error("Store mongo Get %s: %s", key, err.Error())
		}
		return nil, false
	}
	value, has := result["value"]
	return value, has
}

// Set adds a value to the store.
func (store *Store) Set(key string, value interface{}, ttl time.Duration) error {
	ctx, cancel := store.ctx()
	defer cancel()

	filter := bson.D{{Key: "key", Value: key}}
	doc := bson.D{{Key: "key", Value: key}, {Key: "value", Value: value}}
	opts := options.FindOneAndReplace().SetUpsert(true)
	err := store.Collection.FindOneAndReplace(ctx, filter, doc, opts).Err()
	if err != nil && err != mongo.ErrNoDocuments {
		log.Error("Store mongo Set %s: %s", key, err.Error())
		return err
	}
	return nil
}

// Del remove is used to purge a key from the store
func (store *Store) Del(key string) error {
	ctx, cancel := store.ctx()
	defer cancel()

	_, err := store.Collection.DeleteOne(ctx, bson.D{{Key: "key", Value: key}})
	if err != nil {
		log.Error("Store mongo Del: %s", err.Error())
		return err
	}
	return nil
}

// Has check if the key exists
func (store *Store) Has(key string) bool {
	ctx, cancel := store.ctx()
	defer cancel()

	n, err := store.Collection.CountDocuments(ctx, bson.D{{Key: "key", Value: key}})
	if err != nil {
		log.Error("Store mongo Has: %s", err.Error())
		return false
	}
	return n == 1
}

// Len returns the number of stored entries (**not O(1)**)
func (store *Store) Len() int {
	ctx, cancel := store.ctx()
	defer cancel()

	n, err := store.Collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		log.Error("Store mongo Len: %s", err.Error())
		return 0
	}
	return int(n)
}

// Keys returns all the keys
func (store *Store) Keys() []string {
	ctx, cancel := store.ctx()
	defer cancel()

	keys := []string{}
	cursor, err := store.Collection.Find(ctx, bson.D{})
	if err != nil {
		log.Error("Store mongo Keys: %s", err.Error())
		return keys
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var result bson.M
		if err := cursor.Decode(&result); err != nil {
			log.Error("Store mongo Keys: %s", err.Error())
			continue
		}
		keys = append(keys, fmt.Sprintf("%v", result["key"]))
	}
	return keys
}

// Clear removes every document
func (store *Store) Clear() {
	ctx, cancel := store.ctx()
	defer cancel()

	if _, err := store.Collection.DeleteMany(ctx, bson.D{}); err != nil {
		log.Error("Store mongo Clear: %s", err.Error())
	}
}

// Close disconnect the client
func (store *Store) Close() error {
	return store.Client.Disconnect(context.Background())
}
