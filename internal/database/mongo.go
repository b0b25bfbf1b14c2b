package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"commerce-insights/internal/dataset"
)

// MongoDriver reads one collection per table from Database.
type MongoDriver struct {
	Database string
	client   *mongo.Client
}

func (md *MongoDriver) Connect(ctx context.Context, dsn string) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn).SetReadPreference(readpref.SecondaryPreferred()))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return err
	}
	md.client = client
	return nil
}

func (md *MongoDriver) Close() error {
	if md.client == nil {
		return nil
	}
	return md.client.Disconnect(context.Background())
}

func (md *MongoDriver) Load(ctx context.Context) (*dataset.Dataset, error) {
	if md.client == nil {
		return nil, errors.New("mongo: not connected")
	}
	db := md.client.Database(md.Database)

	var t dataset.Tables
	steps := []struct {
		collection string
		dest       interface{}
	}{
		{"customers", &t.Customers},
		{"orders", &t.Orders},
		{"order_items", &t.Items},
		{"payments", &t.Payments},
		{"reviews", &t.Reviews},
		{"products", &t.Products},
		{"sellers", &t.Sellers},
		{"geolocation", &t.Geolocations},
	}
	for _, s := range steps {
		if err := readAll(ctx, db.Collection(s.collection), s.dest); err != nil {
			return nil, fmt.Errorf("read %s: %w", s.collection, err)
		}
	}

	return dataset.New(t)
}

func readAll(ctx context.Context, coll *mongo.Collection, dest interface{}) error {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, dest)
}
