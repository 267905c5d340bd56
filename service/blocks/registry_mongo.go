package blocks

import (
	"context"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type registryMongo struct {
	coll *mongo.Collection
}

type block struct {
	UserBlocks  string `bson:"userBlocks"`
	UserBlocked string `bson:"userBlocked"`
	Active      bool   `bson:"active"`
}

const attrUserBlocks = "userBlocks"
const attrUserBlocked = "userBlocked"
const attrActive = "active"

var indices = []mongo.IndexModel{
	{
		Keys: bson.D{
			{
				Key:   attrUserBlocks,
				Value: 1,
			},
			{
				Key:   attrUserBlocked,
				Value: 1,
			},
			{
				Key:   attrActive,
				Value: 1,
			},
		},
		Options: options.
			Index().
			SetUnique(false),
	},
}
var optsCount = options.
	Count().
	SetLimit(1)

func NewRegistry(ctx context.Context, db *mongo.Database, collName string) (r Registry, err error) {
	rm := registryMongo{
		coll: db.Collection(collName),
	}
	_, err = rm.ensureIndices(ctx)
	if err == nil {
		r = rm
	}
	return
}

func (rm registryMongo) ensureIndices(ctx context.Context) ([]string, error) {
	return rm.coll.Indexes().CreateMany(ctx, indices)
}

// Close is a no-op: the shared client is disconnected by the owner.
func (rm registryMongo) Close() error {
	return nil
}

func (rm registryMongo) IsBlocked(ctx context.Context, blocker, blocked string) (ok bool, err error) {
	q := bson.M{
		attrUserBlocks:  blocker,
		attrUserBlocked: blocked,
		attrActive:      true,
	}
	var count int64
	count, err = rm.coll.CountDocuments(ctx, q, optsCount)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInternal, err)
	}
	ok = count > 0
	return
}
