package messages

import (
	"context"
	"errors"
	"fmt"
	"github.com/awakari/venue-chat/model/chat"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

type storageMongo struct {
	coll *mongo.Collection
}

type message struct {
	Id        string    `bson:"id"`
	Chat      string    `bson:"chat"`
	User      string    `bson:"user"`
	Message   string    `bson:"message"`
	CreatedAt time.Time `bson:"createdAt"`
}

const attrId = "id"
const attrChat = "chat"
const attrUser = "user"
const attrCreatedAt = "createdAt"

var indices = []mongo.IndexModel{
	{
		Keys: bson.D{
			{
				Key:   attrId,
				Value: 1,
			},
		},
		Options: options.
			Index().
			SetUnique(true),
	},
	{
		Keys: bson.D{
			{
				Key:   attrChat,
				Value: 1,
			},
			{
				Key:   attrUser,
				Value: 1,
			},
		},
		Options: options.
			Index().
			SetUnique(false),
	},
	{
		Keys: bson.D{
			{
				Key:   attrChat,
				Value: 1,
			},
			{
				Key:   attrCreatedAt,
				Value: 1,
			},
		},
		Options: options.
			Index().
			SetUnique(false),
	},
}
var projList = bson.D{
	{
		Key:   "_id",
		Value: 0,
	},
}

func NewStorage(ctx context.Context, db *mongo.Database, collName string) (s Storage, err error) {
	sm := storageMongo{
		coll: db.Collection(collName),
	}
	_, err = sm.ensureIndices(ctx)
	if err == nil {
		s = sm
	}
	return
}

func (sm storageMongo) ensureIndices(ctx context.Context) ([]string, error) {
	return sm.coll.Indexes().CreateMany(ctx, indices)
}

// Close is a no-op: the shared client is disconnected by the owner.
func (sm storageMongo) Close() error {
	return nil
}

func (sm storageMongo) Create(ctx context.Context, m chat.Message) (err error) {
	rec := message{
		Id:        m.Id,
		Chat:      m.Chat,
		User:      m.User,
		Message:   m.Message,
		CreatedAt: m.CreatedAt.UTC(),
	}
	_, err = sm.coll.InsertOne(ctx, rec)
	err = decodeMongoError(err)
	return
}

func (sm storageMongo) Delete(ctx context.Context, chatId, id string) (err error) {
	q := bson.M{
		attrChat: chatId,
		attrId:   id,
	}
	_, err = sm.coll.DeleteOne(ctx, q)
	err = decodeMongoError(err)
	return
}

func (sm storageMongo) CountByUser(ctx context.Context, chatId, userId string) (count int64, err error) {
	q := bson.M{
		attrChat: chatId,
		attrUser: userId,
	}
	count, err = sm.coll.CountDocuments(ctx, q)
	err = decodeMongoError(err)
	return
}

func (sm storageMongo) CountAll(ctx context.Context, chatId string) (count int64, err error) {
	q := bson.M{
		attrChat: chatId,
	}
	count, err = sm.coll.CountDocuments(ctx, q)
	err = decodeMongoError(err)
	return
}

func (sm storageMongo) List(ctx context.Context, chatId string, q chat.MessageQuery) (page []chat.Message, err error) {
	dbQuery := bson.M{
		attrChat: chatId,
	}
	if q.User != "" {
		dbQuery[attrUser] = q.User
	}
	created := bson.M{}
	if !q.Since.IsZero() {
		created["$gte"] = q.Since.UTC()
	}
	if !q.Until.IsZero() {
		created["$lt"] = q.Until.UTC()
	}
	if len(created) > 0 {
		dbQuery[attrCreatedAt] = created
	}
	order := 1
	if q.Sort.Resolve(chat.SortAsc) == chat.SortDesc {
		order = -1
	}
	optsList := options.
		Find().
		SetLimit(int64(chat.Limit(q.Limit))).
		SetShowRecordID(false).
		SetProjection(projList).
		SetSort(bson.D{
			{
				Key:   attrCreatedAt,
				Value: order,
			},
			{
				Key:   attrId,
				Value: order,
			},
		})
	var cur *mongo.Cursor
	cur, err = sm.coll.Find(ctx, dbQuery, optsList)
	if err == nil {
		defer cur.Close(ctx)
		var rec message
		for cur.Next(ctx) {
			err = errors.Join(err, cur.Decode(&rec))
			if err == nil {
				page = append(page, chat.Message{
					Id:        rec.Id,
					Chat:      rec.Chat,
					User:      rec.User,
					Message:   rec.Message,
					CreatedAt: rec.CreatedAt,
				})
			}
		}
	}
	err = decodeMongoError(err)
	return
}

func decodeMongoError(src error) (dst error) {
	switch {
	case src == nil:
	case mongo.IsDuplicateKeyError(src):
		dst = fmt.Errorf("%w: %s", ErrAlreadyExists, src)
	default:
		dst = fmt.Errorf("%w: %s", ErrInternal, src)
	}
	return
}
