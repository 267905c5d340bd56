package chats

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

type record struct {
	Id        string         `bson:"id"`
	Venue     string         `bson:"venue"`
	Members   []recordMember `bson:"members"`
	Status    string         `bson:"status"`
	CreatedAt time.Time      `bson:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt"`
	Version   int64          `bson:"version"`
}

type recordMember struct {
	User            string `bson:"user"`
	Creator         bool   `bson:"creator"`
	LastMessageSeen string `bson:"lastMessageSeen,omitempty"`
}

const attrId = "id"
const attrVenue = "venue"
const attrMembers = "members"
const attrMemberUser = "members.user"
const attrStatus = "status"
const attrCreatedAt = "createdAt"
const attrUpdatedAt = "updatedAt"
const attrVersion = "version"

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
				Key:   attrMemberUser,
				Value: 1,
			},
			{
				Key:   attrVenue,
				Value: 1,
			},
			{
				Key:   attrCreatedAt,
				Value: -1,
			},
		},
		Options: options.
			Index().
			SetUnique(false),
	},
	{
		Keys: bson.D{
			{
				Key:   attrStatus,
				Value: 1,
			},
			{
				Key:   attrUpdatedAt,
				Value: 1,
			},
		},
		Options: options.
			Index().
			SetUnique(false),
	},
}
var projGet = bson.D{
	{
		Key:   "_id",
		Value: 0,
	},
}
var optsGet = options.
	FindOne().
	SetShowRecordID(false).
	SetProjection(projGet)
var optsGetMostRecent = options.
	FindOne().
	SetShowRecordID(false).
	SetProjection(projGet).
	SetSort(bson.D{
		{
			Key:   attrCreatedAt,
			Value: -1,
		},
	})

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

func (sm storageMongo) Create(ctx context.Context, c chat.Chat) (err error) {
	_, err = sm.coll.InsertOne(ctx, encodeRecord(c))
	err = decodeMongoError(err)
	return
}

func (sm storageMongo) Read(ctx context.Context, id string) (c chat.Chat, err error) {
	q := bson.M{
		attrId: id,
	}
	c, err = sm.findOne(ctx, q, optsGet)
	return
}

func (sm storageMongo) FindMostRecent(ctx context.Context, userIds []string, venue string) (c chat.Chat, err error) {
	q := bson.M{
		attrMemberUser: bson.M{
			"$all": userIds,
		},
	}
	if venue != "" {
		q[attrVenue] = venue
	}
	c, err = sm.findOne(ctx, q, optsGetMostRecent)
	return
}

func (sm storageMongo) findOne(ctx context.Context, q bson.M, opts *options.FindOneOptions) (c chat.Chat, err error) {
	var result *mongo.SingleResult
	result = sm.coll.FindOne(ctx, q, opts)
	err = result.Err()
	var rec record
	if err == nil {
		err = result.Decode(&rec)
	}
	if err == nil {
		c = decodeRecord(rec)
	}
	err = decodeMongoError(err)
	return
}

func (sm storageMongo) Update(ctx context.Context, c chat.Chat) (err error) {
	rec := encodeRecord(c)
	q := bson.M{
		attrId:      c.Id,
		attrVersion: c.Version,
	}
	u := bson.M{
		"$set": bson.M{
			attrMembers:   rec.Members,
			attrStatus:    rec.Status,
			attrUpdatedAt: rec.UpdatedAt,
		},
		"$inc": bson.M{
			attrVersion: 1,
		},
	}
	var result *mongo.UpdateResult
	result, err = sm.coll.UpdateOne(ctx, q, u)
	if err == nil && result.MatchedCount < 1 {
		var count int64
		count, err = sm.coll.CountDocuments(ctx, bson.M{attrId: c.Id})
		switch {
		case err != nil:
		case count > 0:
			err = fmt.Errorf("%w: id=%s, version=%d", ErrConflict, c.Id, c.Version)
			return
		default:
			err = mongo.ErrNoDocuments
		}
	}
	err = decodeMongoError(err)
	return
}

func (sm storageMongo) List(ctx context.Context, q chat.Query) (page []chat.Chat, err error) {
	dbQuery := bson.M{
		attrMemberUser: q.Member,
	}
	if q.Venue != "" {
		dbQuery[attrVenue] = q.Venue
	}
	if q.Status != chat.StatusUndefined {
		dbQuery[attrStatus] = q.Status.String()
	}
	order := -1
	cursorOp := "$lt"
	if q.Sort.Resolve(chat.SortDesc) == chat.SortAsc {
		order = 1
		cursorOp = "$gt"
	}
	if !q.Cursor.IsZero() {
		dbQuery[attrCreatedAt] = bson.M{
			cursorOp: q.Cursor.UTC(),
		}
	}
	optsList := options.
		Find().
		SetLimit(int64(chat.Limit(q.Limit))).
		SetShowRecordID(false).
		SetProjection(projGet).
		SetSort(bson.D{
			{
				Key:   attrCreatedAt,
				Value: order,
			},
		})
	var cur *mongo.Cursor
	cur, err = sm.coll.Find(ctx, dbQuery, optsList)
	if err == nil {
		defer cur.Close(ctx)
		var rec record
		for cur.Next(ctx) {
			rec = record{}
			err = errors.Join(err, cur.Decode(&rec))
			if err == nil {
				page = append(page, decodeRecord(rec))
			}
		}
	}
	err = decodeMongoError(err)
	return
}

func (sm storageMongo) ExpireExhausted(ctx context.Context, before, now time.Time) (count int64, err error) {
	q := bson.M{
		attrStatus: chat.StatusExhausted.String(),
		attrUpdatedAt: bson.M{
			"$lt": before.UTC(),
		},
	}
	u := bson.M{
		"$set": bson.M{
			attrStatus:    chat.StatusExpired.String(),
			attrUpdatedAt: now.UTC(),
		},
		"$inc": bson.M{
			attrVersion: 1,
		},
	}
	var result *mongo.UpdateResult
	result, err = sm.coll.UpdateMany(ctx, q, u)
	if result != nil {
		count = result.ModifiedCount
	}
	err = decodeMongoError(err)
	return
}

func encodeRecord(c chat.Chat) (rec record) {
	rec = record{
		Id:        c.Id,
		Venue:     c.Venue,
		Status:    c.Status.String(),
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
		Version:   c.Version,
	}
	for _, m := range c.Members {
		rec.Members = append(rec.Members, recordMember{
			User:            m.User,
			Creator:         m.Creator,
			LastMessageSeen: m.LastMessageSeen,
		})
	}
	return
}

func decodeRecord(rec record) (c chat.Chat) {
	c = chat.Chat{
		Id:        rec.Id,
		Venue:     rec.Venue,
		Status:    chat.ParseStatus(rec.Status),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Version:   rec.Version,
	}
	for _, m := range rec.Members {
		c.Members = append(c.Members, chat.Member{
			User:            m.User,
			Creator:         m.Creator,
			LastMessageSeen: m.LastMessageSeen,
		})
	}
	return
}

func decodeMongoError(src error) (dst error) {
	switch {
	case src == nil:
	case mongo.IsDuplicateKeyError(src):
		dst = fmt.Errorf("%w: %s", ErrAlreadyExists, src)
	case errors.Is(src, mongo.ErrNoDocuments):
		dst = ErrNotFound
	default:
		dst = fmt.Errorf("%w: %s", ErrInternal, src)
	}
	return
}
