package util

import (
	"context"
	"crypto/tls"
	"github.com/awakari/venue-chat/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var optsSrvApi = options.ServerAPI(options.ServerAPIVersion1)

// NewMongoDatabase connects the single client shared by all the storages. The caller owns the client:
// disconnect it with db.Client().Disconnect(ctx).
func NewMongoDatabase(ctx context.Context, cfgDb config.DbConfig) (db *mongo.Database, err error) {
	clientOpts := options.
		Client().
		ApplyURI(cfgDb.Uri).
		SetServerAPIOptions(optsSrvApi)
	if cfgDb.Tls.Enabled {
		clientOpts = clientOpts.SetTLSConfig(&tls.Config{InsecureSkipVerify: cfgDb.Tls.Insecure})
	}
	if len(cfgDb.UserName) > 0 {
		auth := options.Credential{
			Username:    cfgDb.UserName,
			Password:    cfgDb.Password,
			PasswordSet: len(cfgDb.Password) > 0,
		}
		clientOpts = clientOpts.SetAuth(auth)
	}
	var conn *mongo.Client
	conn, err = mongo.Connect(ctx, clientOpts)
	if err == nil {
		db = conn.Database(cfgDb.Name)
	}
	return
}
