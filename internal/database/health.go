package database

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PingPostgres verifies the pooled database connection.
func PingPostgres(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// PingRedis verifies the cache connection.
func PingRedis(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// PingNATS reports whether the audit fan-out connection is currently established.
func PingNATS(conn *nats.Conn) func(ctx context.Context) error {
	return func(context.Context) error {
		if !conn.IsConnected() {
			return errors.New("nats connection is " + conn.Status().String())
		}
		return nil
	}
}
