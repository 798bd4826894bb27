package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPingersReportReachability(t *testing.T) {
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open("file:health_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, PingPostgres(db)(ctx))

	server := miniredis.RunT(t)
	client, err := ConnectRedis("redis://" + server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, PingRedis(client)(ctx))

	server.Close()
	require.Error(t, PingRedis(client)(ctx))
}
