package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sitepass/pkg/adapters/redis"
	"github.com/aretw0/sitepass/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	// Run contract
	store := redis.NewFromClient(client)
	ports.RunTableStoreContract(t, store)
}

func TestRedisStore_PrefixAndIndex(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	err := store.WriteTable(ctx, ports.TableInductions, []ports.Row{{"Company": "Acme", "Name": "Alice"}})
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:inductions"), "table key should use the prefix")

	written, err := store.Written(ctx)
	require.NoError(t, err)
	assert.Contains(t, written, ports.TableInductions)
	assert.NotContains(t, written, ports.TableConversations)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set("sitepass:table:conversations", "{not json"))

	_, err := store.ReadTable(context.Background(), ports.TableConversations)
	assert.Error(t, err)
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	mr.Close()

	_, err := store.ReadTable(context.Background(), ports.TableConversations)
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}
