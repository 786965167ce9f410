package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Count int `json:"count"`
}

func newTestCache(t *testing.T) (*Versioned, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, time.Minute, nil), mr
}

func countingLoader(calls *int) func(context.Context) (any, error) {
	return func(context.Context) (any, error) {
		*calls++
		return payload{Count: *calls}, nil
	}
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0

	var first payload
	require.NoError(t, c.FetchJSON(ctx, &first, countingLoader(&calls), "reports", "summary"))
	require.Equal(t, 1, first.Count)

	var second payload
	require.NoError(t, c.FetchJSON(ctx, &second, countingLoader(&calls), "reports", "summary"))
	require.Equal(t, 1, second.Count)
	require.Equal(t, 1, calls)

	require.NoError(t, c.Bump(ctx))

	var third payload
	require.NoError(t, c.FetchJSON(ctx, &third, countingLoader(&calls), "reports", "summary"))
	require.Equal(t, 2, third.Count)
}

func TestBuildKeyCarriesVersion(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "products", "all")
	require.NoError(t, err)
	require.Equal(t, "products:all:v1", key)

	require.NoError(t, c.Bump(ctx))
	key, err = c.BuildKey(ctx, "products", "all")
	require.NoError(t, err)
	require.Equal(t, "products:all:v2", key)
}

func TestFetchJSONFallsBackWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	calls := 0

	var out payload
	require.NoError(t, c.FetchJSON(context.Background(), &out, countingLoader(&calls), "reports"))
	require.Equal(t, 1, out.Count)
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Versioned
	calls := 0

	var out payload
	require.NoError(t, c.FetchJSON(context.Background(), &out, countingLoader(&calls), "x"))
	require.NoError(t, c.FetchJSON(context.Background(), &out, countingLoader(&calls), "x"))
	require.Equal(t, 2, calls)
	require.NoError(t, c.Bump(context.Background()))
}

func TestFetchJSONPropagatesLoaderError(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")

	var out payload
	err := c.FetchJSON(context.Background(), &out, func(context.Context) (any, error) { return nil, boom }, "reports")
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("reports:v1"))
}

func TestSharedLoadSurvivesFirstCallerCancel(t *testing.T) {
	c, mr := newTestCache(t)
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-release
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return payload{Count: int(n)}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		var dest payload
		firstErr <- c.FetchJSON(ctx, &dest, loader, "reports", "summary")
	}()
	<-started
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)
	require.Eventually(t, func() bool { return mr.Exists("reports:summary:v1") }, time.Second, 5*time.Millisecond)

	var got payload
	require.NoError(t, c.FetchJSON(context.Background(), &got, loader, "reports", "summary"))
	require.Equal(t, 1, got.Count)
	require.Equal(t, int32(1), calls.Load())
}
