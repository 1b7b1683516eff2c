package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestGetOrSetWithoutCache(t *testing.T) {
	calls := 0
	fn := func() (float64, error) { calls++; return 1.5, nil }
	for i := 0; i < 2; i++ {
		v, err := GetOrSet[float64](nil, context.Background(), "k", time.Minute, fn)
		if err != nil || v != 1.5 {
			t.Fatalf("v = %v err = %v", v, err)
		}
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestGetOrSetSurvivesUnreachableRedis(t *testing.T) {
	c := NewFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer c.Close()

	v, err := GetOrSet(c, context.Background(), "k", time.Minute, func() (float64, error) { return 2, nil })
	if err != nil || v != 2 {
		t.Fatalf("v = %v err = %v", v, err)
	}

	boom := errors.New("boom")
	if _, err := GetOrSet(c, context.Background(), "k", time.Minute, func() (float64, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
