package utils

import (
	"context"
	"testing"
	"time"
)

func TestWindowScriptInitialized(t *testing.T) {
	if windowIncrScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestIncrWindowCounter_ValidatesArguments(t *testing.T) {
	ctx := context.Background()
	if _, err := IncrWindowCounter(ctx, nil, "k", time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestRedisConfigDefaults(t *testing.T) {
	c := RedisConfig{Addr: "localhost:6379", MinIdleConns: -1}.withDefaults()
	if c.PoolSize != 20 || c.MinIdleConns != 0 || c.PingTimeout != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	custom := RedisConfig{PoolSize: 5}.withDefaults()
	if custom.PoolSize != 5 {
		t.Fatalf("expected explicit pool size kept, got %d", custom.PoolSize)
	}
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
