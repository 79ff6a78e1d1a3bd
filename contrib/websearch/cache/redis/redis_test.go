package redis

import (
	"context"
	"testing"
	"time"
)

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(&Config{Addr: "", Prefix: "p:"}); err == nil {
		t.Fatal("expected error for empty address")
	}
	if _, err := New(&Config{Addr: "localhost:6379", DB: 16}); err == nil {
		t.Fatal("expected error for db out of range")
	}
	c, err := New(&Config{Addr: "localhost:6379"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	if got := c.key("abc"); got != "radsafe:search:abc" {
		t.Fatalf("key = %q", got)
	}
}

func TestUnreachableServerReturnsErrors(t *testing.T) {
	c, err := New(&Config{Addr: "127.0.0.1:1", Prefix: "t:"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, _, err := c.Get(ctx, "k"); err == nil {
		t.Fatal("expected read error")
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err == nil {
		t.Fatal("expected write error")
	}
}
