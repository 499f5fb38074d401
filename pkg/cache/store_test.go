package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var store Store = Noop{}

	keys := []CallKey{
		{},
		NewCallKey("price_daily", nil),
		NewCallKey("price_daily", []string{"code=000001.XSHE"}),
	}

	for _, key := range keys {
		if err := store.Put(ctx, key, []byte("a,b\n1,2\n")); err != nil {
			t.Errorf("Put(%v) error = %v, want nil", key, err)
		}
		if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Get(%v) error = %v, want ErrCacheMiss", key, err)
		}
	}
}

func TestMemory_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(0)
	key := NewCallKey("price_daily", []string{"code=000001.XSHE"})

	if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get before Put error = %v, want ErrCacheMiss", err)
	}

	data := []byte("code\n000001.XSHE\n")
	if err := store.Put(ctx, key, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	data[0] = 'X'

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "code\n000001.XSHE\n" {
		t.Errorf("Get() = %q, want stored copy", got)
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10 * time.Millisecond)
	key := NewCallKey("f", nil)

	if err := store.Put(ctx, key, []byte("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after expiry error = %v, want ErrCacheMiss", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expired read", store.Len())
	}
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := NewCallKey("f", []string{fmt.Sprintf("n=%d", i%5)})
			_, _ = store.Get(ctx, key)
			_ = store.Put(ctx, key, []byte("v"))
		}(i)
	}
	wg.Wait()

	if store.Len() != 5 {
		t.Errorf("Len() = %d, want 5", store.Len())
	}
}
