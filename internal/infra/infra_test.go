package infra

import (
	"context"
	"testing"
	"time"

	"github.com/econify/globetrends/pkg/models"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Errorf("Get = %v, %v; want 42, true", v, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	c.SetWithTTL("k", "v", -time.Second) // already expired
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheFlush(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("k", 1)
	c.Flush()
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after flush")
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("unexpected wait error: %v", err)
		}
	}
}

func TestRateLimiterRespectsContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx := context.Background()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	cctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	if err := rl.Wait(cctx); err == nil {
		t.Error("expected context deadline error when bucket is empty")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	d := NewDiskCache(t.TempDir(), time.Hour)
	table := models.TimeSeriesTable{
		models.NewPoint("United States", "USA", 2020, 2.09e13),
	}
	if err := d.Store("gdp_USA_2000_2020", table); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, ok := d.Load("gdp_USA_2000_2020")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].CountryCode != "USA" || *got[0].Value != 2.09e13 {
		t.Errorf("unexpected table: %+v", got)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	d := NewDiskCache(t.TempDir(), time.Hour)
	if _, ok := d.Load("nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	d := NewDiskCache(t.TempDir(), -time.Second)
	table := models.TimeSeriesTable{models.NewPoint("India", "IND", 2019, 1)}
	if err := d.Store("k", table); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, ok := d.Load("k"); ok {
		t.Error("expected expired entry to miss")
	}
}
