package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoCacheExpiry(t *testing.T) {
	cache := newMemoCache()

	cache.Set("k", "v", 50*time.Millisecond)
	got, ok := cache.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get("k")
	assert.False(t, ok, "entries expire after their TTL")
}

func TestMemoCacheDelete(t *testing.T) {
	cache := newMemoCache()
	cache.Set("k", 1, time.Minute)
	cache.Delete("k")
	_, ok := cache.Get("k")
	assert.False(t, ok)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}
