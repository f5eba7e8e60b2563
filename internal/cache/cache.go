// Package cache provides a small byte cache for read-endpoint
// responses.
package cache

import (
	"time"
	"unsafe"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog"
)

type Provider interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type cacheProvider struct {
	cache *freecache.Cache
	ttl   int
}

// New builds a freecache-backed provider of sizeMB megabytes with the
// given entry TTL, or a no-op provider when disabled.
func New(enabled bool, sizeMB int, ttl time.Duration, log zerolog.Logger) Provider {
	if !enabled || sizeMB <= 0 {
		log.Info().Msg("response cache disabled")
		return &noopCache{}
	}

	ttlSeconds := int(ttl.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}
	log.Info().Int("size_mb", sizeMB).Int("ttl_s", ttlSeconds).Msg("response cache initialized")

	return &cacheProvider{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   ttlSeconds,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// The result must only be read; freecache copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *cacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *cacheProvider) Set(key string, value []byte) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
