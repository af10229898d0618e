package server

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/edp1096/spkline/pkg/catalog"
)

const libraryKey = "library"

// CachedLibrary wraps load so the device library is read at most once per
// ttl. Callers must treat the returned database as read-only.
func CachedLibrary(load LibraryFunc, ttl time.Duration) LibraryFunc {
	c := cache.New(ttl, ttl*2)
	return func() (*catalog.Database, error) {
		if v, ok := c.Get(libraryKey); ok {
			return v.(*catalog.Database), nil
		}
		db, err := load()
		if err != nil {
			return nil, err
		}
		c.Set(libraryKey, db, cache.DefaultExpiration)
		return db, nil
	}
}
