package convert

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// locations caches loaded time zones. time.LoadLocation reads the zone
// database on every call.
var locations = cache.New(cache.NoExpiration, 0)

// LoadLocation returns the named location, loading it at most once per
// process.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	if loc, found := locations.Get(name); found {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	locations.SetDefault(name, loc)
	return loc, nil
}
