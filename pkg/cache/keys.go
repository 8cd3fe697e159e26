package cache

import "fmt"

const keyPrefix = "kerya"

// ListingKey is the cache key for a single listing by id.
func ListingKey(id string) string {
	return fmt.Sprintf("%s:listing:%s", keyPrefix, id)
}

// ListingsPattern matches every cached listing, for bulk invalidation.
func ListingsPattern() string {
	return fmt.Sprintf("%s:listing:*", keyPrefix)
}
