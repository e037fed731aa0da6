package cache

import (
	"time"
)

// CacheService is the key/value store holding short-lived flags such as
// rate-limit blocks
type CacheService interface {
	// Get retrieves a value. A missing key is an error.
	Get(key string) ([]byte, error)

	// Set stores a value that expires after expiration
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value
	Delete(key string) error
}
