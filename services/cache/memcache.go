package cache

import (
	stderrors "errors"
	"time"

	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
	log    *logger.Logger
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	client := memcache.New(serverAddr)
	client.Timeout = 500 * time.Millisecond

	return &MemcacheService{
		client: client,
		log:    logger.ForCache().WithField("addr", serverAddr),
	}
}

// Ping checks that the server answers
func (m *MemcacheService) Ping() error {
	if err := m.client.Ping(); err != nil {
		return errors.NewCache("memcache", "server unreachable", err)
	}
	return nil
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		if !stderrors.Is(err, memcache.ErrCacheMiss) {
			m.log.Warn().Str("key", key).Err(err).Msg("Cache get failed")
		}
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
	if err != nil {
		return errors.NewCache("memcache", "failed to set "+key, err)
	}
	return nil
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(key)
	if err != nil && !stderrors.Is(err, memcache.ErrCacheMiss) {
		return errors.NewCache("memcache", "failed to delete "+key, err)
	}
	return err
}
