package publisher

import (
	"context"
	"encoding/base64"
	"math/rand"
	"strconv"

	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes scraped articles onto sharded Redis streams
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int
	log             *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if streamCount < 1 {
		streamCount = 1
	}

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
		log:             logger.ForPublisher(),
	}
}

// StreamName returns the shard stream for index n
func (p *RedisPublisher) StreamName(n int) string {
	return p.streamPrefix + ":" + strconv.Itoa(n)
}

// Publish adds message, base64 encoded, under key to a random shard stream
// (prefix:0 to prefix:count-1).
func (p *RedisPublisher) Publish(key string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)
	stream := p.StreamName(rand.Intn(p.streamCount))

	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encodedMessage,
		},
	}).Err()
	if err != nil {
		return errors.NewPublisher("redis", "failed to publish to "+stream, err)
	}

	p.log.Debug().Str("stream", stream).Str("key", key).Int("bytes", len(message)).Msg("Published")
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	if p.streamMaxLength <= 0 {
		return nil
	}

	streams, err := p.client.Keys(p.ctx, p.streamPrefix+":*").Result()
	if err != nil {
		return errors.NewPublisher("redis", "failed to list streams", err)
	}

	for _, stream := range streams {
		if err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return errors.NewPublisher("redis", "failed to trim "+stream, err)
		}
	}

	p.log.Debug().Int("streams", len(streams)).Int("max_length", p.streamMaxLength).Msg("Streams trimmed")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
