package workitems

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// PayloadField is the stream entry field holding the JSON payload
const PayloadField = "payload"

// RedisSource reads work items from a Redis stream through a consumer group
type RedisSource struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string

	// Block is how long one read waits for new entries
	Block time.Duration
	// StopWhenEmpty makes Next return ErrNoMoreItems after a read that found nothing
	StopWhenEmpty bool

	log *logger.Logger
}

// NewRedisSource connects to Redis and makes sure the consumer group exists
func NewRedisSource(ctx context.Context, addr string, db int, stream, group, consumer string) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		client.Close()
		return nil, errors.NewQueue("redis", "failed to create consumer group "+group, err)
	}

	return &RedisSource{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		Block:    5 * time.Second,
		log:      logger.ForQueue(),
	}, nil
}

// Next reads one entry for this consumer, waiting until one arrives or ctx ends
func (s *RedisSource) Next(ctx context.Context) (Item, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Item{}, err
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{s.stream, ">"},
			Count:    1,
			Block:    s.Block,
		}).Result()
		if stderrors.Is(err, redis.Nil) {
			if s.StopWhenEmpty {
				return Item{}, ErrNoMoreItems
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Item{}, ctx.Err()
			}
			return Item{}, errors.NewQueue("redis", "failed to read "+s.stream, err)
		}

		if len(streams) > 0 && len(streams[0].Messages) > 0 {
			return s.decode(ctx, streams[0].Messages[0])
		}
	}
}

// decode turns a stream entry into an item. Malformed entries are acked
// and sent to the failed stream.
func (s *RedisSource) decode(ctx context.Context, message redis.XMessage) (Item, error) {
	item := Item{ID: message.ID}

	raw, _ := message.Values[PayloadField].(string)
	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.log.Warn().Str("item", message.ID).Err(err).Msg("Malformed work item")
		if failErr := s.fail(ctx, item, raw, err); failErr != nil {
			return Item{}, failErr
		}
		return s.Next(ctx)
	}

	item.LimitDate = payload.LimitDate
	item.Phrase = payload.Phrase
	s.log.Debug().Str("item", item.ID).Str("phrase", item.Phrase).Msg("Work item received")
	return item, nil
}

// Complete acknowledges the entry
func (s *RedisSource) Complete(ctx context.Context, item Item) error {
	if err := s.client.XAck(ctx, s.stream, s.group, item.ID).Err(); err != nil {
		return errors.NewQueue("redis", "failed to ack "+item.ID, err)
	}
	return nil
}

// Fail copies the entry to the failed stream and acknowledges it
func (s *RedisSource) Fail(ctx context.Context, item Item, err error) error {
	payload, marshalErr := json.Marshal(Payload{LimitDate: item.LimitDate, Phrase: item.Phrase})
	if marshalErr != nil {
		return errors.NewQueue("redis", "failed to encode "+item.ID, marshalErr)
	}
	return s.fail(ctx, item, string(payload), err)
}

func (s *RedisSource) fail(ctx context.Context, item Item, payload string, cause error) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.FailedStream(),
		Values: map[string]interface{}{
			"id":         item.ID,
			PayloadField: payload,
			"error":      cause.Error(),
		},
	}).Err()
	if err != nil {
		return errors.NewQueue("redis", "failed to record failure of "+item.ID, err)
	}
	return s.Complete(ctx, item)
}

// FailedStream is where failed items are copied
func (s *RedisSource) FailedStream() string {
	return s.stream + ":failed"
}

// Close closes the Redis connection
func (s *RedisSource) Close() error {
	return s.client.Close()
}
