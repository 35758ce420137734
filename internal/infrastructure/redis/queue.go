package redis

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const ingestQueue = "ingest:queue:pending"

// RedisQueue is the hand-off list read by the ingestion worker.
type RedisQueue struct {
	client    *redis.Client
	queueName string
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		client:    client,
		queueName: ingestQueue,
	}
}

// Push adds a job ID to the end of the list
func (q *RedisQueue) Push(ctx context.Context, jobID string) error {
	return errors.Wrap(q.client.RPush(ctx, q.queueName, jobID).Err(), "push ingest job")
}

func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.queueName).Result()
	if err != nil {
		return 0, errors.Wrap(err, "ingest queue depth")
	}
	return n, nil
}
