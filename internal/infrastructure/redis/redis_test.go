package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-weave/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisQueue_PushDepth(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, addr, 10)
	require.NoError(t, err)
	defer client.Close()

	q := NewRedisQueue(client)
	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), depth)

	require.NoError(t, q.Push(ctx, "job-1"))
	require.NoError(t, q.Push(ctx, "job-2"))

	depth, err = q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)

	// FIFO: the worker pops from the head
	head, err := client.LIndex(ctx, ingestQueue, 0).Result()
	require.NoError(t, err)
	assert.Equal(t, "job-1", head)
}

func TestRedisEventBus_StageEvents(t *testing.T) {
	addr := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := NewRedisClient(ctx, addr, 10)
	require.NoError(t, err)
	defer client.Close()

	bus := NewRedisEventBus(client)
	events, err := bus.SubscribeToStageEvents(ctx)
	require.NoError(t, err)

	// malformed payloads are skipped
	require.NoError(t, client.Publish(ctx, stageChannel, "{not json").Err())

	length := int64(2048)
	sent := domain.StageChangedEvent{
		JobID:         uuid.New(),
		Stage:         "extracted",
		At:            time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ContentLength: &length,
	}
	require.NoError(t, bus.PublishStageChanged(ctx, sent))

	select {
	case got := <-events:
		assert.Equal(t, sent.JobID, got.JobID)
		assert.Equal(t, "extracted", got.Stage)
		assert.True(t, sent.At.Equal(got.At))
		require.NotNil(t, got.ContentLength)
		assert.Equal(t, length, *got.ContentLength)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for stage event")
	}

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("stream not closed after cancel")
	}
}
