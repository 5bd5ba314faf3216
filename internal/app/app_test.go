package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/config"
	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeQueue синхронно отдает заранее заданные задачи обработчику
type fakeQueue struct {
	jobs    []payloads.MediaCleanupPayload
	results []error
}

func (q *fakeQueue) StartConsumingMediaCleanup(ctx context.Context, handler func(context.Context, payloads.MediaCleanupPayload) error) error {
	for _, job := range q.jobs {
		q.results = append(q.results, handler(ctx, job))
	}
	return nil
}

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (c recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestRunWorker(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := &fakeQueue{jobs: []payloads.MediaCleanupPayload{
		{ImageID: "1", PublicID: "photoshare/alice/a.png"},
		{ImageID: "2", PublicID: "broken"},
	}}
	var handled []string
	handler := func(_ context.Context, p payloads.MediaCleanupPayload) error {
		handled = append(handled, p.PublicID)
		if p.PublicID == "broken" {
			return errors.New("media host unavailable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, runWorker(ctx, queue, handler, discardLogger()))
	assert.Equal(t, []string{"photoshare/alice/a.png", "broken"}, handled)
	require.Len(t, queue.results, 2)
	assert.NoError(t, queue.results[0])
	assert.Error(t, queue.results[1])
}

func TestRunWorkerWithoutQueue(t *testing.T) {
	err := runWorker(context.Background(), nil, nil, discardLogger())
	assert.Error(t, err)
}

func TestRunServerStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := &config.Config{ServerPort: "0"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, cfg, http.NotFoundHandler(), discardLogger())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestShutdownClosesInReverseOrder(t *testing.T) {
	var order []string
	a := NewApp(&config.Config{}, discardLogger(), nil, nil, nil,
		recordingCloser{name: "db", order: &order},
		recordingCloser{name: "cache", order: &order, err: errors.New("boom")},
		recordingCloser{name: "queue", order: &order},
	)

	err := a.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"queue", "cache", "db"}, order)
}

func TestRunUnknownMode(t *testing.T) {
	a := NewApp(&config.Config{}, discardLogger(), nil, nil, nil)
	mode := "batch"
	assert.Error(t, a.Run(context.Background(), &mode))
}
