package rabbitmq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	return f.Nack(0, false, requeue)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func delivery(ack amqp.Acknowledger, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(body)}
}

func TestHandleDelivery_AcksOnSuccess(t *testing.T) {
	ack := &fakeAcknowledger{}
	id := uuid.New()
	var got payloads.MediaCleanupPayload

	body := `{"image_id":"` + id.String() + `","public_id":"photoshare/alice/cat.png"}`
	handleDelivery(context.Background(), discardLogger(), delivery(ack, body), func(_ context.Context, p payloads.MediaCleanupPayload) error {
		got = p
		return nil
	})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, id.String(), got.ImageID)
	assert.Equal(t, "photoshare/alice/cat.png", got.PublicID)
}

func TestHandleDelivery_RequeuesOnHandlerError(t *testing.T) {
	ack := &fakeAcknowledger{}

	body := `{"image_id":"` + uuid.NewString() + `","public_id":"k"}`
	handleDelivery(context.Background(), discardLogger(), delivery(ack, body), func(context.Context, payloads.MediaCleanupPayload) error {
		return errors.New("s3 unavailable")
	})

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
	assert.False(t, ack.acked)
}

func TestHandleDelivery_DropsMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"not json":       "{",
		"missing key id": `{"image_id":"` + uuid.NewString() + `"}`,
	} {
		t.Run(name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			called := false

			handleDelivery(context.Background(), discardLogger(), delivery(ack, body), func(context.Context, payloads.MediaCleanupPayload) error {
				called = true
				return nil
			})

			assert.False(t, called)
			assert.True(t, ack.nacked)
			assert.False(t, ack.requeue)
		})
	}
}
