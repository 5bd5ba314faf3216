package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}
func (failingStore) Set(context.Context, string, []byte) error { return errors.New("backend down") }
func (failingStore) Expire(context.Context, string, time.Duration) error {
	return errors.New("backend down")
}

func sampleImage() *domain.Image {
	return &domain.Image{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		URL:         "http://localhost:9000/images/photoshare/alice/cat.png",
		Description: "cat",
		Tags: []domain.Tag{
			{ID: uuid.New(), Title: "animals"},
			{ID: uuid.New(), Title: "cats"},
		},
	}
}

func TestImageKey(t *testing.T) {
	id := uuid.MustParse("6f1c2b9a-3f7e-4c1d-9a51-0f2e8d1c4b7a")
	assert.Equal(t, "image:6f1c2b9a-3f7e-4c1d-9a51-0f2e8d1c4b7a", ImageKey(id))
}

func TestImageCache_RefreshThenLoad(t *testing.T) {
	ctx := context.Background()
	c := NewImageCache(NewMemoryStore(0, 0), time.Minute, discardLogger())
	image := sampleImage()

	require.NoError(t, c.Refresh(ctx, image))

	got, found := c.Load(ctx, image.ID)
	require.True(t, found)
	assert.Equal(t, image.ID, got.ID)
	assert.Equal(t, image.URL, got.URL)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "animals", got.Tags[0].Title)
	assert.Equal(t, "cats", got.Tags[1].Title)
}

func TestImageCache_RefreshOverwritesSnapshot(t *testing.T) {
	ctx := context.Background()
	c := NewImageCache(NewMemoryStore(0, 0), time.Minute, discardLogger())
	image := sampleImage()
	require.NoError(t, c.Refresh(ctx, image))

	image.Tags = image.Tags[:1]
	require.NoError(t, c.Refresh(ctx, image))

	got, found := c.Load(ctx, image.ID)
	require.True(t, found)
	assert.Len(t, got.Tags, 1)
}

func TestImageCache_LoadMiss(t *testing.T) {
	before := testutil.ToFloat64(metrics.ImageCacheLookups.WithLabelValues("miss"))

	c := NewImageCache(NewMemoryStore(0, 0), time.Minute, discardLogger())
	_, found := c.Load(context.Background(), uuid.New())

	assert.False(t, found)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ImageCacheLookups.WithLabelValues("miss")))
}

func TestImageCache_LoadUnreadableSnapshotFallsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0, 0)
	id := uuid.New()
	require.NoError(t, store.Set(ctx, ImageKey(id), []byte("not json")))

	c := NewImageCache(store, time.Minute, discardLogger())
	_, found := c.Load(ctx, id)
	assert.False(t, found)
}

func TestImageCache_BackendErrors(t *testing.T) {
	ctx := context.Background()
	c := NewImageCache(failingStore{}, time.Minute, discardLogger())

	_, found := c.Load(ctx, uuid.New())
	assert.False(t, found)

	assert.Error(t, c.Refresh(ctx, sampleImage()))
}

func TestImageCache_Evict(t *testing.T) {
	ctx := context.Background()
	c := NewImageCache(newBadgerStore(t), time.Minute, discardLogger())
	image := sampleImage()
	require.NoError(t, c.Refresh(ctx, image))

	require.NoError(t, c.Evict(ctx, image.ID))

	_, found := c.Load(ctx, image.ID)
	assert.False(t, found)
}
