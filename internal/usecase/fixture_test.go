package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/access"
	"github.com/GoArmGo/PhotoShare/internal/cache"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/database/storage"
	"github.com/GoArmGo/PhotoShare/internal/database/testdb"
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeMedia запоминает загруженные и удаленные объекты
type fakeMedia struct {
	mu        sync.Mutex
	uploaded  map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{uploaded: map[string][]byte{}}
}

func (m *fakeMedia) Upload(_ context.Context, file io.Reader, ownerName, fileName, _ string) (ports.MediaObject, error) {
	if m.uploadErr != nil {
		return ports.MediaObject{}, m.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return ports.MediaObject{}, err
	}
	key := "photoshare/" + ownerName + "/" + fileName
	m.mu.Lock()
	m.uploaded[key] = data
	m.mu.Unlock()
	return ports.MediaObject{URL: "http://media.test/" + key, PublicID: key}, nil
}

func (m *fakeMedia) DeleteByPublicID(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, publicID)
	return nil
}

func (m *fakeMedia) Transform(url, profile string) (string, error) {
	if profile == "unknown" {
		return "", errors.New("unknown profile")
	}
	return url + "|" + profile, nil
}

type fakePublisher struct {
	published []payloads.MediaCleanupPayload
}

func (f *fakePublisher) PublishMediaCleanup(_ context.Context, p payloads.MediaCleanupPayload) error {
	f.published = append(f.published, p)
	return nil
}

// countingSnapshots считает обновления снимков поверх настоящего ImageCache
type countingSnapshots struct {
	*cache.ImageCache
	refreshes int
}

func (c *countingSnapshots) Refresh(ctx context.Context, image *domain.Image) error {
	c.refreshes++
	return c.ImageCache.Refresh(ctx, image)
}

type fixture struct {
	db        *gorm.DB
	images    *storage.ImageStorage
	tags      *storage.TagStorage
	comments  *storage.CommentStorage
	rates     *storage.RateStorage
	media     *fakeMedia
	publisher *fakePublisher
	snapshots *countingSnapshots

	imageUC   ImageUseCase
	tagUC     TagUseCase
	commentUC CommentUseCase
	rateUC    RateUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	logger := discardLogger()
	gate := access.NewGate(nil, logger)

	f := &fixture{
		db:        db,
		images:    storage.NewImageStorage(db, logger),
		tags:      storage.NewTagStorage(db, logger),
		comments:  storage.NewCommentStorage(db, logger),
		rates:     storage.NewRateStorage(db, logger),
		media:     newFakeMedia(),
		publisher: &fakePublisher{},
		snapshots: &countingSnapshots{ImageCache: cache.NewImageCache(cache.NewMemoryStore(0, 0), time.Minute, logger)},
	}
	f.imageUC = NewImageUseCase(f.images, f.tags, f.media, f.snapshots, f.publisher, gate, logger)
	f.tagUC = NewTagUseCase(f.tags, gate, logger)
	f.commentUC = NewCommentUseCase(f.comments, f.images, gate, logger)
	f.rateUC = NewRateUseCase(f.rates, f.images, gate, logger)
	return f
}

func principal(role domain.Role) domain.Principal {
	id := uuid.New()
	return domain.Principal{ID: id, Username: "user-" + id.String()[:8], Role: role}
}

// createImage загружает изображение от имени p
func (f *fixture) createImage(t *testing.T, p domain.Principal, tags ...string) *domain.Image {
	t.Helper()
	image, err := f.imageUC.Create(context.Background(), bytes.NewReader([]byte("png")), uuid.NewString()+".png", "image/png",
		ImagePayload{Description: "test image", Tags: tags}, p)
	require.NoError(t, err)
	require.NotNil(t, image)
	return image
}

func tagTitles(image *domain.Image) []string {
	titles := make([]string, len(image.Tags))
	for i, tag := range image.Tags {
		titles[i] = tag.Title
	}
	return titles
}

func payloadFor(imageID uuid.UUID, publicID string) payloads.MediaCleanupPayload {
	return payloads.MediaCleanupPayload{ImageID: imageID.String(), PublicID: publicID}
}
