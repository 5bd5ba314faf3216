package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/GoArmGo/PhotoShare/internal/access"
	"github.com/GoArmGo/PhotoShare/internal/cache"
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImages_CreateUploadsAndCaches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := principal(domain.RoleUser)

	image, err := f.imageUC.Create(ctx, bytes.NewReader([]byte("bytes")), "cat.png", "image/png",
		ImagePayload{Description: "a cat", Tags: []string{"Cats", "cats", " animals "}}, u)
	require.NoError(t, err)
	require.NotNil(t, image)

	assert.Equal(t, "photoshare/"+u.Username+"/cat.png", image.PublicID)
	assert.Equal(t, []byte("bytes"), f.media.uploaded[image.PublicID])
	assert.ElementsMatch(t, []string{"cats", "animals"}, tagTitles(image))
	assert.Equal(t, 1, f.snapshots.refreshes)

	cached, ok := f.snapshots.Load(ctx, image.ID)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"cats", "animals"}, tagTitles(cached))

	stored, err := f.images.GetImageByID(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"animals", "cats"}, tagTitles(stored))
	assert.Equal(t, 2, stored.TagCount)
}

func TestImages_CreateRejectsTooManyTags(t *testing.T) {
	f := newFixture(t)

	_, err := f.imageUC.Create(context.Background(), bytes.NewReader(nil), "x.png", "image/png",
		ImagePayload{Tags: []string{"a", "b", "c", "d", "e", "f"}}, principal(domain.RoleUser))
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))
	assert.Empty(t, f.media.uploaded)
}

func TestImages_CreateUploadFailure(t *testing.T) {
	f := newFixture(t)
	f.media.uploadErr = errors.New("bucket unavailable")

	_, err := f.imageUC.Create(context.Background(), bytes.NewReader(nil), "x.png", "image/png", ImagePayload{}, principal(domain.RoleUser))
	require.Error(t, err)
	assert.Equal(t, 0, f.snapshots.refreshes)
}

func TestImages_GetServesSnapshotThenStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := principal(domain.RoleUser)
	image := f.createImage(t, u)

	// изменение в обход кэша: снимок остается прежним до обновления
	image.Description = "changed in store"
	require.NoError(t, f.images.UpdateImage(ctx, image))

	got, err := f.imageUC.Get(ctx, image.ID, u)
	require.NoError(t, err)
	assert.Equal(t, "test image", got.Description)

	require.NoError(t, f.snapshots.Evict(ctx, image.ID))
	got, err = f.imageUC.Get(ctx, image.ID, u)
	require.NoError(t, err)
	assert.Equal(t, "changed in store", got.Description)

	// чтение из бд кэш не заполняет
	_, ok := f.snapshots.Load(ctx, image.ID)
	assert.False(t, ok)

	missing, err := f.imageUC.Get(ctx, uuid.New(), u)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestImages_ForeignImageRequiresAdministrator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := principal(domain.RoleUser)
	image := f.createImage(t, owner)

	_, err := f.imageUC.PatchDescription(ctx, image.ID, owner.ID, DescriptionPayload{Description: "mine now"}, principal(domain.RoleModerator))
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	patched, err := f.imageUC.PatchDescription(ctx, image.ID, owner.ID, DescriptionPayload{Description: "admin edit"}, principal(domain.RoleAdministrator))
	require.NoError(t, err)
	require.NotNil(t, patched)
	assert.Equal(t, "admin edit", patched.Description)
}

func TestImages_OwnerScopedLookupCollapsesToAbsence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner, other := principal(domain.RoleUser), principal(domain.RoleUser)
	image := f.createImage(t, owner)

	// other указывает себя владельцем: чужое изображение неотличимо от отсутствующего
	got, err := f.imageUC.PatchDescription(ctx, image.ID, other.ID, DescriptionPayload{Description: "x"}, other)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestImages_TransformAndSetURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := principal(domain.RoleUser)
	image := f.createImage(t, u)

	transformed, err := f.imageUC.Transform(ctx, image.ID, u.ID, []string{"thumbnail", "grayscale"}, u)
	require.NoError(t, err)
	assert.Equal(t, image.URL+"|thumbnail|grayscale", transformed.URL)

	_, err = f.imageUC.Transform(ctx, image.ID, u.ID, []string{"unknown"}, u)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	updated, err := f.imageUC.SetURL(ctx, image.ID, u.ID, URLPayload{URL: "https://cdn.example.com/cat.png"}, u)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/cat.png", updated.URL)

	_, err = f.imageUC.SetURL(ctx, image.ID, u.ID, URLPayload{URL: "not a url"}, u)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestImages_DeleteEvictsAndEnqueuesCleanup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := principal(domain.RoleUser)
	image := f.createImage(t, u, "sky")

	deleted, err := f.imageUC.Delete(ctx, image.ID, u.ID, u)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	_, ok := f.snapshots.Load(ctx, image.ID)
	assert.False(t, ok)

	stored, err := f.images.GetImageByID(ctx, image.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, image.PublicID, f.publisher.published[0].PublicID)
	assert.Equal(t, image.ID.String(), f.publisher.published[0].ImageID)

	again, err := f.imageUC.Delete(ctx, image.ID, u.ID, u)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestImages_DeleteWithoutQueueRemovesMediaDirectly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	logger := discardLogger()
	uc := NewImageUseCase(f.images, f.tags, f.media,
		cache.NewImageCache(cache.NewMemoryStore(0, 0), 0, logger), nil, access.NewGate(nil, logger), logger)
	u := principal(domain.RoleUser)
	image := f.createImage(t, u)

	_, err := uc.Delete(ctx, image.ID, u.ID, u)
	require.NoError(t, err)
	assert.Equal(t, []string{image.PublicID}, f.media.deleted)
}

func TestImages_AttachTagCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := principal(domain.RoleUser)
	image := f.createImage(t, u, "a", "b", "c", "d", "e")
	refreshes := f.snapshots.refreshes

	_, err := f.imageUC.AttachTag(ctx, image.ID, u.ID, "f", u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))

	stored, err := f.images.GetImageByID(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, tagTitles(stored))
	assert.Equal(t, 5, stored.TagCount)

	same, err := f.imageUC.AttachTag(ctx, image.ID, u.ID, "A", u)
	require.NoError(t, err)
	require.NotNil(t, same)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, tagTitles(same))
	assert.Equal(t, refreshes, f.snapshots.refreshes, "no-op attach does not refresh the snapshot")
}

func TestImages_AttachAndDetachRefreshSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := principal(domain.RoleUser)
	image := f.createImage(t, u, "sea")

	attached, err := f.imageUC.AttachTag(ctx, image.ID, u.ID, "Sunset", u)
	require.NoError(t, err)
	assert.Equal(t, []string{"sea", "sunset"}, tagTitles(attached))
	assert.True(t, attached.HasTag("sunset"))
	assert.False(t, attached.HasTag("Sunset"), "titles are stored normalized")

	cached, ok := f.snapshots.Load(ctx, image.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"sea", "sunset"}, tagTitles(cached))

	detached, err := f.imageUC.DetachTag(ctx, image.ID, u.ID, "sea", u)
	require.NoError(t, err)
	assert.Equal(t, []string{"sunset"}, tagTitles(detached))
	assert.False(t, detached.HasTag("sea"))

	cached, ok = f.snapshots.Load(ctx, image.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"sunset"}, tagTitles(cached))

	stored, err := f.images.GetImageByID(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TagCount)
}

func TestImages_DetachAbsentTagIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := principal(domain.RoleUser)
	image := f.createImage(t, u, "sea")
	refreshes := f.snapshots.refreshes

	_, err := f.tagUC.ResolveOrCreate(ctx, "forest", u)
	require.NoError(t, err)

	for _, title := range []string{"forest", "never-created"} {
		got, err := f.imageUC.DetachTag(ctx, image.ID, u.ID, title, u)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []string{"sea"}, tagTitles(got))
	}
	assert.Equal(t, refreshes, f.snapshots.refreshes)

	// поиск тега при откреплении ничего не создает
	tag, err := f.tagUC.Get(ctx, "never-created")
	require.NoError(t, err)
	assert.Nil(t, tag)
}

func TestImages_AttachToMissingImage(t *testing.T) {
	f := newFixture(t)
	u := principal(domain.RoleUser)

	got, err := f.imageUC.AttachTag(context.Background(), uuid.New(), u.ID, "x", u)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestImages_ConcurrentAttachNeverExceedsCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := principal(domain.RoleUser)
	image := f.createImage(t, u, "a", "b", "c")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rejected int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.imageUC.AttachTag(ctx, image.ID, u.ID, fmt.Sprintf("tag-%d", i), u)
			if errors.Is(err, domain.ErrCapacityExceeded) {
				mu.Lock()
				rejected++
				mu.Unlock()
				return
			}
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := f.images.GetImageByID(ctx, image.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Tags, domain.MaxTagsPerImage)
	assert.Equal(t, domain.MaxTagsPerImage, stored.TagCount)
	assert.Equal(t, 6, rejected)
}

func TestMediaCleanupHandler(t *testing.T) {
	media := newFakeMedia()
	handler := NewMediaCleanupHandler(media, discardLogger())

	id := uuid.New()
	require.NoError(t, handler(context.Background(), payloadFor(id, "photoshare/u/x.png")))
	assert.Equal(t, []string{"photoshare/u/x.png"}, media.deleted)
}
