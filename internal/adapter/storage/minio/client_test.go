package minio

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("6f1c1a52-2a7e-4c57-9d59-3b3b2f0f6c11")
	assert.Equal(t, "photoshare/alice/6f1c1a52-2a7e-4c57-9d59-3b3b2f0f6c11-cat.png", ObjectKey("photoshare", "alice", id, "cat.png"))
	// путь из имени файла отбрасывается
	assert.Equal(t, "photoshare/alice/6f1c1a52-2a7e-4c57-9d59-3b3b2f0f6c11-cat.png", ObjectKey("photoshare", "alice", id, "../../etc/cat.png"))
}

func TestObjectKey_SameFileNameDoesNotCollide(t *testing.T) {
	first := ObjectKey("photoshare", "alice", uuid.New(), "cat.png")
	second := ObjectKey("photoshare", "alice", uuid.New(), "cat.png")

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "photoshare/alice/"))
	assert.True(t, strings.HasSuffix(second, "-cat.png"))
}

func TestObjectURL(t *testing.T) {
	c := &Client{publicBaseURL: "http://localhost:9000", bucketName: "images"}
	assert.Equal(t, "http://localhost:9000/images/photoshare/alice/cat.png", c.objectURL("photoshare/alice/cat.png"))
}

func TestTransform(t *testing.T) {
	c := &Client{}

	out, err := c.Transform("http://localhost:9000/images/a/b/cat.png", "thumbnail")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/images/a/b/cat.png?fit=crop&h=150&w=150", out)

	out, err = c.Transform(out, "Grayscale")
	require.NoError(t, err)
	assert.Contains(t, out, "effect=grayscale")
	assert.Contains(t, out, "w=150")
}

func TestTransform_UnknownProfile(t *testing.T) {
	_, err := transform("http://localhost/x.png", "vaporwave")
	require.Error(t, err)
}

func TestProfiles_Sorted(t *testing.T) {
	assert.Equal(t, []string{"avatar", "grayscale", "preview", "sepia", "thumbnail"}, Profiles())
}
