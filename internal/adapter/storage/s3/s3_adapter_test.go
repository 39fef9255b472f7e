package s3

import (
	"strings"
	"testing"

	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := objectKey("Beach House.JPG")

	assert.True(t, strings.HasPrefix(key, "listings/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, objectKey("Beach House.JPG"))
	assert.Equal(t, len("listings/")+36, len(objectKey("noext")))
}

func TestObjectURL(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("key", "secret", ""),
		Secure: false,
	})
	require.NoError(t, err)

	s := newS3Storage(client, "wanderlust-listings", logger.NewNop())

	assert.Equal(t, "http://localhost:9000/wanderlust-listings/listings/a.png", s.objectURL("listings/a.png"))
}
