package problems_test

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeclash/judge/internal/problems"
)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// localDownloadFunc serves blobs from an in-memory map keyed by url.
func localDownloadFunc(blobs map[string][]byte) problems.DownloadFunc {
	return func(url string, path string) error {
		data, ok := blobs[url]
		if !ok {
			return fmt.Errorf("no such blob: %s", url)
		}
		return os.WriteFile(path, data, 0644)
	}
}

func newTestFileStore(t *testing.T, blobs map[string][]byte) *problems.FileStore {
	t.Helper()
	fs, err := problems.NewFileStore(t.TempDir(), t.TempDir(), localDownloadFunc(blobs))
	require.NoError(t, err)
	fs.Start()
	return fs
}

func TestFileStoreScheduleAndAwait(t *testing.T) {
	content := []byte("315941512 -119267504\n")
	key := sha256Hex(content)
	fs := newTestFileStore(t, map[string][]byte{"mem://test1": content})

	require.NoError(t, fs.Schedule(key, "mem://test1"))

	body, err := fs.Await(key)
	require.NoError(t, err)
	assert.Equal(t, content, body)

	// awaiting again serves from cache
	body, err = fs.Await(key)
	require.NoError(t, err)
	assert.Equal(t, content, body)
}

func TestFileStoreAwaitUnscheduled(t *testing.T) {
	fs := newTestFileStore(t, nil)
	_, err := fs.Await("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.Error(t, err)
}

func TestFileStoreIntegrityMismatch(t *testing.T) {
	content := []byte("196674008\n")
	fs := newTestFileStore(t, map[string][]byte{"mem://test2": content})

	// key does not match the blob's sha256
	wrongKey := "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
	require.NoError(t, fs.Schedule(wrongKey, "mem://test2"))

	_, err := fs.Await(wrongKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integrity")
}

func TestFileStoreDownloadFailure(t *testing.T) {
	fs := newTestFileStore(t, nil)
	key := sha256Hex([]byte("whatever"))
	require.NoError(t, fs.Schedule(key, "mem://missing"))

	_, err := fs.Await(key)
	require.Error(t, err)
}

func TestFileStoreScheduleIdempotent(t *testing.T) {
	content := []byte("hello\n")
	key := sha256Hex(content)
	fs := newTestFileStore(t, map[string][]byte{"mem://hello": content})

	require.NoError(t, fs.Schedule(key, "mem://hello"))
	require.NoError(t, fs.Schedule(key, "mem://hello"))

	body, err := fs.Await(key)
	require.NoError(t, err)
	assert.Equal(t, content, body)
}
