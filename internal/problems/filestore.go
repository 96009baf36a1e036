package problems

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DownloadFunc fetches the blob behind url into path.
type DownloadFunc func(url string, path string) error

// FileStore is a sha256-keyed local cache of test case blobs. Downloads
// run in the background; Await blocks until the requested key has been
// fetched and verified.
type FileStore struct {
	fileDir      string
	tmpDir       string
	downloadFunc DownloadFunc

	awaited   chan string
	scheduled chan string
	keyToUrl  *sync.Map
	locks     *sync.Map
	done      *sync.Map
}

func NewFileStore(fileDir string, tmpDir string, downloadFunc DownloadFunc) (*FileStore, error) {
	fs := &FileStore{
		fileDir:      fileDir,
		tmpDir:       tmpDir,
		downloadFunc: downloadFunc,
		awaited:      make(chan string, 10000),
		scheduled:    make(chan string, 10000),
		keyToUrl:     &sync.Map{},
		locks:        &sync.Map{},
		done:         &sync.Map{},
	}

	if err := os.MkdirAll(fs.fileDir, 0777); err != nil {
		return nil, fmt.Errorf("failed to create file store directory: %w", err)
	}
	if err := os.MkdirAll(fs.tmpDir, 0777); err != nil {
		return nil, fmt.Errorf("failed to create tmp directory: %w", err)
	}

	return fs, nil
}

type downloadState struct {
	cond *sync.Cond
	err  error
}

// Schedule queues a download for key if it is not already scheduled.
// Key must be the sha256 of the blob's contents; it doubles as the
// integrity check after download.
func (fs *FileStore) Schedule(key string, url string) error {
	_, loaded := fs.keyToUrl.LoadOrStore(key, url)
	if loaded {
		return nil // already scheduled
	}

	state := &downloadState{cond: sync.NewCond(&sync.Mutex{})}
	fs.locks.Store(key, state)

	fs.scheduled <- key
	return nil
}

// Await blocks until key has been downloaded and returns its contents.
func (fs *FileStore) Await(key string) ([]byte, error) {
	state, exists := fs.locks.Load(key)
	if !exists {
		return nil, fmt.Errorf("file %s has not been scheduled for download", key)
	}
	fs.awaited <- key

	st := state.(*downloadState)
	st.cond.L.Lock()
	for {
		if _, ok := fs.done.Load(key); ok {
			break
		}
		st.cond.Wait()
	}
	err := st.err
	st.cond.L.Unlock()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(fs.fileDir, key))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", key, err)
	}
	return data, nil
}

// Start downloads scheduled files in the background, prioritizing files
// a caller is already waiting on.
func (fs *FileStore) Start() {
	go func() {
		for {
			var key string
			select {
			case key = <-fs.awaited:
			case key = <-fs.scheduled:
			}
			fs.downloadIfMissing(key)
		}
	}()
}

func (fs *FileStore) downloadIfMissing(key string) {
	state, ok := fs.locks.Load(key)
	if !ok {
		return
	}
	st := state.(*downloadState)
	if _, ok := fs.done.Load(key); ok {
		return
	}

	err := fs.fetch(key)

	st.cond.L.Lock()
	st.err = err
	fs.done.Store(key, struct{}{})
	st.cond.Broadcast()
	st.cond.L.Unlock()
}

func (fs *FileStore) fetch(key string) error {
	finalPath := filepath.Join(fs.fileDir, key)
	if _, err := os.Stat(finalPath); err == nil {
		return nil // already in cache from a previous run
	}

	url, ok := fs.keyToUrl.Load(key)
	if !ok {
		return fmt.Errorf("file %s has not been scheduled for download", key)
	}

	tmpPath := filepath.Join(fs.tmpDir, key)
	if err := fs.downloadFunc(url.(string), tmpPath); err != nil {
		return fmt.Errorf("failed to download file %s: %w", key, err)
	}

	if err := verifySha256(tmpPath, key); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("failed to move file %s into file store: %w", key, err)
	}
	return nil
}

func verifySha256(path string, expected string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read downloaded file: %w", err)
	}
	sum := sha256.Sum256(data)
	actual := hex.EncodeToString(sum[:])
	if actual != expected {
		return fmt.Errorf("integrity mismatch for %s: got sha256 %s", expected, actual)
	}
	return nil
}
