package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// fileStore persists one JSON document per state under a base URL. Any afs
// scheme works: file:// survives process restarts (the browser redirect may
// land on a freshly started instance), mem:// serves tests.
type fileStore struct {
	fs      afs.Service
	baseURL string
}

func (f *fileStore) Put(ctx context.Context, key string, data []byte) error {
	URL := f.entryURL(key)
	if err := f.fs.Upload(ctx, URL, 0600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save pending authorization: %w", err)
	}
	return nil
}

func (f *fileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	URL := f.entryURL(key)
	if ok, _ := f.fs.Exists(ctx, URL); !ok {
		return nil, false, nil
	}
	data, err := f.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		// a failed read is reported as not found, the caller restarts the flow
		return nil, false, nil
	}
	// read-once: drop the entry; a failed delete widens the documented
	// double-read window but does not affect this read
	_ = f.fs.Delete(ctx, URL)
	return data, true, nil
}

func (f *fileStore) entryURL(key string) string {
	return url.Join(f.baseURL, "auth_"+key+".json")
}

// NewFileStore creates a read-once store persisting entries under baseURL.
func NewFileStore(baseURL string) Store {
	return &fileStore{fs: afs.New(), baseURL: baseURL}
}
