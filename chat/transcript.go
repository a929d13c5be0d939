package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// Transcript accumulates the conversation and saves it as a timestamped
// text file under a base URL (file, mem, s3 or gs scheme).
type Transcript struct {
	fs      afs.Service
	baseURL string
	mux     sync.Mutex
	lines   []string
}

// Append records one exchange line.
func (t *Transcript) Append(role, text string) {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.lines = append(t.lines, role+": "+text)
}

// Save uploads the transcript collected so far and returns its URL.
func (t *Transcript) Save(ctx context.Context) (string, error) {
	t.mux.Lock()
	content := strings.Join(t.lines, "\n")
	t.mux.Unlock()
	if content == "" {
		return "", fmt.Errorf("transcript is empty")
	}
	URL := url.Join(t.baseURL, fmt.Sprintf("conversation-%s.txt", time.Now().Format("20060102-150405")))
	if err := t.fs.Upload(ctx, URL, 0644, strings.NewReader(content+"\n")); err != nil {
		return "", fmt.Errorf("failed to save transcript: %w", err)
	}
	return URL, nil
}

// NewTranscript creates a transcript recorder rooted at baseURL.
func NewTranscript(baseURL string) *Transcript {
	return &Transcript{fs: afs.New(), baseURL: baseURL}
}
