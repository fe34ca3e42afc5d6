package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"

	"github.com/example/tilegrab/internal/ports/secondary"
)

// mockFetcher returns the result of fetchFn and counts calls.
type mockFetcher struct {
	fetchFn func(ctx context.Context, url string) ([]byte, error)
	calls   atomic.Int64
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.calls.Add(1)
	return m.fetchFn(ctx, url)
}

func staticFetcher(data []byte) *mockFetcher {
	return &mockFetcher{fetchFn: func(context.Context, string) ([]byte, error) { return data, nil }}
}

func failingFetcher(err error) *mockFetcher {
	return &mockFetcher{fetchFn: func(context.Context, string) ([]byte, error) { return nil, err }}
}

// stubURLs builds recognizable URLs without any WMS knowledge.
type stubURLs struct{}

func (stubURLs) LabelURL(b [4]float64, w, h int) string {
	return fmt.Sprintf("label/%v/%dx%d", b, w, h)
}

func (stubURLs) ImageURL(b [4]float64, w, h int) string {
	return fmt.Sprintf("image/%v/%dx%d", b, w, h)
}

// memStore is an in-memory secondary.TileStore.
type memStore struct {
	mu       sync.Mutex
	root     string
	existing map[string]struct{}
	masks    map[string]*image.Gray
	images   map[string][]byte

	layoutErr   error
	maskErr     error
	imageErr    error
	scanCalls   int
	layoutCalls int
}

func newMemStore(existing ...string) *memStore {
	s := &memStore{
		root:     "mem",
		existing: map[string]struct{}{},
		masks:    map[string]*image.Gray{},
		images:   map[string][]byte{},
	}
	for _, name := range existing {
		s.existing[name] = struct{}{}
	}
	return s
}

func (s *memStore) Root() string { return s.root }

func (s *memStore) EnsureLayout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layoutCalls++
	return s.layoutErr
}

func (s *memStore) ExistingImages(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanCalls++
	out := make(map[string]struct{}, len(s.existing)+len(s.images))
	for name := range s.existing {
		out[name] = struct{}{}
	}
	for name := range s.images {
		out[name] = struct{}{}
	}
	return out, nil
}

func (s *memStore) WriteMask(ctx context.Context, filename string, mask *image.Gray) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maskErr != nil {
		return s.maskErr
	}
	s.masks[filename] = mask
	return nil
}

func (s *memStore) WriteImage(ctx context.Context, filename string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imageErr != nil {
		return s.imageErr
	}
	s.images[filename] = data
	return nil
}

func (s *memStore) maskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.masks)
}

func (s *memStore) imageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// mockLedger records everything it is given.
type mockLedger struct {
	mu       sync.Mutex
	started  []*secondary.RunRecord
	events   []*secondary.TileEventRecord
	finished []*secondary.RunRecord
	eventErr error
}

func (m *mockLedger) StartRun(ctx context.Context, run *secondary.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, run)
	return nil
}

func (m *mockLedger) RecordTile(ctx context.Context, event *secondary.TileEventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.eventErr
}

func (m *mockLedger) FinishRun(ctx context.Context, run *secondary.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, run)
	return nil
}

// labelPNG encodes a w x h white raster with n dark pixels.
func labelPNG(w, h, n int) []byte {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for i := 0; i < n; i++ {
		img.Pix[i] = 0
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func grayImage(w, h int, fill uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fill})
		}
	}
	return img
}

var errUpstream = errors.New("upstream unavailable")

var (
	_ secondary.Fetcher      = (*mockFetcher)(nil)
	_ secondary.URLBuilder   = stubURLs{}
	_ secondary.TileStore    = (*memStore)(nil)
	_ secondary.LedgerWriter = (*mockLedger)(nil)
)
