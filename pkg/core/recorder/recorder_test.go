package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type insert struct {
	urlID                 int64
	city, country, device string
}

type fakeClicks struct {
	mu      sync.Mutex
	inserts []insert
	err     error
	block   chan struct{}
}

func (f *fakeClicks) Insert(_ context.Context, urlID int64, city, country, device string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserts = append(f.inserts, insert{urlID, city, country, device})
	return nil
}

func (f *fakeClicks) ListForURLs(context.Context, []int64) ([]domain.Click, error) { return nil, nil }
func (f *fakeClicks) ListForURL(context.Context, int64) ([]domain.Click, error) { return nil, nil }

type fakeLocator struct {
	loc domain.Location
	err error
}

func (l fakeLocator) Locate(context.Context, string) (domain.Location, error) {
	return l.loc, l.err
}

func TestRecorderRecordsQueuedVisits(t *testing.T) {
	clicks := &fakeClicks{}
	r := New(clicks, fakeLocator{loc: domain.Location{City: "Bangkok", Country: "Thailand"}}, zap.NewNop(), Options{Workers: 2, Buffer: 8})

	require.True(t, r.Enqueue(domain.Visit{LinkID: 1, IP: "203.0.113.7"}))
	require.True(t, r.Enqueue(domain.Visit{LinkID: 2, UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148"}))
	require.NoError(t, r.Close())

	require.Len(t, clicks.inserts, 2)
	byID := map[int64]insert{}
	for _, in := range clicks.inserts {
		byID[in.urlID] = in
	}
	assert.Equal(t, insert{1, "Bangkok", "Thailand", "desktop"}, byID[1])
	assert.Equal(t, "mobile", byID[2].device)
}

func TestRecorderGeolocationFailureStillRecords(t *testing.T) {
	clicks := &fakeClicks{}
	r := New(clicks, fakeLocator{err: errors.New("rate limited")}, zap.NewNop(), Options{Workers: 1, Buffer: 1})

	require.True(t, r.Enqueue(domain.Visit{LinkID: 9}))
	require.NoError(t, r.Close())

	require.Len(t, clicks.inserts, 1)
	assert.Equal(t, insert{9, "Unknown", "Unknown", "desktop"}, clicks.inserts[0])
}

func TestRecorderSwallowsInsertFailure(t *testing.T) {
	clicks := &fakeClicks{err: errors.New("disk I/O error")}
	r := New(clicks, nil, zap.NewNop(), Options{Workers: 1, Buffer: 1})

	assert.True(t, r.Enqueue(domain.Visit{LinkID: 1}))
	assert.NoError(t, r.Close())
}

func TestRecorderDropsWhenFull(t *testing.T) {
	clicks := &fakeClicks{block: make(chan struct{})}
	r := New(clicks, nil, zap.NewNop(), Options{Workers: 1, Buffer: 1, Timeout: time.Second})

	// The first visit may be taken by the worker, the next fills the buffer.
	accepted := 0
	for i := 0; i < 5; i++ {
		if r.Enqueue(domain.Visit{LinkID: int64(i)}) {
			accepted++
		}
	}
	assert.LessOrEqual(t, accepted, 2)
	assert.GreaterOrEqual(t, accepted, 1)

	close(clicks.block)
	require.NoError(t, r.Close())
	assert.Len(t, clicks.inserts, accepted)
}

func TestRecorderRejectsAfterClose(t *testing.T) {
	r := New(&fakeClicks{}, nil, zap.NewNop(), Options{Workers: 1})
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.False(t, r.Enqueue(domain.Visit{LinkID: 1}))
}
