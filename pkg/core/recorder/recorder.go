// Package recorder turns visits into click rows off the request path.
package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Workers int
	Buffer  int
	// Timeout bounds geolocation plus insert for a single visit.
	Timeout time.Duration
}

// Recorder accepts visits without blocking and records them on a fixed pool
// of workers. Failures are logged and never reach the visitor.
type Recorder struct {
	clicks  ports.ClickService
	locator ports.Locator
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Visit
	group  errgroup.Group
}

// New starts the workers. locator may be nil, in which case every click is
// recorded with an unknown place.
func New(clicks ports.ClickService, locator ports.Locator, logger *zap.Logger, opts Options) *Recorder {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	r := &Recorder{
		clicks:  clicks,
		locator: locator,
		logger:  logger.Named("recorder"),
		timeout: opts.Timeout,
		queue:   make(chan domain.Visit, opts.Buffer),
	}
	for i := 0; i < opts.Workers; i++ {
		r.group.Go(r.work)
	}
	return r
}

// Enqueue hands v to the workers. It returns false if the queue is full or
// the recorder is closed.
func (r *Recorder) Enqueue(v domain.Visit) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.queue <- v:
		return true
	default:
		r.logger.Warn("click buffer full, dropping visit", zap.Int64("url_id", v.LinkID))
		return false
	}
}

// Close stops accepting visits, records everything already queued and waits
// for the workers to exit.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	return r.group.Wait()
}

func (r *Recorder) work() error {
	for v := range r.queue {
		r.record(v)
	}
	return nil
}

func (r *Recorder) record(v domain.Visit) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	device := DetectDevice(v.UserAgent)
	loc := r.locate(ctx, v.IP)

	if err := r.clicks.Insert(ctx, v.LinkID, loc.City, loc.Country, device); err != nil {
		r.logger.Warn("click not recorded", zap.Int64("url_id", v.LinkID), zap.Error(err))
		return
	}
	r.logger.Debug("click recorded",
		zap.Int64("url_id", v.LinkID),
		zap.String("device", device),
		zap.String("country", loc.Country),
	)
}

func (r *Recorder) locate(ctx context.Context, ip string) domain.Location {
	loc := domain.Location{City: domain.UnknownPlace, Country: domain.UnknownPlace}
	if r.locator == nil {
		return loc
	}
	found, err := r.locator.Locate(ctx, ip)
	if err != nil {
		r.logger.Debug("geolocation failed", zap.String("ip", ip), zap.Error(err))
		return loc
	}
	if found.City != "" {
		loc.City = found.City
	}
	if found.Country != "" {
		loc.Country = found.Country
	}
	return loc
}

var _ ports.VisitRecorder = (*Recorder)(nil)
