package field

import (
	"sort"
	"sync"
	"time"
)

// FrameID identifies a pending frame request.
type FrameID uint64

// FrameFunc is invoked once for a granted frame.
type FrameFunc func(now time.Time)

// Scheduler is the host's "render next frame" primitive.
// A request is granted at most once; CancelFrame on a granted or unknown
// id does nothing.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
}

// frameQueue is the pending set shared by both schedulers.
type frameQueue struct {
	mu      sync.Mutex
	nextID  FrameID
	pending map[FrameID]FrameFunc
}

func (q *frameQueue) request(fn FrameFunc) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = make(map[FrameID]FrameFunc)
	}
	q.nextID++
	q.pending[q.nextID] = fn
	return q.nextID
}

func (q *frameQueue) cancel(id FrameID) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

// take removes and returns the callbacks pending right now, oldest first.
// Callbacks requested while these run wait for the next round.
func (q *frameQueue) take() []FrameFunc {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	ids := make([]FrameID, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]FrameFunc, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, q.pending[id])
		delete(q.pending, id)
	}
	return fns
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// ManualScheduler runs pending frames when the host calls Advance.
// The ebiten host calls Advance from Update, which ebiten drives at the
// display tick; tests call it directly for deterministic stepping.
type ManualScheduler struct {
	q frameQueue
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame implements Scheduler.
func (s *ManualScheduler) RequestFrame(fn FrameFunc) FrameID { return s.q.request(fn) }

// CancelFrame implements Scheduler.
func (s *ManualScheduler) CancelFrame(id FrameID) { s.q.cancel(id) }

// Advance runs every callback pending at call time and reports how many ran.
func (s *ManualScheduler) Advance(now time.Time) int {
	fns := s.q.take()
	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}

// Pending reports the number of outstanding requests.
func (s *ManualScheduler) Pending() int { return s.q.len() }

// DefaultFrameInterval is the fixed-rate substitute for a 60 Hz display.
const DefaultFrameInterval = time.Second / 60

// TickerScheduler grants pending frames from a time.Ticker goroutine.
// Close stops the goroutine and waits for it to exit.
type TickerScheduler struct {
	q      frameQueue
	ticker *time.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// NewTickerScheduler starts a scheduler ticking at interval. A non-positive
// interval selects DefaultFrameInterval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	s := &TickerScheduler{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *TickerScheduler) run() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			return
		case now := <-s.ticker.C:
			for _, fn := range s.q.take() {
				fn(now)
			}
		}
	}
}

// RequestFrame implements Scheduler.
func (s *TickerScheduler) RequestFrame(fn FrameFunc) FrameID { return s.q.request(fn) }

// CancelFrame implements Scheduler.
func (s *TickerScheduler) CancelFrame(id FrameID) { s.q.cancel(id) }

// Close stops the ticker goroutine. It must not be called from inside a
// frame callback of the same scheduler.
func (s *TickerScheduler) Close() {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.stopCh)
	})
	<-s.doneCh
}
