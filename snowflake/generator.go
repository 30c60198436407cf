package snowflake

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrRegionOutOfRange  = fmt.Errorf("region id must be in the range 0-%d", MaxRegionID)
	ErrWorkerOutOfRange  = fmt.Errorf("worker id must be in the range 0-%d", MaxWorkerID)
	ErrNotConfigured     = errors.New("the generator has not been configured with a region and worker id")
	ErrBeforeEpoch       = errors.New("the clock reads earlier than the snowflake epoch")
	ErrTimestampOverflow = fmt.Errorf("the timestamp no longer fits in %d bits", TimestampBits)
	ErrInvalidID         = errors.New("invalid snowflake id")
)

// WaitReason says why NextID had to block before minting.
type WaitReason int

const (
	// WaitSequenceExhausted means every sequence number of the current
	// millisecond was already handed out.
	WaitSequenceExhausted WaitReason = iota
	// WaitClockRegression means the clock read earlier than the last minted
	// millisecond, typically after an ntp step.
	WaitClockRegression
)

func (r WaitReason) String() string {
	switch r {
	case WaitSequenceExhausted:
		return "sequence_exhausted"
	case WaitClockRegression:
		return "clock_regression"
	default:
		return "unknown"
	}
}

// Observer is told about every mint and every stall. Implementations must be
// cheap, they are called with the generator lock held.
type Observer interface {
	Minted()
	Waited(reason WaitReason, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) Minted()                          {}
func (nopObserver) Waited(WaitReason, time.Duration) {}

type Option func(*Generator)

func WithClock(c Clock) Option {
	return func(g *Generator) { g.clock = c }
}

func WithObserver(o Observer) Option {
	return func(g *Generator) { g.observer = o }
}

// Generator mints snowflake ids for a single region and worker.
//
// All methods are safe for concurrent use. NextID blocks while the current
// millisecond's sequence is exhausted, and for as long as the clock reads
// earlier than the last minted millisecond. There is no timeout: a clock
// stepped back by an hour stalls minting for an hour.
type Generator struct {
	mu       sync.Mutex
	clock    Clock
	observer Observer

	configured bool
	regionID   int64
	workerID   int64

	// lastMillis is unix milliseconds, not yet shifted by the epoch. Zero
	// means nothing has been minted.
	lastMillis int64
	sequence   int64
}

// New returns a generator that must be configured before it can mint.
func New(opts ...Option) *Generator {
	g := &Generator{
		clock:    SystemClock,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func NewConfigured(regionID, workerID int64, opts ...Option) (*Generator, error) {
	g := New(opts...)
	if err := g.Configure(regionID, workerID); err != nil {
		return nil, err
	}
	return g, nil
}

// Configure sets the region and worker id and resets the minting state.
// Out of range values are rejected and leave the generator untouched.
//
// Reconfiguring after ids have been minted resets the last millisecond and the
// sequence, so later ids may sort below ids minted before the call.
func (g *Generator) Configure(regionID, workerID int64) error {
	return g.Reconfigure(regionID, workerID, 0)
}

// Reconfigure is Configure followed by Resume(floor), done atomically so no id
// can be minted between the two.
func (g *Generator) Reconfigure(regionID, workerID, floor int64) error {
	if regionID < 0 || regionID > MaxRegionID {
		return fmt.Errorf("%d: %w", regionID, ErrRegionOutOfRange)
	}
	if workerID < 0 || workerID > MaxWorkerID {
		return fmt.Errorf("%d: %w", workerID, ErrWorkerOutOfRange)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.regionID = regionID
	g.workerID = workerID
	g.lastMillis = 0
	g.sequence = 0
	g.configured = true
	g.resume(floor)
	return nil
}

// Config returns the configured region and worker id.
func (g *Generator) Config() (regionID, workerID int64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.regionID, g.workerID, g.configured
}

// NextID mints the next id. Ids from one generator are unique and strictly
// increasing as long as it is not reconfigured.
func (g *Generator) NextID() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.configured {
		return 0, ErrNotConfigured
	}

	now := g.clock.NowMillis()
	if g.sequence > MaxSequence || g.lastMillis > now {
		now = g.waitPast(now)
	}
	if now > g.lastMillis {
		g.lastMillis = now
		g.sequence = 0
	}

	delta := g.lastMillis - Epoch
	if delta < 0 {
		return 0, fmt.Errorf("%d: %w", g.lastMillis, ErrBeforeEpoch)
	}
	if delta > MaxTimestamp {
		return 0, fmt.Errorf("%d: %w", g.lastMillis, ErrTimestampOverflow)
	}

	id := delta<<TimeShift |
		g.regionID<<RegionShift |
		g.workerID<<WorkerShift |
		g.sequence
	g.sequence++

	g.observer.Minted()
	return ID(id), nil
}

// waitPast samples the clock until it reads strictly later than lastMillis.
// Large regressions are slept through, otherwise the goroutine just yields.
func (g *Generator) waitPast(now int64) int64 {
	reason := WaitSequenceExhausted
	if g.lastMillis > now {
		reason = WaitClockRegression
	}
	start := now
	for now <= g.lastMillis {
		g.clock.Sleep(time.Duration(g.lastMillis-now-1) * time.Millisecond)
		now = g.clock.NowMillis()
	}
	g.observer.Waited(reason, time.Duration(now-start)*time.Millisecond)
	return now
}

// Decode unpacks an id. It does not depend on the minting state.
func (g *Generator) Decode(id ID) Decoded {
	return Decode(id)
}

// LastMillis returns the unix millisecond of the most recently minted id, or
// the floor set by Resume.
func (g *Generator) LastMillis() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastMillis
}

// Resume raises the generator's last millisecond to at least millis, so the
// next id is minted strictly after it. It is used after a restart to skip past
// ids an earlier process may already have handed out. Lower values are
// ignored.
func (g *Generator) Resume(millis int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resume(millis)
}

func (g *Generator) resume(millis int64) {
	if millis <= g.lastMillis {
		return
	}
	g.lastMillis = millis
	g.sequence = MaxSequence + 1
}
