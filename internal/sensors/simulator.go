package sensors

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
)

// Simulator drives a Session with random-walk readings on a fixed interval
type Simulator struct {
	session   *Session
	interval  time.Duration
	rng       *rand.Rand
	onUpdate  func([]models.SensorState)
	ticker    *time.Ticker
	stopChan  chan struct{}
	mu        sync.Mutex
	isRunning bool
}

// NewSimulator creates a simulator; a nil rng is seeded from the clock
func NewSimulator(session *Session, interval time.Duration, rng *rand.Rand) *Simulator {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		session:  session,
		interval: interval,
		rng:      rng,
	}
}

// SetUpdateHandler sets the callback invoked with the session snapshot after each tick
func (s *Simulator) SetUpdateHandler(handler func([]models.SensorState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = handler
}

// Start begins ticking in the background
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		log.Println("⚠️  Simulator: Already running")
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.stopChan = make(chan struct{})
	s.isRunning = true

	log.Printf("📈 Simulator: Started - %d sensors every %s", s.session.Len(), s.interval)

	go s.run(s.ticker, s.stopChan)
}

// Stop halts the background ticking
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.ticker.Stop()
	close(s.stopChan)
	s.isRunning = false

	log.Println("🛑 Simulator: Stopped")
}

// IsRunning reports whether the background loop is active
func (s *Simulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Simulator) run(ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			s.Step()
		case <-stop:
			return
		}
	}
}

// Step performs one tick: every sensor gets a new reading, then the update handler runs
func (s *Simulator) Step() []models.SensorState {
	s.mu.Lock()
	for _, id := range s.session.IDs() {
		current, _ := s.session.Get(id)
		if _, err := s.session.Tick(id, s.nextValue(current)); err != nil {
			log.Printf("⚠️  Simulator skipped %s: %v", id, err)
		}
	}
	handler := s.onUpdate
	s.mu.Unlock()

	snapshot := s.session.Snapshot()
	if handler != nil {
		handler(snapshot)
	}
	return snapshot
}

// nextValue moves the reading by up to 5% of the operating span, kept within
// half a span outside the bounds and never negative. Profiles without bounds
// use [0, last breakpoint].
func (s *Simulator) nextValue(state models.SensorState) float64 {
	bounds := state.Thresholds
	if profile, ok := ProfileFor(state.ID); ok {
		bounds = profile.Bounds
		if bounds.Max <= bounds.Min && len(profile.Breakpoints) > 0 {
			bounds = models.ThresholdBounds{Max: profile.Breakpoints[len(profile.Breakpoints)-1].UpperBound}
		}
	}
	if bounds.Max <= bounds.Min {
		bounds = models.ThresholdBounds{Max: math.Max(2*math.Abs(state.Value), 1)}
	}

	span := bounds.Max - bounds.Min

	next := state.Value + (s.rng.Float64()*2-1)*span*0.05
	lo := math.Max(0, bounds.Min-span/2)
	hi := bounds.Max + span/2
	if hi <= lo {
		hi = lo + span
	}

	return math.Min(math.Max(next, lo), hi)
}
