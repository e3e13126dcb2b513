package sensors

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
)

// DefaultSensors lists the instruments seeded into every new session
var DefaultSensors = []string{
	"turbidity", "ph", "cod", "bod", "tss", "tds",
	"nitrogen", "phosphorus", "flow", "efficiency", "dissolved_oxygen",
}

// ErrUnknownSensor is returned when a reading names a sensor without a classification profile
var ErrUnknownSensor = errors.New("unknown sensor")

// Session owns the sensor states of one monitoring session
type Session struct {
	mu         sync.RWMutex
	states     map[string]models.SensorState
	windowSize int
	now        func() time.Time
}

// NewSession creates a session seeded with DefaultSensors at their baselines
func NewSession(windowSize int) *Session {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	s := &Session{
		states:     make(map[string]models.SensorState),
		windowSize: windowSize,
		now:        time.Now,
	}

	for _, id := range DefaultSensors {
		profile, _ := ProfileFor(id)
		state := NewState(profile, windowSize)
		state.UpdatedAt = s.now()
		s.states[profile.ID] = state
	}

	return s
}

// Tick feeds one reading to a sensor and returns its new state.
// Only sensors with a classification profile are accepted.
func (s *Session) Tick(id string, value float64) (models.SensorState, error) {
	key := NormalizeID(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.states[key]
	if !exists {
		profile, ok := ProfileFor(key)
		if !ok {
			return models.SensorState{}, fmt.Errorf("%w: %q", ErrUnknownSensor, id)
		}
		state = NewState(profile, s.windowSize)
	}

	next := Classify(state, value)
	next.UpdatedAt = s.now()
	s.states[key] = next

	return copyState(next), nil
}

// Get returns the current state of a sensor
func (s *Session) Get(id string) (models.SensorState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[NormalizeID(id)]
	if !exists {
		return models.SensorState{}, false
	}
	return copyState(state), true
}

// Snapshot returns all sensor states sorted by id
func (s *Session) Snapshot() []models.SensorState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.SensorState, 0, len(s.states))
	for _, state := range s.states {
		result = append(result, copyState(state))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result
}

// IDs returns the ids of all sensors in the session, sorted
func (s *Session) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of sensors in the session
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

func copyState(state models.SensorState) models.SensorState {
	state.History = append([]float64(nil), state.History...)
	return state
}
