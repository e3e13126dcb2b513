package http

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/sensors"
	"github.com/go-chi/chi/v5"
)

// ReadingRequest is the body of POST /sensors/{id}/readings
type ReadingRequest struct {
	Value *float64 `json:"value"`
}

// ClassifyRequest is the body of POST /sensors/classify
type ClassifyRequest struct {
	State models.SensorState `json:"state"`
	Value *float64           `json:"value"`
}

// GetSensors returns the live state of every sensor in the session
func (h *Handlers) GetSensors(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, "", h.session.Snapshot(), http.StatusOK)
}

// GetSensor returns the live state of one sensor
func (h *Handlers) GetSensor(w http.ResponseWriter, r *http.Request) {
	state, exists := h.session.Get(chi.URLParam(r, "id"))
	if !exists {
		h.sendErrorResponse(w, "Sensor not found", http.StatusNotFound)
		return
	}

	h.sendSuccessResponse(w, "", state, http.StatusOK)
}

// AddSensorReading feeds one reading into the session and broadcasts the update
func (h *Handlers) AddSensorReading(w http.ResponseWriter, r *http.Request) {
	id := sensors.NormalizeID(chi.URLParam(r, "id"))
	if id == "" {
		h.sendErrorResponse(w, "Sensor ID is required", http.StatusBadRequest)
		return
	}
	if _, known := sensors.ProfileFor(id); !known {
		h.sendErrorResponse(w, "Unknown sensor: "+id, http.StatusNotFound)
		return
	}

	var request ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if request.Value == nil || math.IsNaN(*request.Value) || math.IsInf(*request.Value, 0) {
		h.sendErrorResponse(w, "A finite value is required", http.StatusBadRequest)
		return
	}

	state, err := h.session.Tick(id, *request.Value)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	}
	if h.hub != nil {
		h.hub.BroadcastSensorStates([]models.SensorState{state})
	}

	h.sendSuccessResponse(w, "Sensor reading recorded", state, http.StatusOK)
}

// ClassifySensor classifies a value against a caller-supplied state without touching the session
func (h *Handlers) ClassifySensor(w http.ResponseWriter, r *http.Request) {
	var request ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if request.Value == nil || math.IsNaN(*request.Value) || math.IsInf(*request.Value, 0) {
		h.sendErrorResponse(w, "A finite value is required", http.StatusBadRequest)
		return
	}

	state := sensors.Classify(request.State, *request.Value)
	state.UpdatedAt = time.Now()

	h.sendSuccessResponse(w, "", state, http.StatusOK)
}

// GetSensorProfiles returns the classification tables of all known parameters
func (h *Handlers) GetSensorProfiles(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, "", sensors.Profiles(), http.StatusOK)
}
