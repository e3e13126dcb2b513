package http

import (
	"net/http"

	"github.com/Capstone-E1/aquasmart_treatment/internal/sensors"
	"github.com/Capstone-E1/aquasmart_treatment/internal/services"
	"github.com/Capstone-E1/aquasmart_treatment/internal/store"
	"github.com/Capstone-E1/aquasmart_treatment/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all HTTP routes for the treatment API
func SetupRoutes(dataStore store.DataStore, session *sensors.Session, evaluations *services.EvaluationService, wsHub *ws.Hub) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // In production, specify allowed origins
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := NewHandlers(dataStore, session, evaluations, wsHub)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := dataStore.Ping(); err != nil {
			handlers.sendErrorResponse(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		handlers.sendSuccessResponse(w, "ok", nil, http.StatusOK)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// System stats
		r.Get("/stats", handlers.GetSystemStats)

		// Treatment stage decisions
		r.Route("/treatment", func(r chi.Router) {
			r.Post("/simulate", handlers.SimulateTreatment)
			r.Post("/preview", handlers.PreviewTreatment)
			r.Get("/thresholds", handlers.GetThresholds)
			r.Get("/history", handlers.GetTreatmentHistory)
			r.Get("/history/{id}", handlers.GetTreatmentEvaluation)
		})

		// Live sensor monitoring
		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", handlers.GetSensors)
			r.Get("/profiles", handlers.GetSensorProfiles)
			r.Post("/classify", handlers.ClassifySensor)
			r.Get("/{id}", handlers.GetSensor)
			r.Post("/{id}/readings", handlers.AddSensorReading)
		})

		// Export routes for evaluation history
		r.Route("/export", func(r chi.Router) {
			r.Get("/history.xlsx", handlers.ExportHistoryExcel)
			r.Get("/history.csv", handlers.ExportHistoryCSV)
		})
	})

	// WebSocket route for real-time updates
	if wsHub != nil {
		r.HandleFunc("/ws", wsHub.HandleWebSocket)
	}

	return r
}
