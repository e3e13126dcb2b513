package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/config"
	"github.com/Capstone-E1/aquasmart_treatment/internal/database"
	httphandlers "github.com/Capstone-E1/aquasmart_treatment/internal/http"
	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/mqtt"
	"github.com/Capstone-E1/aquasmart_treatment/internal/sensors"
	"github.com/Capstone-E1/aquasmart_treatment/internal/services"
	"github.com/Capstone-E1/aquasmart_treatment/internal/store"
	"github.com/Capstone-E1/aquasmart_treatment/internal/ws"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("🌊 Starting AquaSmart Wastewater Treatment Backend...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found: %v", err)
	} else {
		log.Println("✅ Loaded .env file")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Loaded configuration: Server port=%s, DB host=%s, simulation=%t",
		cfg.Server.Port, cfg.Database.Host, cfg.Simulation.Enabled)

	// Initialize data store with PostgreSQL or fallback to in-memory
	var dataStore store.DataStore

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Printf("⚠️  Warning: Failed to connect to database: %v", err)
		log.Println("📱 Falling back to in-memory storage")
		dataStore = store.NewStore(cfg.Store.MaxRecords)
		log.Println("💾 Initialized in-memory evaluation store")
	} else {
		log.Println("✅ Connected to PostgreSQL database")
		defer db.Close()

		if err := database.RunMigrations(db.DB); err != nil {
			log.Fatalf("❌ Failed to run migrations: %v", err)
		}

		dataStore = database.NewDatabaseStore(db.DB)
		log.Println("💾 Initialized database evaluation store")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	defer wsHub.Stop()
	log.Println("🔌 Started WebSocket hub")

	// Live sensor session shared by the simulator, MQTT ingest and the API
	session := sensors.NewSession(cfg.Simulation.WindowSize)

	evaluations := services.NewEvaluationService(dataStore,
		services.NotifierFunc(wsHub.BroadcastTreatmentResult))

	// Initialize MQTT client (skip if no broker URL configured)
	if cfg.MQTT.BrokerURL != "" {
		log.Println("📡 Attempting to connect to MQTT broker...")
		mqttClient := mqtt.NewClient(cfg.MQTT)
		mqttClient.SetDataHandler(func(reading *models.SensorReading) {
			state, err := session.Tick(reading.SensorID, reading.Value)
			if err != nil {
				log.Printf("⚠️  Dropping MQTT reading: %v", err)
				return
			}
			wsHub.BroadcastSensorStates([]models.SensorState{state})
		})
		mqttClient.SetErrorHandler(func(err error) {
			wsHub.BroadcastError(err.Error())
		})

		if err := mqttClient.Connect(); err != nil {
			log.Printf("⚠️  Warning: Failed to connect to MQTT broker: %v", err)
			log.Println("📡 Continuing without MQTT support")
		} else {
			log.Printf("📡 MQTT client connected - Broker: %s", cfg.MQTT.BrokerURL)
			if err := mqttClient.SubscribeToSensorReadings(); err != nil {
				log.Printf("⚠️  Warning: %v", err)
			}
			evaluations.AddNotifier(mqttClient)
			defer mqttClient.Disconnect()
		}
	} else {
		log.Println("📡 MQTT broker not configured, skipping MQTT initialization")
	}

	// Start sensor simulation
	var simulator *sensors.Simulator
	if cfg.Simulation.Enabled {
		simulator = sensors.NewSimulator(session, cfg.Simulation.Interval, nil)
		simulator.SetUpdateHandler(wsHub.BroadcastSensorStates)
		simulator.Start()
	} else {
		log.Println("🎛️  Sensor simulation disabled")
	}

	router := httphandlers.SetupRoutes(dataStore, session, evaluations, wsHub)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Printf("🚀 Starting HTTP server on port %s", cfg.Server.Port)
		log.Println("📡 API endpoints available:")
		log.Println("  GET /health - Store health check")
		log.Println("  GET /api/v1/stats - System statistics")
		log.Println("  POST /api/v1/treatment/simulate - Evaluate and record a sample")
		log.Println("  POST /api/v1/treatment/preview - Evaluate a sample without recording")
		log.Println("  GET /api/v1/treatment/thresholds - Stage threshold table")
		log.Println("  GET /api/v1/treatment/history - Evaluation history")
		log.Println("  GET /api/v1/treatment/history/{id} - One evaluation")
		log.Println("  GET /api/v1/sensors - Live sensor states")
		log.Println("  GET /api/v1/sensors/{id} - One sensor state")
		log.Println("  POST /api/v1/sensors/{id}/readings - Feed a sensor reading")
		log.Println("  POST /api/v1/sensors/classify - Classify a reading")
		log.Println("  GET /api/v1/sensors/profiles - Sensor classification tables")
		log.Println("  GET /api/v1/export/history.xlsx - Export history to Excel")
		log.Println("  GET /api/v1/export/history.csv - Export history to CSV")
		log.Println("  WS /ws - WebSocket for real-time updates")
		log.Printf("🌐 Server running at http://localhost:%s", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if simulator != nil {
		simulator.Stop()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server shutdown complete")
}
