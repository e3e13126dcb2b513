package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/Capstone-E1/aquasmart_treatment/config"
	"github.com/Capstone-E1/aquasmart_treatment/internal/database"
	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/joho/godotenv"
)

func main() {
	var (
		limit  = flag.Int("limit", 10, "Number of evaluations to show")
		user   = flag.String("user", "", "Only show evaluations of this user")
		status = flag.String("status", "", "Comma separated statuses to show (safe, needs-treatment, critical)")
	)
	flag.Parse()

	log.Println("🔍 AquaSmart Treatment Evaluation Viewer")
	log.Println("========================================")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found: %v", err)
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	dataStore := database.NewDatabaseStore(db.DB)

	var records []models.EvaluationRecord
	switch {
	case *user != "":
		records = dataStore.GetEvaluationsByUser(*user, *limit)
	case *status != "":
		var statuses []models.OverallStatus
		for _, s := range strings.Split(*status, ",") {
			st := models.OverallStatus(strings.TrimSpace(s))
			if !st.Valid() {
				log.Fatalf("❌ Unknown status: %s", s)
			}
			statuses = append(statuses, st)
		}
		records = dataStore.GetEvaluationsByStatus(statuses, *limit)
	default:
		records = dataStore.GetRecentEvaluations(*limit)
	}

	printEvaluations(records)
	printStatusCounts(dataStore.GetStatusCounts(), dataStore.GetEvaluationCount())
}

func printEvaluations(records []models.EvaluationRecord) {
	fmt.Printf("\n🧪 Latest %d Treatment Evaluations:\n", len(records))
	fmt.Println("=====================================")
	fmt.Printf("%-36s %-12s %-20s %-9s %-6s %-6s %-5s %-16s %-6s %-5s\n",
		"ID", "User", "Created", "Turbidity", "COD", "N", "pH", "Status", "Eff%", "Hours")
	fmt.Println(strings.Repeat("-", 130))

	for _, r := range records {
		fmt.Printf("%-36s %-12s %-20s %-9.1f %-6.1f %-6.1f %-5.2f %-16s %-6.0f %-5.0f\n",
			r.ID, r.UserID, r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Parameters.Turbidity, r.Parameters.COD, r.Parameters.Nitrogen, r.Parameters.Ph,
			r.Result.OverallStatus, r.Result.EstimatedEfficiency, r.Result.EstimatedTreatmentTime)
	}

	if len(records) == 0 {
		fmt.Println("No evaluations found.")
	}
}

func printStatusCounts(counts map[models.OverallStatus]int, total int) {
	fmt.Printf("\n📊 Totals (%d evaluations):\n", total)
	for _, status := range []models.OverallStatus{models.StatusSafe, models.StatusNeedsTreatment, models.StatusCritical} {
		fmt.Printf("  %-16s %d\n", status, counts[status])
	}
}
