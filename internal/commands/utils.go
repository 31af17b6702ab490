package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/maintenance"
	"github.com/greenleafprop/rentledger/store"
)

func getDB() (*gorm.DB, error) {
	db, err := store.OpenFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	return db, nil
}

func maintenancePolicy() maintenance.Policy {
	policy := maintenance.DefaultPolicy()
	if raw := os.Getenv("RENTLEDGER_COST_GATE"); raw != "" {
		gate, err := strconv.ParseFloat(raw, 64)
		if err != nil || gate <= 0 {
			fmt.Printf("Warning: ignoring invalid RENTLEDGER_COST_GATE %q\n", raw)
		} else {
			policy.CostGate = gate
		}
	}
	return policy
}

func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}
