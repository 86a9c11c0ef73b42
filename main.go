package main

import (
	"context"
	"fmt"
	"os"
	"time"

	auction "lead-exchange/internal/auctionService"
	"lead-exchange/internal/compliance"
	"lead-exchange/internal/repository"
	"lead-exchange/internal/repository/postgres"
	"lead-exchange/internal/server"
	"lead-exchange/utils"
)

func main() {
	store, err := buildStore()
	if err != nil {
		utils.Fatal("Failed to open store", map[string]any{"error": err.Error()})
	}

	auctionSvc := auction.NewAuctionService(store, buildGate())
	sweeper := auction.NewSweeper(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx, getSweepInterval())

	router := server.SetupRouter(auctionSvc, sweeper)

	port := getPort()
	fmt.Printf("Starting lead exchange server on %s...\n", port)
	if err := router.Run(port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildStore opens Postgres when DATABASE_URL is set, otherwise the in-memory store
func buildStore() (repository.AuctionStore, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		utils.Info("Using Postgres store", nil)
		return postgres.Open(dsn)
	}
	utils.Info("Using in-memory store", nil)
	return repository.NewMemoryStore(), nil
}

// buildGate wires the compliance collaborator, permissive when none is configured
func buildGate() compliance.Gate {
	if url := os.Getenv("COMPLIANCE_URL"); url != "" {
		utils.Info("Using HTTP compliance gate", map[string]any{"url": url})
		return compliance.NewHTTPGate(url)
	}
	utils.Warn("COMPLIANCE_URL not set, all transactions allowed", nil)
	return compliance.AllowAll{}
}

// getSweepInterval returns the sweep cadence from env or defaults to 30s
func getSweepInterval() time.Duration {
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		utils.Warn("Invalid SWEEP_INTERVAL, using default", map[string]any{"value": v})
	}
	return 30 * time.Second
}

// getPort returns the server port from env or defaults to ":8080"
func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}
