// File: cmd/seed/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"prime-fitness-backend/internal/config"
	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	pg "prime-fitness-backend/internal/infra/db/postgres"
	"prime-fitness-backend/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planUC := usecase.NewPlanUseCase(pg.NewPlanRepo(pool))

	// If plans already exist, do nothing.
	plans, _, err := planUC.List(ctx, model.PlanStatusActive, 0, 100)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (days=%d)\n", p.Code, p.DurationDays)
		}
		return
	}

	seed := []struct {
		Code   string
		Days   int
		Prices map[string]model.PlanPrice
	}{
		{"monthly", 30, map[string]model.PlanPrice{
			"RUB": {Amount: 399, Currency: "RUB"},
			"USD": {Amount: 4.99, Currency: "USD"},
		}},
		{"yearly", 365, map[string]model.PlanPrice{
			"RUB": {Amount: 2990, Currency: "RUB"},
			"USD": {Amount: 39.99, Currency: "USD"},
		}},
	}
	for _, s := range seed {
		p, err := planUC.Create(ctx, s.Code, s.Days, s.Prices)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			log.Fatalf("create plan %q: %v", s.Code, err)
		}
		fmt.Printf("seeded plan: %s (id=%s, days=%d)\n", p.Code, p.ID, p.DurationDays)
	}

	fmt.Println("Seeding complete.")
}
