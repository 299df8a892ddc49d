// Seed inserts a deterministic sample dataset: typical expenses of a Boston
// grad student covering every month of 2025 plus January 2026.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"spendlog/internal/cli"
	"spendlog/internal/core"
)

type seedExpense struct {
	date     string
	category string
	cents    int64
	rawText  string
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	ctx := context.Background()

	months := make([][2]int, 0, 13)
	for m := 1; m <= 12; m++ {
		months = append(months, [2]int{2025, m})
	}
	months = append(months, [2]int{2026, 1})

	total := 0
	for _, ym := range months {
		for _, e := range monthlyExpenses(ym[0], ym[1]) {
			candidate := core.ExpenseCandidate{
				Date:     e.date,
				Category: e.category,
				Amount:   core.Money{Cents: e.cents},
				Currency: "USD",
			}
			if _, err := sqliteRepo.Save(ctx, candidate, e.rawText); err != nil {
				logger.Error("Failed to insert seed expense", "date", e.date, "error", err)
				os.Exit(1)
			}
			total++
		}
	}

	logger.Info("Seed data inserted", "expenses", total, "months", len(months))
}

// monthlyExpenses generates one month of expenses, deterministic per month so
// reruns produce the same dataset.
func monthlyExpenses(year, month int) []seedExpense {
	r := rand.New(rand.NewSource(int64(year*100 + month)))
	var out []seedExpense

	add := func(day int, category string, cents int64, rawText string) {
		out = append(out, seedExpense{
			date:     fmt.Sprintf("%04d-%02d-%02d", year, month, day),
			category: category,
			cents:    cents,
			rawText:  rawText,
		})
	}

	// Rent on the 1st, shared room.
	rent := int64(950 + r.Intn(201))
	add(1, "utilities", rent*100, fmt.Sprintf("Rent for %d/%d - shared room Allston", month, year))

	// Groceries.
	for i := 0; i < 3+r.Intn(2); i++ {
		add(2+r.Intn(27), "food", randCents(r, 3500, 8500), "Groceries at Trader Joe's / Star Market")
	}

	// Transit pass plus occasional rides.
	add(1+r.Intn(5), "transport", 9000, "MBTA monthly pass")
	for i := 0; i < 1+r.Intn(3); i++ {
		add(5+r.Intn(24), "transport", randCents(r, 1200, 3500), "Uber to campus / airport")
	}

	// Dining out and coffee.
	for i := 0; i < 4+r.Intn(5); i++ {
		add(1+r.Intn(28), "food", randCents(r, 800, 2800), "Coffee / lunch on campus / dinner out")
	}

	// Internet and phone, plus seasonal heating or AC.
	add(15, "utilities", randCents(r, 3500, 5500), "Internet and phone")
	switch month {
	case 1, 2, 7, 8, 12:
		add(20, "utilities", randCents(r, 4000, 7500), "Electric / gas (heating or AC)")
	}

	// Books, supplies, clothes.
	for i := 0; i < 1+r.Intn(2); i++ {
		add(3+r.Intn(23), "shopping", randCents(r, 2500, 12000), "Books / supplies / clothes")
	}

	// Entertainment.
	for i := 0; i < 2+r.Intn(3); i++ {
		add(1+r.Intn(28), "entertainment", randCents(r, 1500, 4500), "Movies / concert / bars with friends")
	}

	// Occasional healthcare.
	if r.Float64() < 0.4 {
		add(1+r.Intn(28), "healthcare", randCents(r, 1500, 8000), "Pharmacy / copay / health supplies")
	}

	// Miscellaneous.
	for i := 0; i < r.Intn(3); i++ {
		add(1+r.Intn(28), "other", randCents(r, 1000, 5000), "Miscellaneous")
	}

	return out
}

func randCents(r *rand.Rand, min, max int64) int64 {
	return min + r.Int63n(max-min+1)
}
