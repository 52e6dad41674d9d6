package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/andreypavlenko/scout/internal/config"
	startupsModel "github.com/andreypavlenko/scout/modules/startups/model"
	"github.com/andreypavlenko/scout/modules/startups/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func pick[T any](items []T) T {
	return items[rand.Intn(len(items))]
}

func randBetween(min, max int) int {
	return min + rand.Intn(max-min+1)
}

func fp(v float64) *float64 { return &v }

// snapshotStartup is the JSON shape of one corpus entry in the snapshot file.
type snapshotStartup struct {
	ID                  int64          `json:"id"`
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	ShortDescription    string         `json:"short_description"`
	PrimaryIndustry     string         `json:"primary_industry"`
	SecondaryIndustries []string       `json:"secondary_industries"`
	BusinessTypes       []string       `json:"business_types"`
	Stage               string         `json:"stage"`
	CurrentStage        string         `json:"currentInvestmentStage"`
	TotalFundingUSDM    *float64       `json:"total_funding_usd_millions"`
	LastFundingDate     *time.Time     `json:"last_funding_date"`
	Employees           string         `json:"employees"`
	Country             string         `json:"country"`
	City                string         `json:"city"`
	Website             *string        `json:"website"`
	LogoURL             *string        `json:"logo_url"`
	Topics              []string       `json:"topics"`
	TechStack           []string       `json:"tech_stack"`
	MaturityScore       *int           `json:"maturity_score"`
	Enrichment          map[string]any `json:"enrichment"`
}

// ── main ─────────────────────────────────────────────────────────────────────

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	fmt.Println("connected to database")

	var startups []*startupsModel.Startup
	if cfg.Corpus.SnapshotPath != "" {
		startups, err = loadSnapshot(cfg.Corpus.SnapshotPath)
		if err != nil {
			log.Fatalf("load snapshot: %v", err)
		}
		fmt.Printf("loaded %d startups from %s\n", len(startups), cfg.Corpus.SnapshotPath)
	} else {
		startups = demoCorpus()
		fmt.Printf("generated %d demo startups\n", len(startups))
	}

	repo := repository.NewStartupRepository(pool)
	if err := repo.InsertBatch(ctx, startups); err != nil {
		log.Fatalf("insert startups: %v", err)
	}

	fmt.Println("seed complete")
}

// loadSnapshot reads a corpus JSON file. The free-text investment stage is
// normalized here, once, at ingestion time.
func loadSnapshot(path string) ([]*startupsModel.Startup, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []snapshotStartup
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	startups := make([]*startupsModel.Startup, 0, len(rows))
	for _, row := range rows {
		rawStage := row.Stage
		if rawStage == "" {
			rawStage = row.CurrentStage
		}
		startups = append(startups, &startupsModel.Startup{
			ID:                  row.ID,
			Name:                row.Name,
			Description:         row.Description,
			ShortDescription:    row.ShortDescription,
			PrimaryIndustry:     row.PrimaryIndustry,
			SecondaryIndustries: row.SecondaryIndustries,
			BusinessTypes:       row.BusinessTypes,
			Stage:               startupsModel.ParseStage(rawStage),
			RawStage:            rawStage,
			TotalFundingUSDM:    row.TotalFundingUSDM,
			LastFundingDate:     row.LastFundingDate,
			Employees:           row.Employees,
			Country:             row.Country,
			City:                row.City,
			Website:             row.Website,
			LogoURL:             row.LogoURL,
			Topics:              row.Topics,
			TechStack:           row.TechStack,
			MaturityScore:       row.MaturityScore,
			Enrichment:          row.Enrichment,
		})
	}
	return startups, nil
}

// demoCorpus generates a small varied corpus for local development.
func demoCorpus() []*startupsModel.Startup {
	descriptions := []string{
		"agent orchestration platform for enterprise workflows",
		"marketing automation with ai content generation",
		"claims automation for mid-size insurers",
		"recruitment ai that screens talent at scale",
		"support automation chatbot for enterprise helpdesks",
		"code generation and test automation for ci pipelines",
		"insurtech underwriting analytics",
		"machine learning demand forecasting",
		"b2b saas spend management",
	}
	countries := []string{"Germany", "France", "Finland", "Netherlands", "Spain"}
	cities := []string{"Berlin", "Paris", "Helsinki", "Amsterdam", "Madrid"}
	stages := []string{"pre-seed", "seed", "series a", "series b", "growth"}
	employees := []string{"1-10", "11-25", "26-50", "51-100", "101-250"}

	var startups []*startupsModel.Startup
	for i := 1; i <= 60; i++ {
		rawStage := pick(stages)
		maturity := randBetween(20, 95)
		funding := float64(randBetween(1, 120))
		lastRound := time.Now().UTC().AddDate(0, -randBetween(1, 36), 0)

		startups = append(startups, &startupsModel.Startup{
			ID:               int64(i),
			Name:             fmt.Sprintf("DemoStartup-%02d", i),
			Description:      pick(descriptions),
			PrimaryIndustry:  "Software",
			BusinessTypes:    []string{"b2b"},
			Stage:            startupsModel.ParseStage(rawStage),
			RawStage:         rawStage,
			TotalFundingUSDM: fp(funding),
			LastFundingDate:  &lastRound,
			Employees:        pick(employees),
			Country:          pick(countries),
			City:             pick(cities),
			MaturityScore:    &maturity,
			Topics:           []string{"startup", "technology"},
		})
	}
	return startups
}
